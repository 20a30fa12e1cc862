package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarmd/dpinput/internal/config"
)

// writeSystem lays out a minimal data system: type.raw plus set.000.
func writeSystem(t *testing.T, root, name string, types []string) string {
	t.Helper()
	dir := filepath.Join(root, name)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "set.000"), 0o750))
	content := ""
	for _, line := range types {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "type.raw"), []byte(content), 0o600))
	return dir
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	// 4 atoms of species 0, 4 of species 1
	sysA := writeSystem(t, root, "nio", []string{"0", "0", "0", "0", "1", "1", "1", "1"})
	sysB := writeSystem(t, root, "nio-large", []string{"0", "1"})

	section := config.DataSection{
		Systems:   []string{sysA, sysB},
		BatchSize: config.AutoBatchSize(32),
	}

	report := Scan(section)
	require.True(t, report.Valid(), "missing: %v", report.Missing)
	require.Len(t, report.Systems, 2)

	a := report.Systems[0]
	assert.Equal(t, 8, a.NAtoms)
	assert.Equal(t, 1, a.NSets)
	assert.Equal(t, map[int]int{0: 4, 1: 4}, a.TypeCounts)
	assert.Equal(t, 4, a.BatchSize, "auto:32 over 8 atoms -> 4 frames")

	b := report.Systems[1]
	assert.Equal(t, 2, b.NAtoms)
	assert.Equal(t, 16, b.BatchSize, "auto:32 over 2 atoms -> 16 frames")
}

func TestScan_MissingSystem(t *testing.T) {
	section := config.DataSection{
		Systems:   []string{filepath.Join(t.TempDir(), "absent")},
		BatchSize: config.FixedBatchSize(1),
	}
	report := Scan(section)
	assert.False(t, report.Valid())
	assert.Len(t, report.Missing, 1)
}

func TestScan_NoSets(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "empty")
	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "type.raw"), []byte("0\n"), 0o600))

	report := Scan(config.DataSection{Systems: []string{dir}})
	assert.False(t, report.Valid())
}

func TestScan_BadTypeRaw(t *testing.T) {
	root := t.TempDir()
	dir := writeSystem(t, root, "bad", []string{"0", "x"})

	report := Scan(config.DataSection{Systems: []string{dir}})
	assert.False(t, report.Valid())
}

func TestResolveBatchSize(t *testing.T) {
	tests := []struct {
		name   string
		b      config.BatchSize
		natoms int
		want   int
	}{
		{"fixed", config.FixedBatchSize(4), 100, 4},
		{"auto exact", config.AutoBatchSize(32), 32, 1},
		{"auto rounds up", config.AutoBatchSize(32), 30, 2},
		{"auto large system", config.AutoBatchSize(32), 1000, 1},
		{"auto small system", config.AutoBatchSize(32), 2, 16},
		{"auto zero atoms", config.AutoBatchSize(32), 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBatchSize(tt.b, tt.natoms))
		})
	}
}

func TestSpeciesCoverage(t *testing.T) {
	report := Report{Systems: []System{
		{TypeCounts: map[int]int{0: 4, 1: 4}},
		{TypeCounts: map[int]int{0: 2, 3: 1}},
	}}

	assert.Nil(t, SpeciesCoverage(report, 4))
	assert.Equal(t, []int{3}, SpeciesCoverage(report, 2), "species 3 not declared")
}
