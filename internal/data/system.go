// Package data inspects labeled data systems referenced by a training
// input. A system directory holds a type.raw file (one species index per
// atom) and one or more set.* subdirectories of frames.
package data

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/polarmd/dpinput/internal/config"
	"github.com/polarmd/dpinput/internal/log"
)

// System describes one inspected data system.
type System struct {
	Path      string `json:"path"`
	NAtoms    int    `json:"natoms"`
	NSets     int    `json:"nsets"`
	BatchSize int    `json:"batch_size"`
	// TypeCounts holds the number of atoms per species index.
	TypeCounts map[int]int `json:"type_counts"`
}

// Report is the result of scanning a data section.
type Report struct {
	Systems []System `json:"systems"`
	Missing []string `json:"missing,omitempty"`
}

// Valid reports whether every declared system was found and well-formed.
func (r Report) Valid() bool {
	return len(r.Missing) == 0
}

// Scan inspects every system of a data section, resolving the declared
// batch size per system. Systems that are missing or malformed are
// collected under Missing rather than aborting the scan.
func Scan(section config.DataSection) Report {
	logger := log.WithComponent("data")
	report := Report{}

	for _, sysPath := range section.Systems {
		sys, err := inspect(sysPath)
		if err != nil {
			logger.Warn().Str(log.FieldSystem, sysPath).Err(err).Msg("data system rejected")
			report.Missing = append(report.Missing, sysPath)
			continue
		}
		sys.BatchSize = ResolveBatchSize(section.BatchSize, sys.NAtoms)
		report.Systems = append(report.Systems, sys)
	}
	return report
}

func inspect(path string) (System, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return System{}, fmt.Errorf("stat system: %w", err)
	}
	if !info.IsDir() {
		return System{}, fmt.Errorf("system path is not a directory")
	}

	counts, err := readTypeRaw(filepath.Join(path, "type.raw"))
	if err != nil {
		return System{}, err
	}

	sets, err := countSets(path)
	if err != nil {
		return System{}, err
	}
	if sets == 0 {
		return System{}, fmt.Errorf("system has no set.* directories")
	}

	natoms := 0
	for _, n := range counts {
		natoms += n
	}

	return System{
		Path:       path,
		NAtoms:     natoms,
		NSets:      sets,
		TypeCounts: counts,
	}, nil
}

// readTypeRaw parses type.raw: one species index per line, whitespace
// tolerated. Returns the per-species atom counts.
func readTypeRaw(path string) (map[int]int, error) {
	// #nosec G304 -- system paths come from the operator's input document
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open type.raw: %w", err)
	}
	defer func() { _ = f.Close() }()

	counts := map[int]int{}
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		for _, field := range strings.Fields(scanner.Text()) {
			idx, err := strconv.Atoi(field)
			if err != nil || idx < 0 {
				return nil, fmt.Errorf("type.raw line %d: invalid species index %q", line, field)
			}
			counts[idx]++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read type.raw: %w", err)
	}
	if len(counts) == 0 {
		return nil, fmt.Errorf("type.raw is empty")
	}
	return counts, nil
}

func countSets(path string) (int, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return 0, fmt.Errorf("read system dir: %w", err)
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "set.") {
			n++
		}
	}
	return n, nil
}

// ResolveBatchSize resolves a declared batch size for a system of natoms
// atoms. The automatic rule targets Ratio atoms per batch: a small system
// gets a larger batch so every batch carries a comparable amount of data.
func ResolveBatchSize(b config.BatchSize, natoms int) int {
	if !b.Auto {
		return b.Size
	}
	if natoms <= 0 {
		return 1
	}
	size := (b.Ratio + natoms - 1) / natoms
	if size < 1 {
		size = 1
	}
	return size
}

// SpeciesCoverage checks that every species index referenced by the
// scanned systems is declared in the type map. Returns the offending
// indices, sorted, or nil when coverage is complete.
func SpeciesCoverage(report Report, numSpecies int) []int {
	seen := map[int]struct{}{}
	for _, sys := range report.Systems {
		for idx := range sys.TypeCounts {
			if idx >= numSpecies {
				seen[idx] = struct{}{}
			}
		}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]int, 0, len(seen))
	for idx := range seen {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
