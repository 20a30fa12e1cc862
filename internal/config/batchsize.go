package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultAutoRatio is the target atom count per batch used when the
// batch size is the bare string "auto".
const DefaultAutoRatio = 32

// BatchSize is either a fixed positive integer or the automatic rule
// "auto" / "auto:N", which resolves per data system based on atom count.
type BatchSize struct {
	Auto  bool
	Ratio int // target atoms per batch when Auto is set
	Size  int // fixed size when Auto is not set
}

// AutoBatchSize returns the automatic rule with the given atoms-per-batch
// target. A ratio <= 0 falls back to DefaultAutoRatio.
func AutoBatchSize(ratio int) BatchSize {
	if ratio <= 0 {
		ratio = DefaultAutoRatio
	}
	return BatchSize{Auto: true, Ratio: ratio}
}

// FixedBatchSize returns a fixed batch size.
func FixedBatchSize(n int) BatchSize {
	return BatchSize{Size: n}
}

// IsZero reports whether the batch size was left unset.
func (b BatchSize) IsZero() bool {
	return !b.Auto && b.Size == 0
}

func (b BatchSize) String() string {
	if b.Auto {
		if b.Ratio == DefaultAutoRatio {
			return "auto"
		}
		return fmt.Sprintf("auto:%d", b.Ratio)
	}
	return strconv.Itoa(b.Size)
}

func parseBatchSize(s string) (BatchSize, error) {
	s = strings.TrimSpace(s)
	if s == "auto" {
		return AutoBatchSize(0), nil
	}
	if rest, ok := strings.CutPrefix(s, "auto:"); ok {
		n, err := strconv.Atoi(rest)
		if err != nil || n <= 0 {
			return BatchSize{}, fmt.Errorf("invalid auto batch size %q", s)
		}
		return AutoBatchSize(n), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return BatchSize{}, fmt.Errorf("invalid batch size %q", s)
	}
	return FixedBatchSize(n), nil
}

// UnmarshalYAML accepts an integer or an "auto[:N]" string.
func (b *BatchSize) UnmarshalYAML(value *yaml.Node) error {
	var n int
	if err := value.Decode(&n); err == nil {
		*b = FixedBatchSize(n)
		return nil
	}
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("batch_size must be an integer or an auto rule: %w", err)
	}
	parsed, err := parseBatchSize(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalYAML renders the canonical form.
func (b BatchSize) MarshalYAML() (interface{}, error) {
	if b.Auto {
		return b.String(), nil
	}
	return b.Size, nil
}

// UnmarshalJSON accepts an integer or an "auto[:N]" string.
func (b *BatchSize) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*b = FixedBatchSize(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("batch_size must be an integer or an auto rule")
	}
	parsed, err := parseBatchSize(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// MarshalJSON renders the canonical form.
func (b BatchSize) MarshalJSON() ([]byte, error) {
	if b.Auto {
		return json.Marshal(b.String())
	}
	return json.Marshal(b.Size)
}
