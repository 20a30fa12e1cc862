package schedule

import (
	"fmt"

	"github.com/polarmd/dpinput/internal/config"
)

// Sample is one point of a schedule preview.
type Sample struct {
	Step  int                `json:"step"`
	LR    float64            `json:"lr"`
	Prefs map[string]float64 `json:"prefs"`
}

// Preview evaluates the learning rate and every active loss preference at
// count evenly spaced steps over [0, numb_steps]. The final step is
// always included.
func Preview(in config.Input, count int) ([]Sample, error) {
	if count < 2 {
		return nil, fmt.Errorf("preview needs at least 2 samples, got %d", count)
	}

	sched, err := New(in.LearningRate, in.Training.NumbSteps)
	if err != nil {
		return nil, err
	}
	prefs, err := LossPrefs(in.Loss)
	if err != nil {
		return nil, err
	}

	total := in.Training.NumbSteps
	samples := make([]Sample, 0, count)
	for i := 0; i < count; i++ {
		step := int(int64(total) * int64(i) / int64(count-1))
		s := Sample{
			Step:  step,
			LR:    sched.ValueAt(step),
			Prefs: make(map[string]float64, len(prefs)),
		}
		for _, p := range prefs {
			s.Prefs[p.Name] = p.At(sched, step)
		}
		samples = append(samples, s)
	}
	return samples, nil
}
