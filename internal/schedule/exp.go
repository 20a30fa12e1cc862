package schedule

import (
	"fmt"
	"math"

	"github.com/polarmd/dpinput/internal/config"
)

func init() {
	if err := Register("exp", newExp); err != nil {
		panic(err.Error())
	}
}

// exp is the exponential decay schedule. The decay rate is derived from
// the declared start and stop rates so that the trajectory reaches
// stop_lr at the final step:
//
//	decay_rate = (stop_lr/start_lr)^(decay_steps/numb_steps)
//	lr(step)   = start_lr * decay_rate^(step/decay_steps)
type exp struct {
	startLR    float64
	stopLR     float64
	decaySteps int
	decayRate  float64
}

func newExp(lr config.LearningRate, numbSteps int) (Schedule, error) {
	if lr.StartLR <= 0 || lr.StopLR <= 0 {
		return nil, fmt.Errorf("exp schedule requires positive start_lr and stop_lr")
	}
	if lr.DecaySteps < 1 {
		return nil, fmt.Errorf("exp schedule requires decay_steps >= 1")
	}
	if numbSteps < 1 {
		return nil, fmt.Errorf("exp schedule requires numb_steps >= 1")
	}

	decaySteps := lr.DecaySteps
	// A decay interval longer than the whole run would never decay;
	// clamp it so the trajectory still reaches stop_lr.
	if decaySteps > numbSteps {
		decaySteps = numbSteps
	}

	rate := math.Pow(lr.StopLR/lr.StartLR, float64(decaySteps)/float64(numbSteps))
	return &exp{
		startLR:    lr.StartLR,
		stopLR:     lr.StopLR,
		decaySteps: decaySteps,
		decayRate:  rate,
	}, nil
}

func (e *exp) TypeString() string { return "exp" }

func (e *exp) StartLR() float64 { return e.startLR }

func (e *exp) ValueAt(step int) float64 {
	if step <= 0 {
		return e.startLR
	}
	v := e.startLR * math.Pow(e.decayRate, float64(step)/float64(e.decaySteps))
	if v < e.stopLR {
		return e.stopLR
	}
	return v
}
