package schedule

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polarmd/dpinput/internal/config"
)

func expLR() config.LearningRate {
	return config.LearningRate{
		Type:       "exp",
		StartLR:    1e-3,
		StopLR:     1e-8,
		DecaySteps: 5000,
	}
}

func TestExp_Endpoints(t *testing.T) {
	const steps = 1000000
	sched, err := New(expLR(), steps)
	require.NoError(t, err)

	assert.Equal(t, "exp", sched.TypeString())
	assert.InEpsilon(t, 1e-3, sched.ValueAt(0), 1e-12)
	assert.InEpsilon(t, 1e-8, sched.ValueAt(steps), 1e-6,
		"trajectory must reach stop_lr at the final step")
}

func TestExp_MonotoneDecay(t *testing.T) {
	sched, err := New(expLR(), 100000)
	require.NoError(t, err)

	prev := math.Inf(1)
	for step := 0; step <= 100000; step += 10000 {
		v := sched.ValueAt(step)
		assert.LessOrEqual(t, v, prev, "lr must not increase at step %d", step)
		assert.Greater(t, v, 0.0)
		prev = v
	}
}

func TestExp_NeverBelowStop(t *testing.T) {
	sched, err := New(expLR(), 1000)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, sched.ValueAt(10*1000), 1e-8,
		"steps past the end clamp to stop_lr")
}

func TestExp_DecayStepsClamped(t *testing.T) {
	lr := expLR()
	lr.DecaySteps = 5000
	sched, err := New(lr, 100) // run shorter than one decay interval
	require.NoError(t, err)
	assert.InEpsilon(t, 1e-8, sched.ValueAt(100), 1e-6)
}

func TestExp_Invalid(t *testing.T) {
	lr := expLR()
	lr.StartLR = 0
	_, err := New(lr, 1000)
	require.Error(t, err)

	lr = expLR()
	lr.DecaySteps = 0
	_, err = New(lr, 1000)
	require.Error(t, err)
}

func TestNew_UnknownType(t *testing.T) {
	lr := expLR()
	lr.Type = "cosine"
	_, err := New(lr, 1000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cosine")
}

func TestRegister_Duplicate(t *testing.T) {
	err := Register("exp", nil)
	require.Error(t, err)
}

func TestLossPrefs_SpinTerms(t *testing.T) {
	in := config.ExampleInput()
	prefs, err := LossPrefs(in.Loss)
	require.NoError(t, err)

	byName := map[string]Pref{}
	for _, p := range prefs {
		byName[p.Name] = p
	}
	require.Contains(t, byName, "energy")
	require.Contains(t, byName, "force_real")
	require.Contains(t, byName, "force_mag")
	assert.NotContains(t, byName, "virial", "zero start and limit disables the term")
	assert.NotContains(t, byName, "force", "plain force term absent from spin loss")
}

func TestPref_TrajectoryEndpoints(t *testing.T) {
	in := config.ExampleInput()
	sched, err := New(in.LearningRate, in.Training.NumbSteps)
	require.NoError(t, err)

	p := Pref{Name: "force_real", Start: 1000, Limit: 1}
	assert.InEpsilon(t, 1000, p.At(sched, 0), 1e-9)

	final := p.At(sched, in.Training.NumbSteps)
	assert.InDelta(t, 1, final, 0.01,
		"preference converges to its limit as lr reaches stop_lr")
}

func TestPref_GrowthTrajectory(t *testing.T) {
	in := config.ExampleInput()
	sched, err := New(in.LearningRate, in.Training.NumbSteps)
	require.NoError(t, err)

	// start < limit grows toward the limit.
	p := Pref{Name: "energy", Start: 0.02, Limit: 1}
	first := p.At(sched, 0)
	last := p.At(sched, in.Training.NumbSteps)
	assert.InEpsilon(t, 0.02, first, 1e-9)
	assert.Greater(t, last, first)
	assert.InDelta(t, 1, last, 0.01)
}

func TestPreview(t *testing.T) {
	in := config.ExampleInput()
	samples, err := Preview(in, 11)
	require.NoError(t, err)
	require.Len(t, samples, 11)

	assert.Equal(t, 0, samples[0].Step)
	assert.Equal(t, in.Training.NumbSteps, samples[len(samples)-1].Step)
	assert.InEpsilon(t, in.LearningRate.StartLR, samples[0].LR, 1e-12)

	for _, s := range samples {
		require.Contains(t, s.Prefs, "force_mag")
	}

	_, err = Preview(in, 1)
	require.Error(t, err)
}
