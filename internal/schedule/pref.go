package schedule

import (
	"fmt"

	"github.com/polarmd/dpinput/internal/config"
)

// Pref is one loss term's weight trajectory. The weight tracks the
// learning-rate decay between its start and limit values:
//
//	pref(step) = limit + (start - limit) * lr(step)/start_lr
type Pref struct {
	Name  string
	Start float64
	Limit float64
}

// At returns the term weight at step under sched.
func (p Pref) At(sched Schedule, step int) float64 {
	frac := sched.ValueAt(step) / sched.StartLR()
	return p.Limit + (p.Start-p.Limit)*frac
}

// LossPrefs extracts the active weight trajectories of a loss section.
// Terms whose start and limit are both zero are disabled and omitted.
func LossPrefs(l config.Loss) ([]Pref, error) {
	var prefs []Pref
	add := func(name string, start, limit float64) {
		if start == 0 && limit == 0 {
			return
		}
		prefs = append(prefs, Pref{Name: name, Start: start, Limit: limit})
	}
	addPtr := func(name string, start, limit *float64) {
		if start == nil || limit == nil {
			return
		}
		add(name, *start, *limit)
	}

	add("energy", l.StartPrefE, l.LimitPrefE)
	add("virial", l.StartPrefV, l.LimitPrefV)
	addPtr("atom_energy", l.StartPrefAE, l.LimitPrefAE)

	switch l.Type {
	case "ener_spin":
		addPtr("force_real", l.StartPrefFR, l.LimitPrefFR)
		addPtr("force_mag", l.StartPrefFM, l.LimitPrefFM)
	case "ener":
		addPtr("force", l.StartPrefF, l.LimitPrefF)
	default:
		return nil, fmt.Errorf("unknown loss type %q", l.Type)
	}

	return prefs, nil
}
