// Package spin handles the virtual-atom bookkeeping implied by a spin
// model: species with a spin degree of freedom gain a virtual species
// whose displacement from the real atom encodes the spin orientation.
package spin

import (
	"fmt"

	"github.com/polarmd/dpinput/internal/config"
)

// Layout describes how real and virtual species map onto the extended
// type table consumed by a trainer.
type Layout struct {
	// TypeMap is the extended type map: real species first, then one
	// virtual entry per spin species, in species order.
	TypeMap []string
	// UseSpin records the per-real-species spin flags.
	UseSpin []bool
	// VirtualIndex maps a real species index to its virtual type index,
	// or -1 for species without spin.
	VirtualIndex []int
	// VirtualLen and SpinNorm are indexed like the real species.
	VirtualLen []float64
	SpinNorm   []float64
}

// NewLayout builds the extended layout for a model. The model must have
// passed validation; NewLayout still defends against mismatched arrays.
func NewLayout(m config.Model) (*Layout, error) {
	if m.Spin == nil {
		return nil, fmt.Errorf("model has no spin section")
	}
	nsp := m.NumSpecies()
	s := m.Spin
	if len(s.UseSpin) != nsp || len(s.VirtualLen) != nsp || len(s.SpinNorm) != nsp {
		return nil, fmt.Errorf("spin arrays must have one entry per species (%d)", nsp)
	}

	l := &Layout{
		TypeMap:      make([]string, 0, nsp),
		UseSpin:      append([]bool(nil), s.UseSpin...),
		VirtualIndex: make([]int, nsp),
		VirtualLen:   append([]float64(nil), s.VirtualLen...),
		SpinNorm:     append([]float64(nil), s.SpinNorm...),
	}
	l.TypeMap = append(l.TypeMap, m.TypeMap...)

	next := nsp
	for i, use := range s.UseSpin {
		if !use {
			l.VirtualIndex[i] = -1
			continue
		}
		l.VirtualIndex[i] = next
		l.TypeMap = append(l.TypeMap, m.TypeMap[i]+"_spin")
		next++
	}
	return l, nil
}

// NSpin returns the number of species carrying a spin degree of freedom.
func (l *Layout) NSpin() int {
	n := 0
	for _, u := range l.UseSpin {
		if u {
			n++
		}
	}
	return n
}

// NTypes returns the extended type count (real + virtual).
func (l *Layout) NTypes() int {
	return len(l.TypeMap)
}

// NReal returns the number of real species.
func (l *Layout) NReal() int {
	return len(l.UseSpin)
}

// VirtualCount returns the number of virtual atoms for a frame holding
// natoms[i] atoms of species i.
func (l *Layout) VirtualCount(natoms []int) (int, error) {
	if len(natoms) != l.NReal() {
		return 0, fmt.Errorf("expected %d species counts, got %d", l.NReal(), len(natoms))
	}
	total := 0
	for i, n := range natoms {
		if n < 0 {
			return 0, fmt.Errorf("negative atom count for species %d", i)
		}
		if l.UseSpin[i] {
			total += n
		}
	}
	return total, nil
}
