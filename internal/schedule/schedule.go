// Package schedule evaluates the trajectories a training input declares:
// the learning-rate decay and the per-term loss preference weights that
// follow it.
package schedule

import (
	"fmt"
	"sort"
	"sync"

	"github.com/polarmd/dpinput/internal/config"
)

// Schedule yields the learning rate at a given optimization step.
type Schedule interface {
	// TypeString identifies the schedule kind ("exp").
	TypeString() string
	// ValueAt returns the learning rate at step, for 0 <= step <= numbSteps.
	ValueAt(step int) float64
	// StartLR returns the rate at step 0.
	StartLR() float64
}

// Factory builds a Schedule from the learning-rate section and the total
// step count of the training loop.
type Factory func(lr config.LearningRate, numbSteps int) (Schedule, error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds a schedule constructor under the given type name.
// Registering the same name twice is a programming error.
func Register(name string, f Factory) error {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := factories[name]; dup {
		return fmt.Errorf("schedule type %q already registered", name)
	}
	factories[name] = f
	return nil
}

// New builds the schedule declared by the learning-rate section.
func New(lr config.LearningRate, numbSteps int) (Schedule, error) {
	mu.RLock()
	f, ok := factories[lr.Type]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown learning rate type %q (known: %v)", lr.Type, Types())
	}
	return f(lr, numbSteps)
}

// Types lists the registered schedule type names, sorted.
func Types() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
