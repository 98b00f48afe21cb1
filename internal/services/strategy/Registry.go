package strategy

import (
	"fmt"
	"sort"
)

// Registry maps strategy names to factories. It is plain configuration
// state passed to whoever needs dynamic dispatch; there is no package-level
// registry.
type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the given name, replacing any previous one.
func (r *Registry) Register(name string, factory Factory) {
	r.factories[name] = factory
}

// Create builds the named strategy with the given parameters.
func (r *Registry) Create(name string, params map[string]float64) (Strategy, error) {
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
	return factory(params)
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry returns a registry with the bundled strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("sma_crossover", func(params map[string]float64) (Strategy, error) {
		s := NewSMACrossover()
		s.SetParams(params)
		return s, nil
	})
	r.Register("rsi_reversion", func(params map[string]float64) (Strategy, error) {
		s := NewRSIReversion()
		s.SetParams(params)
		return s, nil
	})
	return r
}
