package strategy

import "sort"

// Registry holds the named strategies available for scoring. It is built
// once at process start and read-only afterwards.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry returns a registry seeded with the three presets.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	for _, s := range []Strategy{Balanced(), FastFlip(), ValueAdd()} {
		r.strategies[s.ID] = s
	}
	return r
}

// Register validates and adds a custom strategy. An invalid weight vector
// fails here, before any scoring call can see it.
func (r *Registry) Register(s Strategy) error {
	if err := s.Validate(); err != nil {
		return err
	}
	r.strategies[s.ID] = s
	return nil
}

// Get returns a strategy by name.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return Strategy{}, &UnknownStrategyError{Name: name}
	}
	return s, nil
}

// Names returns all registered strategy names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
