package modes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/mcoot/lanova-arcade/internal/model"
)

// Registry holds the configured game modes
type Registry struct {
	modes map[model.ModeID]model.GameMode
}

// New creates a registry from the given modes. Later entries replace earlier
// ones with the same ID.
func New(modes ...model.GameMode) (*Registry, error) {
	r := &Registry{modes: make(map[model.ModeID]model.GameMode, len(modes))}
	for _, m := range modes {
		if err := Validate(m); err != nil {
			return nil, err
		}
		r.modes[m.ID] = m
	}
	return r, nil
}

// Default returns a registry with the built-in modes
func Default() *Registry {
	r, err := New(model.DefaultModes()...)
	if err != nil {
		panic(err) // built-in modes are static
	}
	return r
}

// Get returns the mode with the given ID
func (r *Registry) Get(id model.ModeID) (model.GameMode, error) {
	m, ok := r.modes[id]
	if !ok {
		return model.GameMode{}, fmt.Errorf("%w: %q", model.ErrUnknownMode, id)
	}
	return m, nil
}

// List returns all modes sorted by ID
func (r *Registry) List() []model.GameMode {
	out := make([]model.GameMode, 0, len(r.modes))
	for _, m := range r.modes {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b model.GameMode) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return out
}

// Validate checks a mode's parameters are usable by the engine
func Validate(m model.GameMode) error {
	switch {
	case m.ID == "":
		return fmt.Errorf("mode id is required")
	case m.BoardSize < model.MinMatchSize:
		return fmt.Errorf("mode %s: board size %d is too small", m.ID, m.BoardSize)
	case m.MinColors < 1 || m.MaxColors < m.MinColors || m.MaxColors > model.MaxPaletteSize:
		return fmt.Errorf("mode %s: invalid palette bounds %d..%d", m.ID, m.MinColors, m.MaxColors)
	case m.InitialMoves < 1:
		return fmt.Errorf("mode %s: initial moves must be positive", m.ID)
	case m.MaxCascades < 1:
		return fmt.Errorf("mode %s: max cascades must be positive", m.ID)
	case m.TargetMultiplier <= 1:
		return fmt.Errorf("mode %s: target multiplier must exceed 1", m.ID)
	}
	return nil
}
