package session

import "github.com/hammamikhairi/ottorecipes/internal/domain"

// State is a snapshot of everything the presentation layer renders.
// Snapshots are deep copies; mutating one never affects the controller.
type State struct {
	// Recipes are the saved recipes, newest first.
	Recipes []domain.Recipe
	// Generated is the recipe in the preview, nil when there is none.
	Generated *domain.Recipe
	// Loading is true exactly while a generation request is outstanding.
	Loading bool
	// ShowSheet is true while the preview should be visible. It implies
	// Generated != nil.
	ShowSheet bool
	// Loaded is true once the initial store read has finished, whether it
	// succeeded or not.
	Loaded bool
	// LastError is the most recent failure, nil after a command of the
	// same kind starts again.
	LastError error
}

// EventKind classifies controller notifications.
type EventKind int

const (
	// EventChanged means the state changed.
	EventChanged EventKind = iota
	// EventLoaded fires once when the initial store read succeeds.
	EventLoaded
	// EventGenerationFailed carries a generation failure.
	EventGenerationFailed
	// EventPersistenceFailed carries a store read or write failure.
	EventPersistenceFailed
)

// String returns a human-readable event kind.
func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventLoaded:
		return "loaded"
	case EventGenerationFailed:
		return "generation_failed"
	case EventPersistenceFailed:
		return "persistence_failed"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after every state transition.
type Event struct {
	Kind  EventKind
	State State
	Err   error // set for failure events
}

// Listener receives events. Listeners run on the goroutine that caused the
// transition and must not block or call controller commands synchronously.
type Listener func(Event)

func (s State) clone() State {
	out := s
	if s.Recipes != nil {
		out.Recipes = make([]domain.Recipe, len(s.Recipes))
		for i, r := range s.Recipes {
			out.Recipes[i] = r.Clone()
		}
	}
	if s.Generated != nil {
		g := s.Generated.Clone()
		out.Generated = &g
	}
	return out
}

// upsert replaces the recipe with the same ID or prepends it.
func upsert(recipes []domain.Recipe, r domain.Recipe) []domain.Recipe {
	for i := range recipes {
		if recipes[i].ID == r.ID {
			recipes[i] = r
			return recipes
		}
	}
	return append([]domain.Recipe{r}, recipes...)
}

func remove(recipes []domain.Recipe, id string) []domain.Recipe {
	out := recipes[:0]
	for _, r := range recipes {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}
