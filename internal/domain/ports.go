package domain

import "context"

// RecipeGenerator turns a prompt into a recipe. Implementations can be
// LLM-backed or served from a local catalog. Failures should wrap
// ErrGeneration.
type RecipeGenerator interface {
	Generate(ctx context.Context, prompt Prompt) (*Recipe, error)
}

// RecipeStore persists saved recipes. Implementations can be in-memory,
// PostgreSQL, or any other backend. Save assigns an ID when the recipe has
// none and upserts otherwise. Failures should wrap ErrPersistence.
type RecipeStore interface {
	ListAll(ctx context.Context) ([]Recipe, error)
	Save(ctx context.Context, recipe Recipe) (*Recipe, error)
	Delete(ctx context.Context, id string) error
}

// IntentParser converts raw user input into a structured intent.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}

// Notifier delivers messages to the user.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}
