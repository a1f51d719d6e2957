// Package domain defines the core types and interfaces for the recipe app.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"strings"
	"time"
)

// MaxStars is the upper bound of a recipe rating.
const MaxStars = 5

// Recipe is a fully-populated recipe. A recipe that is still being
// generated does not exist as a Recipe value yet.
type Recipe struct {
	ID           string // assigned by the RecipeStore, empty until saved
	Title        string
	Category     string // may be empty
	Minutes      int
	Stars        float64 // 0..MaxStars
	Ingredients  []string
	Instructions []string
	ImageURL     string // empty when the recipe has no image
	Prompt       string // empty for list-sourced or hand-written recipes
	CreatedAt    time.Time
}

// Persisted reports whether the recipe carries a store-assigned identity.
func (r Recipe) Persisted() bool { return r.ID != "" }

// Clone returns a deep copy so callers never share the line slices.
func (r Recipe) Clone() Recipe {
	out := r
	out.Ingredients = append([]string(nil), r.Ingredients...)
	out.Instructions = append([]string(nil), r.Instructions...)
	return out
}

// Prompt is the free text a user typed to describe ingredients or cravings.
type Prompt struct {
	Text string
}

// NewPrompt builds a prompt from raw user input.
func NewPrompt(text string) Prompt {
	return Prompt{Text: strings.TrimSpace(text)}
}

// IsRandom reports whether the prompt is empty, which asks the generator
// for a recipe of its own choosing.
func (p Prompt) IsRandom() bool { return strings.TrimSpace(p.Text) == "" }

// String returns the prompt text.
func (p Prompt) String() string { return p.Text }
