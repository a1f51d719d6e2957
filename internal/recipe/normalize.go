// Package recipe holds recipe rules shared by generators, stores and the
// presentation layer: normalization, validation, quick-idea filters, the
// home feed, and a built-in catalog.
package recipe

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
)

// Normalize returns a cleaned copy of r: text is trimmed, blank lines are
// dropped, the rating is clamped to [0, MaxStars], negative durations
// become 0, and the category is title-cased.
func Normalize(r domain.Recipe) domain.Recipe {
	out := r.Clone()
	out.Title = strings.TrimSpace(out.Title)
	out.Category = cases.Title(language.Und).String(strings.ToLower(strings.TrimSpace(out.Category)))
	out.ImageURL = strings.TrimSpace(out.ImageURL)
	out.Prompt = strings.TrimSpace(out.Prompt)
	out.Ingredients = cleanLines(out.Ingredients)
	out.Instructions = cleanLines(out.Instructions)

	if out.Minutes < 0 {
		out.Minutes = 0
	}
	switch {
	case out.Stars < 0:
		out.Stars = 0
	case out.Stars > domain.MaxStars:
		out.Stars = domain.MaxStars
	}
	return out
}

// Validate checks that r is fully populated. It returns an error wrapping
// domain.ErrInvalidRecipe naming the first missing part.
func Validate(r domain.Recipe) error {
	switch {
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("%w: missing title", domain.ErrInvalidRecipe)
	case len(r.Ingredients) == 0:
		return fmt.Errorf("%w: %q has no ingredients", domain.ErrInvalidRecipe, r.Title)
	case len(r.Instructions) == 0:
		return fmt.Errorf("%w: %q has no instructions", domain.ErrInvalidRecipe, r.Title)
	}
	return nil
}

func cleanLines(lines []string) []string {
	out := lines[:0]
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
