package recipe

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
)

func TestNormalize(t *testing.T) {
	in := domain.Recipe{
		Title:        "  Shakshuka ",
		Category:     "mIDDLE eastern",
		Minutes:      -5,
		Stars:        7.5,
		Ingredients:  []string{" 4 eggs", "", "1 can tomatoes  "},
		Instructions: []string{"Simmer the sauce.", "   "},
		ImageURL:     " https://example.com/s.jpg ",
	}

	want := domain.Recipe{
		Title:        "Shakshuka",
		Category:     "Middle Eastern",
		Minutes:      0,
		Stars:        domain.MaxStars,
		Ingredients:  []string{"4 eggs", "1 can tomatoes"},
		Instructions: []string{"Simmer the sauce."},
		ImageURL:     "https://example.com/s.jpg",
	}

	got := Normalize(in)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Normalize mismatch (-want +got):\n%s", diff)
	}

	// Input must not be modified.
	if in.Ingredients[0] != " 4 eggs" {
		t.Fatalf("Normalize mutated its input: %q", in.Ingredients[0])
	}
}

func TestNormalizeNegativeStars(t *testing.T) {
	got := Normalize(domain.Recipe{Title: "x", Stars: -1})
	if got.Stars != 0 {
		t.Fatalf("expected stars clamped to 0, got %v", got.Stars)
	}
}

func TestValidate(t *testing.T) {
	full := domain.Recipe{
		Title:        "Toast",
		Ingredients:  []string{"bread"},
		Instructions: []string{"toast it"},
	}

	tests := []struct {
		name    string
		mutate  func(*domain.Recipe)
		wantErr bool
	}{
		{"complete", func(*domain.Recipe) {}, false},
		{"uncategorized is fine", func(r *domain.Recipe) { r.Category = "" }, false},
		{"missing title", func(r *domain.Recipe) { r.Title = " " }, true},
		{"no ingredients", func(r *domain.Recipe) { r.Ingredients = nil }, true},
		{"no instructions", func(r *domain.Recipe) { r.Instructions = nil }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := full.Clone()
			tt.mutate(&r)
			err := Validate(r)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidRecipe) {
					t.Fatalf("expected ErrInvalidRecipe, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
