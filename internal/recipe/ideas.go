package recipe

import (
	"strings"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
)

// Idea is a quick-filter chip on the home feed. Match selects saved recipes
// for the list; Prompt is what gets sent to the generator when the chip is
// used to ask for something new.
type Idea struct {
	Key    string
	Label  string
	Prompt string
	Match  func(domain.Recipe) bool
}

var ideas = []Idea{
	{
		Key:    "quick",
		Label:  "Quick (10 min)",
		Prompt: "something ready in 10 minutes or less",
		Match:  func(r domain.Recipe) bool { return r.Minutes > 0 && r.Minutes <= 10 },
	},
	{
		Key:    "light",
		Label:  "Low calorie",
		Prompt: "a light, low calorie dish",
		Match: func(r domain.Recipe) bool {
			return mentions(r.Category+" "+r.Title, "light", "salad", "low calorie", "healthy")
		},
	},
	{
		Key:    "nooven",
		Label:  "No oven",
		Prompt: "a dish that needs no oven",
		Match: func(r domain.Recipe) bool {
			return !mentions(strings.Join(r.Instructions, " "), "oven", "bake", "roast", "broil")
		},
	},
	{
		Key:    "breakfast",
		Label:  "Breakfast",
		Prompt: "a breakfast recipe",
		Match: func(r domain.Recipe) bool {
			return mentions(r.Category+" "+r.Title, "breakfast", "brunch", "omelette", "pancake")
		},
	},
}

// QuickIdeas returns the home feed chips in display order.
func QuickIdeas() []Idea {
	return append([]Idea(nil), ideas...)
}

// LookupIdea finds a chip by key or label, case-insensitively.
func LookupIdea(name string) (Idea, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, i := range ideas {
		if i.Key == name || strings.ToLower(i.Label) == name {
			return i, true
		}
	}
	return Idea{}, false
}

// Filter returns the recipes matching idea, preserving order. A zero Idea
// matches everything.
func Filter(recipes []domain.Recipe, idea Idea) []domain.Recipe {
	if idea.Match == nil {
		return append([]domain.Recipe(nil), recipes...)
	}
	var out []domain.Recipe
	for _, r := range recipes {
		if idea.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// Feed is the home screen content derived from the saved recipes.
type Feed struct {
	Recent []domain.Recipe
	All    []domain.Recipe
}

// BuildFeed splits recipes (newest first) into the recent row, capped at
// recentLimit, and the full list filtered by idea.
func BuildFeed(recipes []domain.Recipe, recentLimit int, idea Idea) Feed {
	n := len(recipes)
	if recentLimit >= 0 && recentLimit < n {
		n = recentLimit
	}
	return Feed{
		Recent: append([]domain.Recipe(nil), recipes[:n]...),
		All:    Filter(recipes, idea),
	}
}

func mentions(text string, words ...string) bool {
	text = strings.ToLower(text)
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
