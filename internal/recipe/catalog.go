package recipe

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeGenerator = (*Catalog)(nil)

// Catalog holds built-in recipes. It doubles as an offline generator that
// picks the catalog recipe sharing the most words with the prompt, and as
// seed data for an empty store.
type Catalog struct {
	mu      sync.Mutex
	recipes []domain.Recipe
	rnd     *rand.Rand
	log     *logger.Logger
}

// CatalogOption configures the catalog.
type CatalogOption func(*Catalog)

// WithRandSource makes random picks deterministic.
func WithRandSource(src rand.Source) CatalogOption {
	return func(c *Catalog) { c.rnd = rand.New(src) }
}

// NewCatalog creates a catalog preloaded with built-in recipes.
func NewCatalog(log *logger.Logger, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.seed()
	return c
}

// Recipes returns copies of all catalog recipes.
func (c *Catalog) Recipes() []domain.Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.Recipe, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = r.Clone()
	}
	return out
}

// Generate returns the best catalog match for the prompt, or a random
// recipe when the prompt is empty.
func (c *Catalog) Generate(ctx context.Context, prompt domain.Prompt) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var pick domain.Recipe
	if prompt.IsRandom() {
		pick = c.recipes[c.rnd.Intn(len(c.recipes))]
		c.log.Debug("catalog: random pick %q", pick.Title)
	} else {
		best := 0
		query := words(prompt.Text)
		for _, r := range c.recipes {
			if score := c.score(r, query); score > best {
				best, pick = score, r
			}
		}
		if best == 0 {
			c.log.Debug("catalog: nothing matches %q", prompt.Text)
			return nil, fmt.Errorf("%w: no catalog recipe matches %q", domain.ErrGeneration, prompt.Text)
		}
		c.log.Debug("catalog: %q -> %q (score %d)", prompt.Text, pick.Title, best)
	}

	out := pick.Clone()
	out.Prompt = prompt.Text
	return &out, nil
}

// score counts prompt words found in the title, category or ingredients.
func (c *Catalog) score(r domain.Recipe, query map[string]bool) int {
	haystack := words(r.Title + " " + r.Category + " " + strings.Join(r.Ingredients, " "))
	n := 0
	for w := range query {
		if haystack[w] {
			n++
		}
	}
	return n
}

var stopWords = map[string]bool{"and": true, "with": true, "the": true, "some": true, "for": true}

func words(s string) map[string]bool {
	out := make(map[string]bool)
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r)
	}) {
		if len(f) > 2 && !stopWords[f] {
			out[strings.TrimSuffix(f, "s")] = true
		}
	}
	return out
}

// seed populates the catalog with built-in recipes.
func (c *Catalog) seed() {
	c.recipes = []domain.Recipe{
		spinachOmelette(),
		vegetableStirFry(),
		chickenAlfredo(),
		greekSalad(),
		bananaPancakes(),
		roastChicken(),
	}
	for i := range c.recipes {
		c.recipes[i] = Normalize(c.recipes[i])
	}
	c.log.Debug("catalog: seeded %d recipes", len(c.recipes))
}

func spinachOmelette() domain.Recipe {
	return domain.Recipe{
		Title:    "Spinach Omelette",
		Category: "breakfast",
		Minutes:  10,
		Stars:    4.5,
		Ingredients: []string{
			"3 eggs",
			"1 handful baby spinach",
			"1 tablespoon butter",
			"2 tablespoons grated parmesan",
			"salt and black pepper",
		},
		Instructions: []string{
			"Whisk the eggs with a pinch of salt until no streaks of white remain.",
			"Melt the butter in a nonstick pan over medium heat and wilt the spinach for 30 seconds.",
			"Pour in the eggs and let them set at the edges, pulling them to the center as they cook.",
			"Scatter the parmesan, fold the omelette in half and slide it onto a plate.",
		},
	}
}

func vegetableStirFry() domain.Recipe {
	return domain.Recipe{
		Title:    "Vegetable Stir Fry",
		Category: "asian",
		Minutes:  15,
		Stars:    4,
		Ingredients: []string{
			"1 large bell pepper",
			"2 cups broccoli florets",
			"1 medium carrot",
			"1 cup snap peas",
			"3 cloves garlic",
			"1 tablespoon grated fresh ginger",
			"2 tablespoons soy sauce",
			"1 tablespoon sesame oil",
			"2 tablespoons vegetable oil",
		},
		Instructions: []string{
			"Prep every vegetable before the pan goes on: strips of pepper, small florets, julienned carrot.",
			"Mix soy sauce and sesame oil with 2 tablespoons of water.",
			"Heat the wok on high until it just smokes, add the vegetable oil and swirl.",
			"Stir-fry broccoli and carrot for 2 minutes, then pepper and snap peas for 2 more. Let things char.",
			"Push the vegetables aside, fry garlic and ginger for 30 seconds, then toss everything with the sauce.",
		},
	}
}

func chickenAlfredo() domain.Recipe {
	return domain.Recipe{
		Title:    "Chicken Alfredo",
		Category: "italian",
		Minutes:  35,
		Stars:    4.5,
		Ingredients: []string{
			"250 g spaghetti",
			"2 medium chicken breasts",
			"1 cup creme fraiche",
			"1 cup grated gruyere cheese",
			"3 tablespoons butter",
			"4 cloves garlic",
			"1 tablespoon olive oil",
		},
		Instructions: []string{
			"Bring a large pot of well salted water to a boil.",
			"Season the chicken and sear it in olive oil for about 6 minutes per side. Let it rest.",
			"Cook the spaghetti until al dente and keep a cup of pasta water.",
			"Melt butter in the same skillet, cook the garlic for a minute, then reduce the creme fraiche for 3 minutes.",
			"Off the heat, stir in the gruyere, toss with the pasta and top with sliced chicken.",
		},
	}
}

func greekSalad() domain.Recipe {
	return domain.Recipe{
		Title:    "Greek Salad",
		Category: "light",
		Minutes:  10,
		Stars:    4,
		Ingredients: []string{
			"3 ripe tomatoes",
			"1 cucumber",
			"1/2 red onion",
			"100 g feta",
			"a handful of kalamata olives",
			"2 tablespoons olive oil",
			"1 teaspoon dried oregano",
		},
		Instructions: []string{
			"Cut tomatoes and cucumber into chunks and slice the onion thinly.",
			"Toss with olives, olive oil and a pinch of salt.",
			"Lay the feta on top and finish with oregano.",
		},
	}
}

func bananaPancakes() domain.Recipe {
	return domain.Recipe{
		Title:    "Banana Pancakes",
		Category: "breakfast",
		Minutes:  20,
		Stars:    4.5,
		Ingredients: []string{
			"2 ripe bananas",
			"2 eggs",
			"1 cup flour",
			"1 teaspoon baking powder",
			"3/4 cup milk",
			"butter for the pan",
		},
		Instructions: []string{
			"Mash the bananas, then whisk in eggs and milk.",
			"Fold in flour and baking powder until just combined.",
			"Cook ladlefuls in a buttered pan until bubbles form, flip and cook one more minute.",
		},
	}
}

func roastChicken() domain.Recipe {
	return domain.Recipe{
		Title:    "Lemon Roast Chicken",
		Category: "dinner",
		Minutes:  90,
		Stars:    5,
		Ingredients: []string{
			"1 whole chicken",
			"1 lemon",
			"1 head garlic",
			"2 tablespoons butter",
			"fresh thyme",
		},
		Instructions: []string{
			"Heat the oven to 220 C.",
			"Rub the chicken with butter, salt and thyme and stuff it with the halved lemon and garlic.",
			"Roast for about 75 minutes until the juices run clear, then rest for 10 minutes before carving.",
		},
	}
}
