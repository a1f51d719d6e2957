package gpt

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
)

// Compile-time interface check.
var _ domain.RecipeGenerator = (*Generator)(nil)

// Chatter is the part of Client the generator needs.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Generator turns prompts into recipes by asking a chat model for JSON.
type Generator struct {
	chat Chatter
	log  *logger.Logger
}

// NewGenerator creates a recipe generator backed by the given chat client.
func NewGenerator(chat Chatter, log *logger.Logger) *Generator {
	return &Generator{chat: chat, log: log}
}

// recipeJSON is the shape the model is asked to produce. Numbers are read
// as floats because models are loose about "10" vs 10.0.
type recipeJSON struct {
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Minutes      float64  `json:"minutes"`
	Stars        float64  `json:"stars"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	ImageURL     string   `json:"image_url"`
}

// Generate asks the model for one recipe. Every failure wraps
// domain.ErrGeneration.
func (g *Generator) Generate(ctx context.Context, prompt domain.Prompt) (*domain.Recipe, error) {
	query := prompt.Text
	if prompt.IsRandom() {
		query = PromptRandom
	}

	messages := []Message{
		TextMessage(RoleSystem, PromptRecipe),
		TextMessage(RoleUser, query),
	}

	raw, err := g.chat.Chat(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	r, err := parseRecipe(raw)
	if err != nil {
		g.log.Error("gpt: failed to parse recipe JSON: %v\nraw: %s", err, truncate(raw, 400))
		return nil, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}

	g.log.Debug("gpt: generated %q (%d ingredients, %d steps)", r.Title, len(r.Ingredients), len(r.Instructions))
	return r, nil
}

// maxMinutes is the largest duration the recipes table can hold.
const maxMinutes = math.MaxInt32

// parseRecipe decodes a model reply into a normalized, valid recipe.
func parseRecipe(raw string) (*domain.Recipe, error) {
	raw = extractObject(stripCodeFence(raw))

	var wire recipeJSON
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("decode recipe: %w", err)
	}

	if wire.Minutes > maxMinutes {
		return nil, fmt.Errorf("%w: minutes %.0f out of range", domain.ErrInvalidRecipe, wire.Minutes)
	}
	if wire.Minutes < 0 {
		wire.Minutes = 0
	}

	r := recipe.Normalize(domain.Recipe{
		Title:        wire.Title,
		Category:     wire.Category,
		Minutes:      int(math.Round(wire.Minutes)),
		Stars:        math.Round(wire.Stars*10) / 10,
		Ingredients:  wire.Ingredients,
		Instructions: wire.Instructions,
		ImageURL:     wire.ImageURL,
	})
	if err := recipe.Validate(r); err != nil {
		return nil, err
	}
	return &r, nil
}

// stripCodeFence removes ```json ... ``` wrappers that LLMs love to add.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// extractObject drops chatter before the first '{' and after the last '}'.
func extractObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end < start {
		return s
	}
	return s[start : end+1]
}
