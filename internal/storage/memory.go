// Package storage provides recipe persistence implementations.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory recipe store. Safe for concurrent access.
// It hands out copies, so callers never share slices with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	recipes map[string]domain.Recipe
	log     *logger.Logger
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory recipe store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		recipes: make(map[string]domain.Recipe),
		log:     log,
		now:     time.Now,
	}
}

// ListAll returns every saved recipe, newest first.
func (s *MemoryStore) ListAll(ctx context.Context) ([]domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r.Clone())
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	s.log.Debug("listing all recipes, count=%d", len(out))
	return out, nil
}

// Save stores a recipe. A recipe without an ID gets a new one; a recipe
// with an ID overwrites the stored copy and keeps its creation time.
func (s *MemoryStore) Save(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	out := recipe.Clone()
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if prev, ok := s.recipes[out.ID]; ok {
		out.CreatedAt = prev.CreatedAt
	} else if out.CreatedAt.IsZero() {
		out.CreatedAt = s.now()
	}

	s.recipes[out.ID] = out
	s.log.Debug("saving recipe %s (%q)", out.ID, out.Title)

	saved := out.Clone()
	return &saved, nil
}

// Delete removes a recipe by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.recipes, id)
	s.log.Debug("deleted recipe %s", id)
	return nil
}

// Len returns the number of stored recipes.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.recipes)
}
