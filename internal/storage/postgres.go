package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeStore = (*PostgresStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS recipes (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	minutes      INTEGER NOT NULL DEFAULT 0 CHECK (minutes >= 0),
	stars        DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (stars >= 0 AND stars <= 5),
	ingredients  TEXT[] NOT NULL DEFAULT '{}',
	instructions TEXT[] NOT NULL DEFAULT '{}',
	image_url    TEXT NOT NULL DEFAULT '',
	prompt       TEXT NOT NULL DEFAULT '',
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS recipes_created_at_idx ON recipes (created_at DESC);
`

const recipeColumns = `id, title, category, minutes, stars, ingredients, instructions, image_url, prompt, created_at`

// NewPool opens a pgx connection pool for the given database URL.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	poolCfg.MaxConns = 4
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// PostgresStore implements domain.RecipeStore on PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool, log *logger.Logger) *PostgresStore {
	return &PostgresStore{pool: pool, log: log}
}

// EnsureSchema creates the recipes table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("%w: ensure schema: %w", domain.ErrPersistence, err)
	}
	return nil
}

// ListAll returns every saved recipe, newest first.
func (s *PostgresStore) ListAll(ctx context.Context) ([]domain.Recipe, error) {
	rows, err := s.pool.Query(ctx, `
SELECT `+recipeColumns+`
FROM recipes
ORDER BY created_at DESC, id DESC;
`)
	if err != nil {
		return nil, fmt.Errorf("%w: list recipes: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	recipes := []domain.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan recipe: %w", domain.ErrPersistence, err)
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list recipes: %w", domain.ErrPersistence, err)
	}

	s.log.Debug("listing all recipes, count=%d", len(recipes))
	return recipes, nil
}

// Save inserts a recipe, assigning an ID when it has none, or updates the
// row with the same ID. The creation time of an existing row is kept.
func (s *PostgresStore) Save(ctx context.Context, recipe domain.Recipe) (*domain.Recipe, error) {
	id := recipe.ID
	if id == "" {
		id = uuid.NewString()
	}

	row := s.pool.QueryRow(ctx, `
INSERT INTO recipes (id, title, category, minutes, stars, ingredients, instructions, image_url, prompt)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	title = EXCLUDED.title,
	category = EXCLUDED.category,
	minutes = EXCLUDED.minutes,
	stars = EXCLUDED.stars,
	ingredients = EXCLUDED.ingredients,
	instructions = EXCLUDED.instructions,
	image_url = EXCLUDED.image_url,
	prompt = EXCLUDED.prompt
RETURNING `+recipeColumns+`;
`, id, recipe.Title, recipe.Category, recipe.Minutes, recipe.Stars,
		nonNil(recipe.Ingredients), nonNil(recipe.Instructions), recipe.ImageURL, recipe.Prompt)

	saved, err := scanRecipe(row)
	if err != nil {
		return nil, fmt.Errorf("%w: save recipe %q: %w", domain.ErrPersistence, recipe.Title, err)
	}

	s.log.Debug("saving recipe %s (%q)", saved.ID, saved.Title)
	return &saved, nil
}

// Delete removes a recipe by ID.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("%w: delete recipe %s: %w", domain.ErrPersistence, id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	s.log.Debug("deleted recipe %s", id)
	return nil
}

func scanRecipe(row pgx.Row) (domain.Recipe, error) {
	var r domain.Recipe
	err := row.Scan(&r.ID, &r.Title, &r.Category, &r.Minutes, &r.Stars,
		&r.Ingredients, &r.Instructions, &r.ImageURL, &r.Prompt, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return r, domain.ErrNotFound
	}
	return r, err
}

func nonNil(lines []string) []string {
	if lines == nil {
		return []string{}
	}
	return lines
}
