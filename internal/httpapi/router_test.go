package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
	"github.com/hammamikhairi/ottorecipes/internal/session"
	"github.com/hammamikhairi/ottorecipes/internal/storage"
)

type failingGenerator struct{}

func (failingGenerator) Generate(context.Context, domain.Prompt) (*domain.Recipe, error) {
	return nil, fmt.Errorf("%w: upstream down", domain.ErrGeneration)
}

func setup(t *testing.T, gen domain.RecipeGenerator) (*httptest.Server, *session.Controller, *storage.MemoryStore) {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	ctrl := session.New(gen, store, log)
	t.Cleanup(ctrl.Close)

	select {
	case <-ctrl.Loaded():
	case <-time.After(2 * time.Second):
		t.Fatal("controller did not load")
	}

	srv := httptest.NewServer(NewRouter(ctrl, log, WithRecentLimit(2)))
	t.Cleanup(srv.Close)
	return srv, ctrl, store
}

func catalog() *recipe.Catalog {
	return recipe.NewCatalog(logger.New(logger.LevelOff, nil))
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func decodeState(t *testing.T, data []byte) stateJSON {
	t.Helper()
	var st stateJSON
	require.NoError(t, json.Unmarshal(data, &st))
	return st
}

func TestHealth(t *testing.T) {
	srv, _, _ := setup(t, catalog())

	resp, body := do(t, srv, http.MethodGet, "/v1/healthz", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.JSONEq(t, `{"status":"ok","loaded":true}`, string(body))
	require.NotEmpty(t, resp.Header.Get("Content-Type"))
}

func TestGeneratePreviewSaveFlow(t *testing.T) {
	srv, ctrl, store := setup(t, catalog())

	resp, body := do(t, srv, http.MethodPost, "/v1/generate", `{"prompt":"eggs, spinach"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	st := decodeState(t, body)
	require.False(t, st.Loading)
	require.NotNil(t, st.Generated)
	require.Equal(t, "Spinach Omelette", st.Generated.Title)
	require.Equal(t, "eggs, spinach", st.Generated.Prompt)
	require.Empty(t, st.Generated.ID)
	require.False(t, st.ShowSheet)

	resp, body = do(t, srv, http.MethodPost, "/v1/preview", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, decodeState(t, body).ShowSheet)

	resp, body = do(t, srv, http.MethodPost, "/v1/save", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st = decodeState(t, body)
	require.Len(t, st.Recipes, 1)
	require.NotEmpty(t, st.Recipes[0].ID)
	require.NotNil(t, st.Recipes[0].CreatedAt)
	require.Equal(t, 1, store.Len())

	resp, body = do(t, srv, http.MethodDelete, "/v1/preview", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st = decodeState(t, body)
	require.False(t, st.ShowSheet)
	require.NotNil(t, st.Generated)

	require.Len(t, ctrl.State().Recipes, 1)
}

func TestGenerateEmptyBodyIsRandom(t *testing.T) {
	srv, _, _ := setup(t, catalog())

	resp, body := do(t, srv, http.MethodPost, "/v1/generate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NotNil(t, decodeState(t, body).Generated)
}

func TestGenerateBadJSON(t *testing.T) {
	srv, _, _ := setup(t, catalog())

	resp, _ := do(t, srv, http.MethodPost, "/v1/generate", `{"prompt":`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateFailureIsBadGateway(t *testing.T) {
	srv, ctrl, _ := setup(t, failingGenerator{})

	resp, body := do(t, srv, http.MethodPost, "/v1/generate", `{"prompt":"eggs"}`)
	require.Equal(t, http.StatusBadGateway, resp.StatusCode)

	var e errorJSON
	require.NoError(t, json.Unmarshal(body, &e))
	require.Contains(t, e.Error, "upstream down")
	require.ErrorIs(t, ctrl.State().LastError, domain.ErrGeneration)
}

func TestPreviewWithoutRecipeConflicts(t *testing.T) {
	srv, _, _ := setup(t, catalog())

	resp, _ := do(t, srv, http.MethodPost, "/v1/preview", "")
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestSaveWithoutRecipeIsNoop(t *testing.T) {
	srv, _, store := setup(t, catalog())

	resp, body := do(t, srv, http.MethodPost, "/v1/save", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, decodeState(t, body).Recipes)
	require.Zero(t, store.Len())
}

func TestPreviewSavedAndDelete(t *testing.T) {
	srv, ctrl, _ := setup(t, catalog())
	ctx := context.Background()

	require.NoError(t, ctrl.GenerateRecipe(ctx, domain.NewPrompt("feta cucumber")))
	require.NoError(t, ctrl.SaveRecipeInDB(ctx))
	id := ctrl.State().Recipes[0].ID
	ctrl.HideModal()

	resp, body := do(t, srv, http.MethodPost, "/v1/recipes/"+id+"/preview", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st := decodeState(t, body)
	require.True(t, st.ShowSheet)
	require.Equal(t, id, st.Generated.ID)

	resp, _ = do(t, srv, http.MethodPost, "/v1/recipes/missing/preview", "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, srv, http.MethodDelete, "/v1/recipes/"+id, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Empty(t, ctrl.State().Recipes)

	resp, _ = do(t, srv, http.MethodDelete, "/v1/recipes/"+id, "")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeed(t *testing.T) {
	srv, ctrl, _ := setup(t, catalog())
	ctx := context.Background()

	for _, p := range []string{"eggs spinach", "feta cucumber", "chicken lemon"} {
		require.NoError(t, ctrl.GenerateRecipe(ctx, domain.NewPrompt(p)))
		require.NoError(t, ctrl.SaveRecipeInDB(ctx))
	}

	resp, body := do(t, srv, http.MethodGet, "/v1/feed", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var f feedJSON
	require.NoError(t, json.Unmarshal(body, &f))
	require.Len(t, f.Recent, 2)
	require.Len(t, f.All, 3)
	require.Len(t, f.Ideas, len(recipe.QuickIdeas()))
	require.Empty(t, f.Active)

	resp, body = do(t, srv, http.MethodGet, "/v1/feed?idea=nooven&recent=1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	f = feedJSON{}
	require.NoError(t, json.Unmarshal(body, &f))
	require.Len(t, f.Recent, 1)
	require.Equal(t, "nooven", f.Active)
	for _, r := range f.All {
		require.NotEqual(t, "Lemon Roast Chicken", r.Title)
	}

	resp, _ = do(t, srv, http.MethodGet, "/v1/feed?idea=dessert", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodGet, "/v1/feed?recent=-1", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReload(t *testing.T) {
	srv, _, store := setup(t, catalog())

	_, err := store.Save(context.Background(), domain.Recipe{
		Title: "Toast", Ingredients: []string{"bread"}, Instructions: []string{"Toast it."},
	})
	require.NoError(t, err)

	resp, body := do(t, srv, http.MethodPost, "/v1/reload", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, decodeState(t, body).Recipes, 1)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrBusy, http.StatusConflict},
		{domain.NewFailure("generate recipe", domain.ErrGeneration, errors.New("x")), http.StatusBadGateway},
		{domain.NewFailure("save recipe", domain.ErrPersistence, errors.New("x")), http.StatusServiceUnavailable},
		{domain.NewFailure("delete recipe", domain.ErrPersistence, domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrClosed, http.StatusServiceUnavailable},
		{errors.New("mystery"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
