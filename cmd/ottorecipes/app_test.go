package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/ottorecipes/internal/conversation"
	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
	"github.com/hammamikhairi/ottorecipes/internal/session"
	"github.com/hammamikhairi/ottorecipes/internal/storage"
)

type fakeScreen struct {
	in chan string

	mu     sync.Mutex
	filter recipe.Idea
	quit   bool
}

func newFakeScreen(lines ...string) *fakeScreen {
	s := &fakeScreen{in: make(chan string, len(lines))}
	for _, l := range lines {
		s.in <- l
	}
	close(s.in)
	return s
}

func (s *fakeScreen) InputChan() <-chan string { return s.in }

func (s *fakeScreen) Feed(st session.State) recipe.Feed {
	return recipe.BuildFeed(st.Recipes, 5, s.Filter())
}

func (s *fakeScreen) SetFilter(idea recipe.Idea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = idea
}

func (s *fakeScreen) Filter() recipe.Idea {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

func (s *fakeScreen) Quit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quit = true
}

type recorder struct {
	mu     sync.Mutex
	normal []string
	urgent []string
}

func (r *recorder) Notify(_ context.Context, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normal = append(r.normal, msg)
	return nil
}

func (r *recorder) NotifyUrgent(_ context.Context, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urgent = append(r.urgent, msg)
	return nil
}

func (r *recorder) said(sub string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.normal {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

func (r *recorder) warned(sub string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.urgent {
		if strings.Contains(m, sub) {
			return true
		}
	}
	return false
}

type brokenGenerator struct{}

func (brokenGenerator) Generate(context.Context, domain.Prompt) (*domain.Recipe, error) {
	return nil, fmt.Errorf("%w: model unavailable", domain.ErrGeneration)
}

type fixture struct {
	app   *cliApp
	ctrl  *session.Controller
	store *storage.MemoryStore
	rec   *recorder
}

func newFixture(t *testing.T, gen domain.RecipeGenerator, saved ...domain.Recipe) *fixture {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	store := storage.NewMemoryStore(log)
	for _, r := range saved {
		_, err := store.Save(context.Background(), r)
		require.NoError(t, err)
	}
	if gen == nil {
		gen = recipe.NewCatalog(log)
	}

	ctrl := session.New(gen, store, log)
	t.Cleanup(ctrl.Close)

	rec := &recorder{}
	return &fixture{
		app: &cliApp{
			ctrl:     ctrl,
			parser:   conversation.NewCommandParser(log),
			notifier: rec,
			log:      log,
		},
		ctrl:  ctrl,
		store: store,
		rec:   rec,
	}
}

// play feeds lines to the app and waits for it to finish.
func (f *fixture) play(t *testing.T, lines ...string) *fakeScreen {
	t.Helper()
	scr := newFakeScreen(lines...)
	f.app.screen = scr

	done := make(chan struct{})
	go func() {
		defer close(done)
		f.app.run(context.Background())
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not finish")
	}
	return scr
}

func toast() domain.Recipe {
	return domain.Recipe{
		Title:        "Cheese Toast",
		Category:     "Breakfast",
		Minutes:      5,
		Ingredients:  []string{"bread", "cheese"},
		Instructions: []string{"Toast the bread.", "Melt the cheese on top."},
	}
}

func TestGenerateThenSave(t *testing.T) {
	f := newFixture(t, nil)

	f.play(t, "eggs, spinach", "/save")

	require.Equal(t, 1, f.store.Len())
	st := f.ctrl.State()
	require.Len(t, st.Recipes, 1)
	require.Equal(t, "Spinach Omelette", st.Recipes[0].Title)
	require.False(t, st.ShowSheet, "sheet closes after a save")
	require.True(t, f.rec.said("Here's Spinach Omelette"))
	require.True(t, f.rec.said(`Saved "Spinach Omelette"`))
}

func TestRandomOpensSheet(t *testing.T) {
	f := newFixture(t, nil)

	f.play(t, "/random")

	st := f.ctrl.State()
	require.NotNil(t, st.Generated)
	require.True(t, st.ShowSheet)
	require.Empty(t, st.Generated.Prompt)
}

func TestSaveWithoutRecipe(t *testing.T) {
	f := newFixture(t, nil)

	f.play(t, "/save")

	require.Zero(t, f.store.Len())
	require.True(t, f.rec.said("Nothing to save yet"))
}

func TestGenerationFailureIsUrgent(t *testing.T) {
	f := newFixture(t, brokenGenerator{})

	f.play(t, "eggs")

	st := f.ctrl.State()
	require.Nil(t, st.Generated)
	require.False(t, st.ShowSheet)
	require.ErrorIs(t, st.LastError, domain.ErrGeneration)
	require.True(t, f.rec.warned("model unavailable"))
}

func TestOpenCloseAndDeleteOpen(t *testing.T) {
	f := newFixture(t, nil, toast())

	f.play(t, "1")
	st := f.ctrl.State()
	require.True(t, st.ShowSheet)
	require.Equal(t, "Cheese Toast", st.Generated.Title)

	f.play(t, "/close")
	require.False(t, f.ctrl.State().ShowSheet)

	f.play(t, "/delete")
	require.True(t, f.rec.said("Open a saved recipe"))
	require.Equal(t, 1, f.store.Len())

	f.play(t, "/open 1", "/delete")
	require.Zero(t, f.store.Len())
	require.Empty(t, f.ctrl.State().Recipes)
	require.True(t, f.rec.said(`Deleted "Cheese Toast"`))
}

func TestOpenOutOfRange(t *testing.T) {
	f := newFixture(t, nil, toast())

	f.play(t, "7", "/delete 0")

	require.False(t, f.ctrl.State().ShowSheet)
	require.True(t, f.rec.warned("No recipe #7"))
	require.True(t, f.rec.warned("No recipe #0"))
	require.Equal(t, 1, f.store.Len())
}

func TestFilterResolvesNumbersAgainstVisibleList(t *testing.T) {
	roast := toast()
	roast.Title = "Oven Roast"
	roast.Category = "Dinner"
	roast.Minutes = 90
	roast.Instructions = []string{"Preheat the oven.", "Roast."}
	f := newFixture(t, nil, roast, toast())

	scr := f.play(t, "/filter nooven", "/delete 1")

	require.Equal(t, "nooven", scr.Filter().Key)
	require.True(t, f.rec.said("Showing no oven recipes"))
	require.Equal(t, 1, f.store.Len())
	st := f.ctrl.State()
	require.Len(t, st.Recipes, 1)
	require.Equal(t, "Oven Roast", st.Recipes[0].Title)
}

func TestFilterUnknownAndClear(t *testing.T) {
	f := newFixture(t, nil)

	scr := f.play(t, "/filter quick", "/filter dessert", "/filter none")

	require.Empty(t, scr.Filter().Key)
	require.True(t, f.rec.warned(`Unknown idea "dessert"`))
	require.True(t, f.rec.said("Showing all recipes"))
}

func TestQuitStopsReading(t *testing.T) {
	f := newFixture(t, nil)

	scr := f.play(t, "/quit", "eggs, spinach")

	require.True(t, scr.quit)
	require.Nil(t, f.ctrl.State().Generated)
	require.True(t, f.rec.said("Bye"))
}

func TestUnknownCommandAndHelp(t *testing.T) {
	f := newFixture(t, nil)

	f.play(t, "/dance", "/help")

	require.True(t, f.rec.said(`Unknown command "/dance"`))
	require.True(t, f.rec.said("/filter <idea>"))
}

type hintRecorder struct {
	recorder
	hints []string
}

func (r *hintRecorder) PrintHint(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hints = append(r.hints, text)
}

func TestHelpUsesHints(t *testing.T) {
	f := newFixture(t, nil)
	rec := &hintRecorder{}
	f.app.notifier = rec

	f.play(t, "/help")

	require.Contains(t, rec.hints, "Commands:")
	require.False(t, rec.said("/filter <idea>"), "help goes to hints, not chat")
}

func TestSaveReportsTheSavedRecipe(t *testing.T) {
	f := newFixture(t, nil, toast())

	// The save prepends the omelette, so the toast is second.
	f.play(t, "eggs, spinach", "/save", "2", "/save")

	st := f.ctrl.State()
	require.False(t, st.ShowSheet, "the saved recipe's sheet closes")
	require.True(t, f.rec.said(`Saved "Spinach Omelette"`))
	require.True(t, f.rec.said(`Saved "Cheese Toast"`))
	require.Equal(t, 2, f.store.Len())
}

func TestReload(t *testing.T) {
	f := newFixture(t, nil)
	<-f.ctrl.Loaded()

	_, err := f.store.Save(context.Background(), toast())
	require.NoError(t, err)
	require.Empty(t, f.ctrl.State().Recipes)

	f.play(t, "/reload")
	require.Len(t, f.ctrl.State().Recipes, 1)
}

func TestAsyncGenerationFinishesBeforeRunReturns(t *testing.T) {
	f := newFixture(t, nil)
	f.app.async = true

	f.play(t, "feta cucumber")

	st := f.ctrl.State()
	require.NotNil(t, st.Generated)
	require.Equal(t, "Greek Salad", st.Generated.Title)
	require.True(t, st.ShowSheet)
}
