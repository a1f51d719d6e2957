// Package session implements the recipe session controller: the state
// machine behind the home screen that mediates between user commands, the
// recipe generator and the recipe store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
)

// Option configures the controller.
type Option func(*Controller)

// WithGenerationTimeout bounds every generation request. Zero means the
// caller's context is the only limit.
func WithGenerationTimeout(d time.Duration) Option {
	return func(c *Controller) {
		c.genTimeout = d
	}
}

// WithListener registers a listener before the initial load starts, so it
// observes the load result.
func WithListener(l Listener) Option {
	return func(c *Controller) {
		c.listeners[c.nextListener] = l
		c.nextListener++
	}
}

// Controller owns the session state. It depends only on interfaces and is
// fully testable with fakes.
//
// Generation uses a reject policy: GenerateRecipe returns domain.ErrBusy
// while another generation is outstanding. Store calls are serialized and
// their results applied in call order.
type Controller struct {
	generator  domain.RecipeGenerator
	store      domain.RecipeStore
	log        *logger.Logger
	genTimeout time.Duration

	mu           sync.Mutex
	state        State
	previewRev   uint64 // bumped whenever Generated is replaced
	closed       bool
	listeners    map[int]Listener
	nextListener int

	// storeMu is held across a store call and the state update it causes.
	storeMu sync.Mutex
	// notifyMu keeps listener deliveries from interleaving.
	notifyMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	loaded chan struct{}
}

// New creates a controller and starts reading the saved recipes in the
// background. Recipes is empty, not nil, until the read completes.
func New(generator domain.RecipeGenerator, store domain.RecipeStore, log *logger.Logger, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		generator:  generator,
		store:      store,
		log:        log,
		genTimeout: 60 * time.Second,
		state:      State{Recipes: []domain.Recipe{}},
		listeners:  make(map[int]Listener),
		ctx:        ctx,
		cancel:     cancel,
		loaded:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	go c.load()
	return c
}

// Loaded is closed once the initial store read has been applied or
// discarded.
func (c *Controller) Loaded() <-chan struct{} { return c.loaded }

// State returns a snapshot of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Subscribe registers a listener and returns a function that removes it.
func (c *Controller) Subscribe(l Listener) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextListener
	c.nextListener++
	if !c.closed {
		c.listeners[id] = l
	}
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.listeners, id)
	}
}

// Close disposes the controller. Outstanding calls are cancelled and any
// result that still arrives is discarded. Close is idempotent.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.listeners = make(map[int]Listener)
	c.mu.Unlock()

	c.cancel()
	c.log.Debug("session controller closed")
}

// ── Commands ─────────────────────────────────────────────────────

// GenerateRecipe asks the generator for a recipe. Loading is true for the
// duration of the call. On success the recipe becomes Generated; on failure
// Generated is left as it was and a generation failure is returned and
// published. The sheet is not opened; see PresentGenerated.
func (c *Controller) GenerateRecipe(ctx context.Context, prompt domain.Prompt) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	if c.state.Loading {
		c.mu.Unlock()
		c.log.Debug("generate rejected, another request is outstanding")
		return domain.ErrBusy
	}
	c.state.Loading = true
	c.state.LastError = nil
	c.mu.Unlock()
	c.emit(EventChanged, nil)

	c.log.Info("generating recipe for %q", prompt.Text)
	start := time.Now()

	callCtx, cancel := c.callContext(ctx, c.genTimeout)
	generated, err := c.generate(callCtx, prompt)
	cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("discarding generation result, controller closed")
		return domain.ErrClosed
	}
	c.state.Loading = false
	if err != nil {
		f := domain.NewFailure("generate recipe", domain.ErrGeneration, err)
		c.state.LastError = f
		c.mu.Unlock()
		c.log.Warn("%v", f)
		c.emit(EventGenerationFailed, f)
		return f
	}
	c.state.Generated = generated
	c.previewRev++
	c.mu.Unlock()

	c.log.Info("generated %q in %s", generated.Title, time.Since(start).Round(time.Millisecond))
	c.emit(EventChanged, nil)
	return nil
}

// PresentGenerated opens the sheet on the current Generated recipe. It
// reports false, and changes nothing, when there is no recipe to show or a
// generation is still outstanding.
func (c *Controller) PresentGenerated() bool {
	c.mu.Lock()
	if c.closed || c.state.Generated == nil || c.state.Loading {
		c.mu.Unlock()
		return false
	}
	c.state.ShowSheet = true
	c.mu.Unlock()

	c.emit(EventChanged, nil)
	return true
}

// ShowModalFromList previews a saved recipe in the same sheet used for
// generated ones.
func (c *Controller) ShowModalFromList(r domain.Recipe) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	preview := r.Clone()
	c.state.Generated = &preview
	c.state.ShowSheet = true
	c.previewRev++
	c.mu.Unlock()

	c.log.Debug("previewing %q from list", r.Title)
	c.emit(EventChanged, nil)
}

// HideModal closes the sheet. Generated is kept so an exit animation can
// still read it.
func (c *Controller) HideModal() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.ShowSheet = false
	c.mu.Unlock()

	c.emit(EventChanged, nil)
}

// HidePreview closes the sheet only while it still shows the saved recipe
// with the given ID. It reports whether the sheet was closed.
func (c *Controller) HidePreview(id string) bool {
	c.mu.Lock()
	if c.closed || !c.state.ShowSheet || c.state.Generated == nil || c.state.Generated.ID != id || id == "" {
		c.mu.Unlock()
		return false
	}
	c.state.ShowSheet = false
	c.mu.Unlock()

	c.emit(EventChanged, nil)
	return true
}

// SaveRecipeInDB persists the Generated recipe and merges it into Recipes.
// Without a Generated recipe it does nothing. On failure Recipes, Generated
// and ShowSheet are untouched so the save can be retried.
func (c *Controller) SaveRecipeInDB(ctx context.Context) error {
	_, err := c.SaveGenerated(ctx)
	return err
}

// SaveGenerated is SaveRecipeInDB returning the recipe that was saved, or
// nil when there was nothing to save.
func (c *Controller) SaveGenerated(ctx context.Context) (*domain.Recipe, error) {
	c.storeMu.Lock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.storeMu.Unlock()
		return nil, domain.ErrClosed
	}
	if c.state.Generated == nil {
		c.mu.Unlock()
		c.storeMu.Unlock()
		c.log.Debug("save ignored, nothing to save")
		return nil, nil
	}
	pending := c.state.Generated.Clone()
	rev := c.previewRev
	c.state.LastError = nil
	c.mu.Unlock()

	callCtx, cancel := c.callContext(ctx, 0)
	saved, err := c.store.Save(callCtx, pending)
	cancel()
	if err == nil && (saved == nil || saved.ID == "") {
		err = errors.New("store returned a recipe without an id")
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.storeMu.Unlock()
		return nil, domain.ErrClosed
	}
	if err != nil {
		f := domain.NewFailure("save recipe", domain.ErrPersistence, err)
		c.state.LastError = f
		c.mu.Unlock()
		c.storeMu.Unlock()
		c.log.Error("%v", f)
		c.emit(EventPersistenceFailed, f)
		return nil, f
	}
	c.state.Recipes = upsert(c.state.Recipes, saved.Clone())
	if c.previewRev == rev {
		// Carry the new identity so a repeated save updates in place.
		g := saved.Clone()
		c.state.Generated = &g
	}
	c.mu.Unlock()
	c.storeMu.Unlock()

	c.log.Info("saved recipe %q (%s)", saved.Title, saved.ID)
	c.emit(EventChanged, nil)
	out := saved.Clone()
	return &out, nil
}

// DeleteRecipe removes a saved recipe from the store and the list. A
// preview of that recipe stays open but loses its identity, so saving it
// again creates a new entry. A recipe the store no longer has is removed
// from the list as well, and the not-found failure is still reported.
func (c *Controller) DeleteRecipe(ctx context.Context, id string) error {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	c.state.LastError = nil
	c.mu.Unlock()

	callCtx, cancel := c.callContext(ctx, 0)
	err := c.store.Delete(callCtx, id)
	cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	gone := err == nil || errors.Is(err, domain.ErrNotFound)
	if gone {
		// Already missing from the store: drop it from the list too.
		c.state.Recipes = remove(c.state.Recipes, id)
		if c.state.Generated != nil && c.state.Generated.ID == id {
			c.state.Generated.ID = ""
			c.state.Generated.CreatedAt = time.Time{}
		}
	}
	if err != nil {
		f := domain.NewFailure("delete recipe", domain.ErrPersistence, err)
		c.state.LastError = f
		c.mu.Unlock()
		c.log.Error("%v", f)
		c.emit(EventPersistenceFailed, f)
		return f
	}
	c.mu.Unlock()

	c.log.Info("deleted recipe %s", id)
	c.emit(EventChanged, nil)
	return nil
}

// Reload re-reads all saved recipes from the store. On failure Recipes is
// left as it was.
func (c *Controller) Reload(ctx context.Context) error {
	return c.readAll(ctx, "reload recipes")
}

// ── Internals ────────────────────────────────────────────────────

func (c *Controller) load() {
	defer close(c.loaded)
	if err := c.readAll(context.Background(), "load recipes"); err == nil {
		c.emit(EventLoaded, nil)
	}
}

func (c *Controller) readAll(ctx context.Context, op string) error {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrClosed
	}
	c.mu.Unlock()

	callCtx, cancel := c.callContext(ctx, 0)
	recipes, err := c.store.ListAll(callCtx)
	cancel()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.log.Debug("discarding %s result, controller closed", op)
		return domain.ErrClosed
	}
	c.state.Loaded = true
	if err != nil {
		f := domain.NewFailure(op, domain.ErrPersistence, err)
		c.state.LastError = f
		c.mu.Unlock()
		c.log.Error("%v", f)
		c.emit(EventPersistenceFailed, f)
		return f
	}
	list := make([]domain.Recipe, len(recipes))
	for i, r := range recipes {
		list[i] = r.Clone()
	}
	c.state.Recipes = list
	c.mu.Unlock()

	c.log.Debug("%s: %d recipes", op, len(list))
	c.emit(EventChanged, nil)
	return nil
}

// generate calls the generator and turns its answer into a fully-populated,
// unsaved recipe carrying the prompt text.
func (c *Controller) generate(ctx context.Context, prompt domain.Prompt) (r *domain.Recipe, err error) {
	defer func() {
		if p := recover(); p != nil {
			r, err = nil, fmt.Errorf("generator panicked: %v", p)
		}
	}()

	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("generator returned no recipe")
	}

	out := recipe.Normalize(*raw)
	out.ID = ""
	out.CreatedAt = time.Time{}
	out.Prompt = prompt.Text
	if err := recipe.Validate(out); err != nil {
		return nil, err
	}
	return &out, nil
}

// callContext derives a context that ends when the caller's context ends,
// the timeout passes, or the controller is closed.
func (c *Controller) callContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	stop := context.AfterFunc(c.ctx, cancel)

	if timeout <= 0 {
		return ctx, func() {
			stop()
			cancel()
		}
	}

	tctx, tcancel := context.WithTimeout(ctx, timeout)
	return tctx, func() {
		tcancel()
		stop()
		cancel()
	}
}

// emit delivers an event with a fresh snapshot to every listener.
func (c *Controller) emit(kind EventKind, err error) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	snapshot := c.state.clone()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(Event{Kind: kind, State: snapshot, Err: err})
	}
}
