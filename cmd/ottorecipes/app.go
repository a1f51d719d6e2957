package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottorecipes/internal/display"
	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
	"github.com/hammamikhairi/ottorecipes/internal/session"
)

// screen is the front end the app reads input from and resolves list
// numbers against.
type screen interface {
	InputChan() <-chan string
	Feed(st session.State) recipe.Feed
	SetFilter(idea recipe.Idea)
	Filter() recipe.Idea
	Quit()
}

// hinter is implemented by front ends that can show secondary text, such
// as command help, dimmed.
type hinter interface {
	PrintHint(text string)
}

var _ hinter = (*display.UI)(nil)

type cliApp struct {
	ctrl     *session.Controller
	parser   domain.IntentParser
	notifier domain.Notifier
	screen   screen
	log      *logger.Logger

	// async runs generations in the background so the input loop stays
	// responsive while the spinner is up.
	async bool
	wg    sync.WaitGroup
}

func (a *cliApp) say(ctx context.Context, format string, args ...any) {
	if err := a.notifier.Notify(ctx, fmt.Sprintf(format, args...)); err != nil {
		a.log.Warn("notify: %v", err)
	}
}

func (a *cliApp) sayUrgent(ctx context.Context, format string, args ...any) {
	if err := a.notifier.NotifyUrgent(ctx, fmt.Sprintf(format, args...)); err != nil {
		a.log.Warn("notify: %v", err)
	}
}

func (a *cliApp) run(ctx context.Context) {
	defer a.wg.Wait()

	// List numbers are meaningless until the saved recipes are in.
	select {
	case <-a.ctrl.Loaded():
	case <-ctx.Done():
		return
	}

	a.say(ctx, "Tell me what you have and I'll suggest a recipe. Type /help for commands.")

	in := a.screen.InputChan()
	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-in:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("intent: %s (payload=%q)", intent.Type, intent.Payload)
		if !a.handleIntent(ctx, intent) {
			return
		}
	}
}

// handleIntent dispatches one intent. It returns false when the app
// should stop.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	switch intent.Type {
	case domain.IntentGenerate:
		a.generate(ctx, domain.NewPrompt(intent.Payload))
	case domain.IntentRandom:
		a.generate(ctx, domain.Prompt{})
	case domain.IntentOpen:
		a.open(ctx, intent.Payload)
	case domain.IntentClose:
		a.ctrl.HideModal()
	case domain.IntentSave:
		a.save(ctx)
	case domain.IntentFilter:
		a.filter(ctx, intent.Payload)
	case domain.IntentDelete:
		a.delete(ctx, intent.Payload)
	case domain.IntentReload:
		if err := a.ctrl.Reload(ctx); err != nil {
			a.sayUrgent(ctx, "Could not reload recipes: %v", err)
		}
	case domain.IntentHelp:
		a.showHelp(ctx)
	case domain.IntentQuit:
		a.say(ctx, "Bye! Happy cooking.")
		a.screen.Quit()
		return false
	default:
		a.say(ctx, "Unknown command %q. Type /help for the list.", intent.Payload)
	}
	return true
}

func (a *cliApp) generate(ctx context.Context, prompt domain.Prompt) {
	if !a.async {
		a.doGenerate(ctx, prompt)
		return
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.doGenerate(ctx, prompt)
	}()
}

func (a *cliApp) doGenerate(ctx context.Context, prompt domain.Prompt) {
	err := a.ctrl.GenerateRecipe(ctx, prompt)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrBusy):
		a.say(ctx, "Still cooking up the last one, hang on.")
		return
	case errors.Is(err, domain.ErrClosed), errors.Is(err, context.Canceled):
		return
	default:
		a.sayUrgent(ctx, "Could not generate a recipe: %v", err)
		return
	}

	if a.ctrl.PresentGenerated() {
		if g := a.ctrl.State().Generated; g != nil {
			a.say(ctx, "Here's %s. /save to keep it, /close to dismiss.", g.Title)
		}
	}
}

// pick resolves a 1-based list number against the list as displayed.
func (a *cliApp) pick(payload string) (domain.Recipe, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(payload))
	if err != nil {
		return domain.Recipe{}, false
	}
	all := a.screen.Feed(a.ctrl.State()).All
	if n < 1 || n > len(all) {
		return domain.Recipe{}, false
	}
	return all[n-1], true
}

func (a *cliApp) open(ctx context.Context, payload string) {
	r, ok := a.pick(payload)
	if !ok {
		a.sayUrgent(ctx, "No recipe #%s in the list.", payload)
		return
	}
	a.ctrl.ShowModalFromList(r)
}

func (a *cliApp) save(ctx context.Context) {
	saved, err := a.ctrl.SaveGenerated(ctx)
	if err != nil {
		a.sayUrgent(ctx, "Could not save the recipe: %v", err)
		return
	}
	if saved == nil {
		a.say(ctx, "Nothing to save yet. Describe what you'd like to cook first.")
		return
	}
	// A newer preview opened meanwhile stays open.
	a.ctrl.HidePreview(saved.ID)
	a.say(ctx, "Saved %q.", saved.Title)
}

func (a *cliApp) filter(ctx context.Context, payload string) {
	switch strings.ToLower(strings.TrimSpace(payload)) {
	case "", "none", "all", "off":
		a.screen.SetFilter(recipe.Idea{})
		a.say(ctx, "Showing all recipes.")
		return
	}

	idea, ok := recipe.LookupIdea(payload)
	if !ok {
		var keys []string
		for _, i := range recipe.QuickIdeas() {
			keys = append(keys, i.Key)
		}
		a.sayUrgent(ctx, "Unknown idea %q. Try one of: %s.", payload, strings.Join(keys, ", "))
		return
	}
	a.screen.SetFilter(idea)
	a.say(ctx, "Showing %s recipes. Type %q to generate one.", strings.ToLower(idea.Label), idea.Prompt)
}

// delete removes the numbered recipe, or the open saved recipe when no
// number is given.
func (a *cliApp) delete(ctx context.Context, payload string) {
	var target domain.Recipe
	if payload == "" {
		st := a.ctrl.State()
		if !st.ShowSheet || st.Generated == nil || !st.Generated.Persisted() {
			a.say(ctx, "Open a saved recipe or give its number, e.g. /delete 2.")
			return
		}
		target = *st.Generated
	} else {
		r, ok := a.pick(payload)
		if !ok {
			a.sayUrgent(ctx, "No recipe #%s in the list.", payload)
			return
		}
		target = r
	}

	if err := a.ctrl.DeleteRecipe(ctx, target.ID); err != nil {
		a.sayUrgent(ctx, "Could not delete %q: %v", target.Title, err)
		return
	}
	a.say(ctx, "Deleted %q.", target.Title)
}

func (a *cliApp) showHelp(ctx context.Context) {
	lines := []string{
		"Commands:",
		"  <ingredients...>   Generate a recipe from what you have",
		"  /random            Surprise me",
		"  1, 2, 3...         Open a recipe from the list",
		"  /save              Save the recipe on screen",
		"  /close             Close the preview (Esc)",
		"  /filter <idea>     Filter the list: quick, light, nooven, breakfast, none",
		"  /delete [N]        Delete recipe N, or the one on screen",
		"  /reload            Reload saved recipes",
		"  /quit              Exit",
	}
	h, ok := a.notifier.(hinter)
	for _, l := range lines {
		if ok {
			h.PrintHint(l)
			continue
		}
		a.say(ctx, "%s", l)
	}
}
