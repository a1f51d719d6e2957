package display

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
	"github.com/hammamikhairi/ottorecipes/internal/session"
)

// homeView is everything the home screen renders from.
type homeView struct {
	state   session.State
	feed    recipe.Feed
	filter  string // active idea key, empty for none
	spinner string
	width   int
}

// renderHome draws the home screen: header, recent row, idea chips, the
// numbered list, the loading line, the preview sheet and the error line.
func renderHome(v homeView) string {
	width := v.width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("OttoRecipes"))
	b.WriteString(secondaryStyle.Render("  what are we cooking today?"))
	b.WriteString("\n\n")

	if !v.state.Loaded {
		b.WriteString(secondaryStyle.Render("  Loading saved recipes..."))
		b.WriteString("\n\n")
	}

	b.WriteString(renderRecent(v.feed.Recent, width))
	b.WriteString("\n")
	b.WriteString(renderChips(v.filter))
	b.WriteString("\n\n")
	b.WriteString(renderList(v.feed.All, v.filter, v.state.Loaded))

	if v.state.Loading {
		b.WriteString("\n")
		b.WriteString(v.spinner + chatStyle.Render(" Generating recipe..."))
		b.WriteString("\n")
	}

	if v.state.ShowSheet && v.state.Generated != nil {
		b.WriteString("\n")
		b.WriteString(renderSheet(*v.state.Generated, width))
		b.WriteString("\n")
	}

	if v.state.LastError != nil {
		b.WriteString("\n")
		b.WriteString(urgentOutputStyle.Render("  ! " + v.state.LastError.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

func renderRecent(recent []domain.Recipe, width int) string {
	label := labelStyle.Render("  Recent")
	if len(recent) == 0 {
		return label + "\n" + secondaryStyle.Render("  Nothing saved yet. Type what you have and press enter.") + "\n"
	}

	cardW := 24
	if fit := (width - 2) / len(recent); fit < cardW && fit > 12 {
		cardW = fit
	}

	cards := make([]string, 0, len(recent))
	for _, r := range recent {
		body := truncate(r.Title, cardW-4) + "\n" + secondaryStyle.Render(minutesLabel(r.Minutes))
		cards = append(cards, cardStyle.Width(cardW-2).Render(body))
	}
	return label + "\n" + "  " + lipgloss.JoinHorizontal(lipgloss.Top, cards...) + "\n"
}

func renderChips(active string) string {
	parts := []string{labelStyle.Render("  Ideas ")}
	for _, idea := range recipe.QuickIdeas() {
		if idea.Key == active {
			parts = append(parts, activeChipStyle.Render(idea.Label))
		} else {
			parts = append(parts, chipStyle.Render(idea.Label))
		}
	}
	return strings.Join(parts, " ")
}

func renderList(all []domain.Recipe, filter string, loaded bool) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render("  All recipes"))
	b.WriteString("\n")

	if len(all) == 0 {
		switch {
		case filter != "":
			b.WriteString(secondaryStyle.Render("  No saved recipe matches this idea. /filter none to clear."))
		case loaded:
			b.WriteString(secondaryStyle.Render("  Your saved recipes will show up here."))
		}
		b.WriteString("\n")
		return b.String()
	}

	for i, r := range all {
		meta := strings.Join(nonEmpty(r.Category, minutesLabel(r.Minutes), starsLabel(r.Stars)), " · ")
		fmt.Fprintf(&b, "  %s %s  %s\n",
			secondaryStyle.Render(fmt.Sprintf("%2d.", i+1)),
			primaryStyle.Render(r.Title),
			secondaryStyle.Render(meta))
	}
	return b.String()
}

// renderSheet draws the recipe preview panel.
func renderSheet(r domain.Recipe, width int) string {
	var b strings.Builder
	b.WriteString(stepStyle.Bold(true).Render(r.Title))
	b.WriteString("\n")
	b.WriteString(secondaryStyle.Render(strings.Join(nonEmpty(r.Category, minutesLabel(r.Minutes), starsLabel(r.Stars)), " · ")))
	b.WriteString("\n")

	if r.Prompt != "" {
		b.WriteString(secondaryStyle.Render("for: " + r.Prompt))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Ingredients"))
	b.WriteString("\n")
	for _, ing := range r.Ingredients {
		b.WriteString(primaryStyle.Render("• " + ing))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Steps"))
	b.WriteString("\n")
	for i, step := range r.Instructions {
		b.WriteString(primaryStyle.Render(fmt.Sprintf("%d. %s", i+1, step)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if r.Persisted() {
		b.WriteString(secondaryStyle.Render("saved · /close to dismiss · /delete to remove"))
	} else {
		b.WriteString(secondaryStyle.Render("/save to keep it · /close to dismiss"))
	}

	w := width - 4
	if w > 76 {
		w = 76
	}
	return sheetStyle.Width(w).Render(b.String())
}

// ── Labels ───────────────────────────────────────────────────────

func minutesLabel(m int) string {
	if m <= 0 {
		return ""
	}
	return fmt.Sprintf("%d min", m)
}

func starsLabel(stars float64) string {
	if stars <= 0 {
		return ""
	}
	full := int(math.Round(stars))
	if full > domain.MaxStars {
		full = domain.MaxStars
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", domain.MaxStars-full)
}

func nonEmpty(parts ...string) []string {
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 3 || len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
