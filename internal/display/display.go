// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type renders the home screen (recent recipes, idea chips, the
// saved list and the preview sheet) above an input prompt. Application
// output is printed above the rendered area via Program.Println / Printf,
// so concurrent writes never garble the display.
package display

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
	"github.com/hammamikhairi/ottorecipes/internal/session"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#52525b")).
			Padding(0, 1)

	sheetStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#bbf7d0")).
			Padding(0, 1)

	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa")).
			Background(lipgloss.Color("#27272a")).
			Padding(0, 1)

	activeChipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#18181b")).
			Background(lipgloss.Color("#fde68a")).
			Padding(0, 1)

	// BannerStyle is the muted slate used for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	chatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	stepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// ── UI ───────────────────────────────────────────────────────────

// Compile-time interface check.
var _ domain.Notifier = (*UI)(nil)

// StateSource is what the UI reads to render the home screen.
type StateSource interface {
	State() session.State
}

// Option configures the UI.
type Option func(*UI)

// WithRecentLimit caps the recent row. Default 5.
func WithRecentLimit(n int) Option {
	return func(u *UI) { u.recentLimit = n }
}

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking). Other goroutines may safely call
// [UI.Println], [UI.Refresh], [UI.SetFilter] and read from [UI.InputChan]
// at any time after [UI.WaitReady] returns.
type UI struct {
	program     *tea.Program
	src         StateSource
	recentLimit int
	filter      atomic.Value // recipe.Idea
	inputCh     chan string
	activity    chan struct{}
	readyCh     chan struct{}
	done        atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(src StateSource, opts ...Option) *UI {
	u := &UI{
		src:         src,
		recentLimit: 5,
		inputCh:     make(chan string, 16),
		activity:    make(chan struct{}, 1),
		readyCh:     make(chan struct{}),
	}
	u.filter.Store(recipe.Idea{})
	for _, o := range opts {
		o(u)
	}
	return u
}

// Refresh asks the UI to re-read the state. It never blocks, so it can be
// used directly as a session listener.
func (u *UI) Refresh() {
	select {
	case u.activity <- struct{}{}:
	default:
	}
}

// Listener adapts Refresh to a session listener.
func (u *UI) Listener() session.Listener {
	return func(session.Event) { u.Refresh() }
}

// SetFilter changes the idea applied to the list. A zero Idea clears it.
func (u *UI) SetFilter(idea recipe.Idea) {
	u.filter.Store(idea)
	u.Refresh()
}

// Filter returns the idea currently applied to the list.
func (u *UI) Filter() recipe.Idea {
	return u.filter.Load().(recipe.Idea)
}

// Feed returns the feed as currently displayed, so list numbers typed by
// the user resolve to the recipes they see.
func (u *UI) Feed(st session.State) recipe.Feed {
	return recipe.BuildFeed(st.Recipes, u.recentLimit, u.Filter())
}

// Println prints a line above the home screen. Thread-safe. If the program
// hasn't started yet, falls back to fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the home screen. Thread-safe.
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format+"\n", a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────

// PrintChat prints a conversational assistant line.
func (u *UI) PrintChat(text string) {
	u.Println(chatStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an error line.
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("chef") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// Notify implements domain.Notifier.
func (u *UI) Notify(_ context.Context, message string) error {
	u.PrintChat(message)
	return nil
}

// NotifyUrgent implements domain.Notifier.
func (u *UI) NotifyUrgent(_ context.Context, message string) error {
	u.PrintUrgent(message)
	return nil
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// Run starts the Bubble Tea event loop. Blocks until quit.
func (u *UI) Run() error {
	u.program = tea.NewProgram(u.newModel())
	_, err := u.program.Run()
	u.done.Store(true)
	return err
}

func (u *UI) newModel() model {
	ti := textinput.New()
	// Plain-text prompt keeps the textinput width math correct.
	ti.Prompt = promptText
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Placeholder = "eggs, spinach... or /help"
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60

	sp := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(chatStyle),
	)

	return model{
		ui:      u,
		input:   ti,
		spinner: sp,
		state:   u.src.State(),
		echoFn:  u.PrintUserInput,
	}
}

// ── Bubble Tea model ─────────────────────────────────────────────

const promptText = "chef> "

type model struct {
	ui      *UI
	input   textinput.Model
	spinner spinner.Model
	state   session.State
	echoFn  func(string)
	width   int
}

// activityMsg means the controller state changed.
type activityMsg struct{}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForActivity(m.ui.activity),
		signalReady(m.ui.readyCh),
		tea.SetWindowTitle("OttoRecipes"),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func waitForActivity(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-ch
		return activityMsg{}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEsc:
			// Same as /close.
			m.ui.inputCh <- "/close"
			return m, nil
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.ui.inputCh <- v
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		if msg.Width > len(promptText) {
			m.input.Width = msg.Width - len(promptText)
		}
		return m, nil

	case activityMsg:
		m.state = m.ui.src.State()
		return m, waitForActivity(m.ui.activity)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(renderHome(homeView{
		state:   m.state,
		feed:    m.ui.Feed(m.state),
		filter:  m.ui.Filter().Key,
		spinner: m.spinner.View(),
		width:   m.width,
	}))
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}
