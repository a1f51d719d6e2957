package display

import (
	"bufio"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/ottorecipes/internal/recipe"
	"github.com/hammamikhairi/ottorecipes/internal/session"
)

// LineUI is the plain front end used when stdin or stdout is not a
// terminal. It reads commands line by line and reprints the home screen
// whenever it changes.
type LineUI struct {
	src         StateSource
	in          io.Reader
	out         io.Writer
	recentLimit int
	filter      atomic.Value // recipe.Idea
	inputCh     chan string
	quitCh      chan struct{}
	quitOnce    sync.Once

	mu   sync.Mutex // guards out and last
	last string
}

// NewLineUI creates a line front end reading in and writing out.
func NewLineUI(src StateSource, in io.Reader, out io.Writer, opts ...Option) *LineUI {
	// Options are shared with UI; apply them to a scratch UI to read them.
	cfg := &UI{recentLimit: 5}
	for _, o := range opts {
		o(cfg)
	}
	l := &LineUI{
		src:         src,
		in:          in,
		out:         out,
		recentLimit: cfg.recentLimit,
		inputCh:     make(chan string, 16),
		quitCh:      make(chan struct{}),
	}
	l.filter.Store(recipe.Idea{})
	return l
}

// InputChan returns input lines. It is closed at end of input.
func (l *LineUI) InputChan() <-chan string { return l.inputCh }

// Run reads input until EOF or Quit. The home screen is printed once
// before the first line is read.
func (l *LineUI) Run() error {
	l.Refresh()

	errCh := make(chan error, 1)
	go func() {
		defer close(l.inputCh)
		scanner := bufio.NewScanner(l.in)
		for scanner.Scan() {
			select {
			case l.inputCh <- scanner.Text():
			case <-l.quitCh:
				errCh <- nil
				return
			}
		}
		errCh <- scanner.Err()
	}()

	select {
	case err := <-errCh:
		return err
	case <-l.quitCh:
		return nil
	}
}

// Quit stops Run. Safe to call more than once.
func (l *LineUI) Quit() {
	l.quitOnce.Do(func() { close(l.quitCh) })
}

// Refresh prints the home screen if it changed since the last print.
func (l *LineUI) Refresh() {
	st := l.src.State()
	view := renderHome(homeView{
		state:   st,
		feed:    l.Feed(st),
		filter:  l.Filter().Key,
		spinner: "...",
		width:   80,
	})

	l.mu.Lock()
	defer l.mu.Unlock()
	if view == l.last {
		return
	}
	l.last = view
	fmt.Fprintln(l.out, view)
}

// Listener adapts Refresh to a session listener.
func (l *LineUI) Listener() session.Listener {
	return func(session.Event) { l.Refresh() }
}

// SetFilter changes the idea applied to the list.
func (l *LineUI) SetFilter(idea recipe.Idea) {
	l.filter.Store(idea)
	l.Refresh()
}

// Filter returns the idea currently applied to the list.
func (l *LineUI) Filter() recipe.Idea {
	return l.filter.Load().(recipe.Idea)
}

// Feed returns the feed as currently displayed.
func (l *LineUI) Feed(st session.State) recipe.Feed {
	return recipe.BuildFeed(st.Recipes, l.recentLimit, l.Filter())
}

// Printf prints one formatted line. Safe for concurrent use.
func (l *LineUI) Printf(format string, a ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.out, format+"\n", a...)
}
