package conversation

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*CLINotifier)(nil)

// ANSI escape codes for terminal formatting.
const (
	reset = "\033[0m"
	bold  = "\033[1m"
	red   = "\033[31m"
	cyan  = "\033[36m"
)

// PrintFunc is a function used to print formatted output.
type PrintFunc func(format string, a ...interface{})

// NotifierOption configures the CLINotifier.
type NotifierOption func(*CLINotifier)

// WithoutColor disables ANSI formatting, for pipes and log files.
func WithoutColor() NotifierOption {
	return func(n *CLINotifier) { n.color = false }
}

// CLINotifier writes notifications line by line.
type CLINotifier struct {
	log     *logger.Logger
	printFn PrintFunc
	color   bool
}

// NewCLINotifier creates a line notifier. If printFn is nil, fmt.Printf is
// used.
func NewCLINotifier(log *logger.Logger, printFn PrintFunc, opts ...NotifierOption) *CLINotifier {
	if printFn == nil {
		printFn = func(format string, a ...interface{}) {
			fmt.Printf(format+"\n", a...)
		}
	}
	n := &CLINotifier{log: log, printFn: printFn, color: true}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Notify prints a normal notification.
func (n *CLINotifier) Notify(ctx context.Context, message string) error {
	n.log.Debug("notify: %s", message)
	if !n.color {
		n.printFn("%s", message)
		return nil
	}
	n.printFn("%s%s%s", cyan, message, reset)
	return nil
}

// NotifyUrgent prints an urgent notification, in bold red when colored.
func (n *CLINotifier) NotifyUrgent(ctx context.Context, message string) error {
	n.log.Debug("notify-urgent: %s", message)
	if !n.color {
		n.printFn("! %s", message)
		return nil
	}
	n.printFn("%s%s%s%s", red, bold, message, reset)
	return nil
}
