// Package conversation provides intent parsing and user notification
// implementations for the line-oriented front ends.
package conversation

import (
	"context"
	"regexp"
	"strings"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*CommandParser)(nil)

// CommandParser turns typed input into intents. Slash commands and a few
// bare keywords control the home screen; anything else is a prompt for
// the generator.
type CommandParser struct {
	log      *logger.Logger
	patterns []patternRule
}

type patternRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
	// arg is the capture group carried as payload, 0 for none.
	arg int
}

// NewCommandParser creates the home screen command parser.
func NewCommandParser(log *logger.Logger) *CommandParser {
	p := &CommandParser{log: log}
	p.patterns = []patternRule{
		{regexp.MustCompile(`(?i)^/?(save|keep)$`), domain.IntentSave, 0},
		{regexp.MustCompile(`(?i)^/?(close|hide|back)$`), domain.IntentClose, 0},
		{regexp.MustCompile(`(?i)^/?(random|surprise( me)?)$`), domain.IntentRandom, 0},
		{regexp.MustCompile(`(?i)^/?(reload|refresh)$`), domain.IntentReload, 0},
		{regexp.MustCompile(`(?i)^/?(help|h|\?)$`), domain.IntentHelp, 0},
		{regexp.MustCompile(`(?i)^/?(quit|exit|q)$`), domain.IntentQuit, 0},
		{regexp.MustCompile(`(?i)^/(open|show)\s+(\S+)$`), domain.IntentOpen, 2},
		{regexp.MustCompile(`(?i)^/(filter|idea)(?:\s+(.+))?$`), domain.IntentFilter, 2},
		{regexp.MustCompile(`(?i)^/(delete|rm)(?:\s+(\S+))?$`), domain.IntentDelete, 2},
	}
	return p
}

// Parse converts user input into an intent. A bare list number opens that
// recipe. Unknown slash commands are IntentUnknown; other text is a
// generation prompt.
func (p *CommandParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	if len(trimmed) <= 3 && isDigits(trimmed) {
		return &domain.Intent{Type: domain.IntentOpen, Payload: trimmed}, nil
	}

	for _, rule := range p.patterns {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		p.log.Debug("matched intent: %s", rule.intent)
		intent := &domain.Intent{Type: rule.intent}
		if rule.arg > 0 && rule.arg < len(m) {
			intent.Payload = strings.TrimSpace(m[rule.arg])
		}
		return intent, nil
	}

	if strings.HasPrefix(trimmed, "/") {
		p.log.Debug("unknown command %q", trimmed)
		return &domain.Intent{Type: domain.IntentUnknown, Payload: trimmed}, nil
	}

	return &domain.Intent{Type: domain.IntentGenerate, Payload: trimmed}, nil
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
