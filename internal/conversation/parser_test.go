package conversation

import (
	"context"
	"testing"

	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
)

func TestCommandParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewCommandParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantPayload string
	}{
		// Save / close
		{"/save", domain.IntentSave, ""},
		{"save", domain.IntentSave, ""},
		{"/close", domain.IntentClose, ""},
		{"BACK", domain.IntentClose, ""},

		// Random
		{"/random", domain.IntentRandom, ""},
		{"surprise me", domain.IntentRandom, ""},

		// Open by number
		{"1", domain.IntentOpen, "1"},
		{"12", domain.IntentOpen, "12"},
		{"/open 3", domain.IntentOpen, "3"},
		{"/show 2", domain.IntentOpen, "2"},

		// Filter
		{"/filter quick", domain.IntentFilter, "quick"},
		{"/filter No oven", domain.IntentFilter, "No oven"},
		{"/filter", domain.IntentFilter, ""},
		{"/idea none", domain.IntentFilter, "none"},

		// Delete
		{"/delete 2", domain.IntentDelete, "2"},
		{"/delete", domain.IntentDelete, ""},

		// Misc
		{"/reload", domain.IntentReload, ""},
		{"/help", domain.IntentHelp, ""},
		{"?", domain.IntentHelp, ""},
		{"/quit", domain.IntentQuit, ""},
		{"q", domain.IntentQuit, ""},

		// Prompts
		{"eggs, spinach", domain.IntentGenerate, "eggs, spinach"},
		{"  chicken and rice  ", domain.IntentGenerate, "chicken and rice"},
		{"show me something with tofu", domain.IntentGenerate, "show me something with tofu"},

		// Unknown
		{"/flambe", domain.IntentUnknown, "/flambe"},
		{"", domain.IntentUnknown, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type != tt.wantType {
				t.Errorf("input=%q: got type %s, want %s", tt.input, intent.Type, tt.wantType)
			}
			if intent.Payload != tt.wantPayload {
				t.Errorf("input=%q: got payload %q, want %q", tt.input, intent.Payload, tt.wantPayload)
			}
		})
	}
}
