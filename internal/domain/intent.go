package domain

// IntentType classifies what the user wants to do on the home screen.
type IntentType int

const (
	IntentUnknown  IntentType = iota
	IntentGenerate            // free text: generate a recipe from it
	IntentRandom              // generate a recipe of the generator's choosing
	IntentOpen                // open a listed recipe in the preview
	IntentClose               // hide the preview
	IntentSave                // save the previewed recipe
	IntentFilter              // apply a quick-idea filter to the list
	IntentDelete              // delete a listed recipe
	IntentReload              // re-read the store
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentGenerate:
		return "generate"
	case IntentRandom:
		return "random"
	case IntentOpen:
		return "open"
	case IntentClose:
		return "close"
	case IntentSave:
		return "save"
	case IntentFilter:
		return "filter"
	case IntentDelete:
		return "delete"
	case IntentReload:
		return "reload"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Payload string // prompt text, list number, or filter name
}
