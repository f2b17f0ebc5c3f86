package interpret

import "context"

// Utterance is one NLU request against a bot.
type Utterance struct {
	BotName   string
	BotAlias  string
	SessionID string
	Text      string
	// Slots lists the declared slot names, for drivers that need the schema up front.
	Slots []string
}

// NLU extracts raw slot values from an utterance. A nil value means the slot was not filled.
type NLU interface {
	PostText(ctx context.Context, u Utterance) (map[string]*string, error)
}
