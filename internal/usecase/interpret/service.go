package interpret

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/photodex/internal/domain/query"
)

// Bot is the single configured NLU bot definition.
type Bot struct {
	Name  string
	Alias string
	Slots []string
}

// Interpreter turns raw query text into an ordered SlotMap.
type Interpreter struct {
	nlu NLU
	bot Bot
}

// New creates an interpreter bound to one bot.
func New(nlu NLU, bot Bot) *Interpreter {
	return &Interpreter{nlu: nlu, bot: bot}
}

// Interpret sends text to the NLU under sessionID. Stateless per call.
func (i *Interpreter) Interpret(ctx context.Context, sessionID, text string) (query.SlotMap, error) {
	raw, err := i.nlu.PostText(ctx, Utterance{
		BotName:   i.bot.Name,
		BotAlias:  i.bot.Alias,
		SessionID: sessionID,
		Text:      text,
		Slots:     i.bot.Slots,
	})
	if err != nil {
		return nil, fmt.Errorf("nlu post text: %w", err)
	}
	return query.Order(i.bot.Slots, raw), nil
}
