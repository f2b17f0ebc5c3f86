package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/photodex/internal/usecase/interpret"
)

// NLU extracts search keywords into the declared bot slots with a chat model.
type NLU struct {
	client *client
}

// NewNLU creates a chat-model NLU.
func NewNLU(cfg *Config) *NLU {
	return &NLU{client: newClient(cfg)}
}

var _ interpret.NLU = (*NLU)(nil)

// PostText asks the model to fill the utterance slots. The session id is sent as the
// end-user id; the bot name labels the user message.
func (n *NLU) PostText(ctx context.Context, u interpret.Utterance) (map[string]*string, error) {
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: slotPrompt(u.Slots)},
		{Role: openai.ChatMessageRoleUser, Content: u.Text, Name: sanitizeName(u.BotName)},
	}

	slots := make(map[string]*string, len(u.Slots))
	if err := n.client.completeJSON(ctx, "post_text", u.SessionID, messages, &slots); err != nil {
		return nil, fmt.Errorf("extract slots: %w", err)
	}

	for name, v := range slots {
		if v != nil && strings.TrimSpace(*v) == "" {
			slots[name] = nil
		}
	}
	return slots, nil
}

// HealthCheck verifies the provider is reachable.
func (n *NLU) HealthCheck(ctx context.Context) error {
	return n.client.HealthCheck(ctx)
}

func slotPrompt(slots []string) string {
	var b strings.Builder
	b.WriteString("You extract photo search keywords from a user request.\n")
	b.WriteString("Return a JSON object with exactly these keys: ")
	b.WriteString(strings.Join(slots, ", "))
	b.WriteString(".\nPut one keyword (a singular noun such as \"dog\" or \"beach\") per key, ")
	b.WriteString("in the order they appear in the request. Use null for keys you cannot fill.")
	return b.String()
}

// sanitizeName keeps the message name within the API's allowed charset.
func sanitizeName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return -1
		}
	}, s)
}
