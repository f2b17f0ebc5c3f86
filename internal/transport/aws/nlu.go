package aws

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lexruntimeservice"

	"github.com/kailas-cloud/photodex/internal/usecase/interpret"
)

// PostTextAPI is the Lex runtime subset used for slot extraction.
type PostTextAPI interface {
	PostText(ctx context.Context, in *lexruntimeservice.PostTextInput,
		optFns ...func(*lexruntimeservice.Options)) (*lexruntimeservice.PostTextOutput, error)
}

// LexNLU extracts slots with a Lex bot.
type LexNLU struct {
	client PostTextAPI
}

// NewLexNLU creates a Lex-backed NLU.
func NewLexNLU(client PostTextAPI) *LexNLU {
	return &LexNLU{client: client}
}

var _ interpret.NLU = (*LexNLU)(nil)

// PostText sends the utterance to the bot. Lex reports unfilled slots as empty strings;
// they come back as nil.
func (n *LexNLU) PostText(ctx context.Context, u interpret.Utterance) (map[string]*string, error) {
	start := time.Now()
	out, err := n.client.PostText(ctx, &lexruntimeservice.PostTextInput{
		BotName:   aws.String(u.BotName),
		BotAlias:  aws.String(u.BotAlias),
		UserId:    aws.String(u.SessionID),
		InputText: aws.String(u.Text),
	})
	if err = observe("lex", "post_text", start, err); err != nil {
		return nil, err
	}

	slots := make(map[string]*string, len(out.Slots))
	for name, v := range out.Slots {
		if v == "" {
			slots[name] = nil
			continue
		}
		slots[name] = &v
	}
	return slots, nil
}
