package reminder

import (
	"context"
	"fmt"
	"time"

	"rembot/pkg/llm"
	"rembot/pkg/prompts"
	"rembot/pkg/timing"

	"github.com/pkg/errors"
	logging "github.com/sirupsen/logrus"
)

const followupHint = "Это продолжение с ответом на уточняющий вопрос. Верни чистый JSON."

var ErrNotUnderstood = errors.New("reminder text was not understood")

type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, opts llm.CompleteOptions) (string, error)
}

type PromptSource interface {
	Current() *prompts.Pack
}

// Parser turns free text into an Intent with the help of a language model.
type Parser struct {
	completer Completer
	prompts   PromptSource
	now       func() time.Time
}

func NewParser(completer Completer, prompts PromptSource) *Parser {
	return &Parser{completer: completer, prompts: prompts, now: time.Now}
}

func (p *Parser) messages(text, offset string, followup bool) []llm.Message {
	pack := p.prompts.Current()
	if pack == nil {
		pack = &prompts.Pack{}
	}

	messages := make([]llm.Message, 0, len(pack.Fewshot)+5)
	if pack.System != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: pack.System})
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: fmt.Sprintf("NOW_ISO=%s  TZ_DEFAULT=%s", timing.NowISO(p.now(), offset), offset),
	})
	if pack.Parse.System != "" {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: pack.Parse.System})
	}
	for _, ex := range pack.Fewshot {
		messages = append(messages, llm.Message{Role: llm.Role(ex.Role), Content: ex.Content})
	}
	if followup {
		messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: followupHint})
	}

	return append(messages, llm.Message{Role: llm.RoleUser, Content: text})
}

// Parse asks the model to interpret text. Every failure is reported as
// ErrNotUnderstood, the cause is logged.
func (p *Parser) Parse(ctx context.Context, text, offset string, followup bool) (*Intent, error) {
	log := logging.WithContext(ctx)
	offset = timing.NormalizeOffset(offset, timing.DefaultOffset)

	raw, err := p.completer.Complete(ctx, p.messages(text, offset, followup), llm.CompleteOptions{JSON: true})
	if err != nil {
		log.Errorf("LLM error: %v", err)
		return nil, ErrNotUnderstood
	}

	in, err := decodeIntent(llm.StripCodeFence(raw))
	if err != nil {
		log.Errorf("LLM answer is not a valid intent: %v, answer: %q", err, raw)
		return nil, ErrNotUnderstood
	}

	in.normalize(p.now(), offset)
	log.Debugf("parsed intent %q: title=%q when=%q repeat=%s", in.Intent, in.Title, in.FixedDatetime, in.Repeat)

	return in, nil
}
