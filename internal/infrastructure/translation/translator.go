package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"blue-collar-portal/internal/infrastructure/llm"

	"github.com/sashabaranov/go-openai"
)

var ErrNoLanguages = errors.New("no target languages")

// Translator renders free text into each target language code.
type Translator interface {
	Translate(ctx context.Context, text string, langs []string) (map[string]string, error)
}

const translatePrompt = `Translate the user's text into each requested language.
Keep names, numbers and currency amounts unchanged. Do not add commentary.
Reply with a JSON object keyed by the requested language codes, each value the translated text.`

type OpenAITranslator struct {
	client *openai.Client
	model  string
}

// NewOpenAITranslator returns nil when client is nil.
func NewOpenAITranslator(client *openai.Client, model string) *OpenAITranslator {
	if client == nil {
		return nil
	}
	return &OpenAITranslator{client: client, model: model}
}

func (t *OpenAITranslator) Translate(ctx context.Context, text string, langs []string) (map[string]string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return map[string]string{}, nil
	}
	if len(langs) == 0 {
		return nil, ErrNoLanguages
	}

	user := fmt.Sprintf("Languages: %s\nText:\n%s", strings.Join(langs, ", "), text)
	raw := map[string]string{}
	if err := llm.ChatJSON(ctx, t.client, t.model, translatePrompt, user, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(langs))
	for _, lang := range langs {
		if v := strings.TrimSpace(raw[lang]); v != "" {
			out[lang] = v
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("translation returned none of %v", langs)
	}
	return out, nil
}

var _ Translator = (*OpenAITranslator)(nil)
