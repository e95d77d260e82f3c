package risk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domainrisk "blue-collar-portal/internal/domain/risk"
	"blue-collar-portal/internal/infrastructure/llm"

	"github.com/sashabaranov/go-openai"
)

const assessPrompt = `You review job listings for a blue-collar job marketplace.
Score the listing for fraud and policy risk from 0 (clean) to 100 (certainly abusive).
Typical risks: upfront fees or deposits, unrealistic pay, missing employer identity,
requests for personal documents before hiring, discriminatory requirements, off-platform contact only.
Reply with a JSON object: {"risk_score": int, "auto_approve": bool, "flags": [string], "explanation": string}.
Set auto_approve to true only when risk_score is below 30 and no flags apply.`

type openAIAssessor struct {
	client *openai.Client
	model  string
}

// NewOpenAIAssessor returns nil when client is nil.
func NewOpenAIAssessor(client *openai.Client, model string) domainrisk.Assessor {
	if client == nil {
		return nil
	}
	return &openAIAssessor{client: client, model: model}
}

func (a *openAIAssessor) Assess(ctx context.Context, content domainrisk.Content) (domainrisk.Assessment, error) {
	if a == nil {
		return domainrisk.Assessment{}, errors.New("nil risk client")
	}

	b, err := json.Marshal(content)
	if err != nil {
		return domainrisk.Assessment{}, err
	}

	var out domainrisk.Assessment
	if err := llm.ChatJSON(ctx, a.client, a.model, assessPrompt, string(b), &out); err != nil {
		if errors.Is(err, llm.ErrEmptyCompletion) {
			return domainrisk.Assessment{}, fmt.Errorf("%w: %v", domainrisk.ErrInvalidAssessment, err)
		}
		return domainrisk.Assessment{}, err
	}
	return out.Normalize(), nil
}

var _ domainrisk.Assessor = (*openAIAssessor)(nil)
