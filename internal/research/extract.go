package research

import (
	"context"
	"fmt"

	"github.com/sells-group/site-research/internal/model"
	"github.com/sells-group/site-research/pkg/anthropic"
)

const extractPrompt = `You are analyzing a specific section of a company website to answer a research query.

WEBSITE SECTION (from %s):
%s

QUERY: %s

Please provide a structured answer in JSON format with these fields:
- "answer": Your main answer (concise)
- "confidence": "high", "medium", or "low"
- "evidence": Direct quote from the website that supports your answer (if found)
- "found": true or false

If the information is not in this section, say so clearly.`

// AnswerExtractor asks the model to answer a query strictly from the
// narrowed content and parses the reply leniently. Call-level errors surface
// to the caller unchanged and are never retried.
type AnswerExtractor struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// NewAnswerExtractor creates an extractor using the given model.
func NewAnswerExtractor(ai anthropic.Client, modelID string, maxTokens int64) *AnswerExtractor {
	return &AnswerExtractor{ai: ai, model: modelID, maxTokens: maxTokens}
}

// Extract answers the query from the narrowed content. The content must not
// be a fetch failure; sectionLabel records provenance in the prompt.
func (e *AnswerExtractor) Extract(ctx context.Context, content, query, sectionLabel string) (*model.Answer, error) {
	resp, err := e.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(extractPrompt, sectionLabel, content, query)},
		},
	})
	if err != nil {
		return nil, err
	}
	resp.Usage.LogCost(e.model, "extract")

	return ParseAnswer(resp.FirstText()), nil
}
