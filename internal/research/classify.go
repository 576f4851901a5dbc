package research

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/site-research/internal/model"
	"github.com/sells-group/site-research/pkg/anthropic"
)

const locationPrompt = `You are a website analysis expert. Given a website structure and a research query, identify where the information is most likely to be found.

WEBSITE STRUCTURE:
- Title: %s
- Available sections: %s
- Navigation links: %s
- Has footer: %s

RESEARCH QUERY: %s

Based on the query, where is this information MOST LIKELY to be found? Choose ONE:
1. footer - Usually contains: certifications, compliance, legal info, contact
2. about - Usually contains: company info, mission, team, history
3. products - Usually contains: product listings, services, features
4. pricing - Usually contains: pricing, plans, enterprise info
5. main_content - For general company information
6. specific_page - If a specific nav link is relevant, name it

Respond with ONLY the location name and a brief reason (1 line).
Example: "footer - SOC2 compliance is typically in footer"`

// Prompt caps: more sections or nav links than this add noise, not signal.
const (
	maxPromptSections = 15
	maxPromptNavLinks = 10
)

// LocationClassifier asks the model which site region most likely answers a
// query. It never fails the overall request: call errors are swallowed and
// replaced with a main_content fallback hint.
type LocationClassifier struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// NewLocationClassifier creates a classifier using the given model with a
// small output budget.
func NewLocationClassifier(ai anthropic.Client, modelID string, maxTokens int64) *LocationClassifier {
	return &LocationClassifier{ai: ai, model: modelID, maxTokens: maxTokens}
}

// Classify predicts the content location for a query. The structure must not
// carry an error.
func (c *LocationClassifier) Classify(ctx context.Context, structure model.WebsiteStructure, query string) model.LocationHint {
	resp, err := c.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildLocationPrompt(structure, query)},
		},
	})
	if err != nil {
		zap.L().Warn("classify: location call failed, using fallback",
			zap.String("domain", structure.Domain),
			zap.Error(err),
		)
		return model.LocationHint{
			Category:  model.CategoryMainContent,
			RawLabel:  string(model.CategoryMainContent),
			Rationale: "default fallback",
		}
	}
	resp.Usage.LogCost(c.model, "classify")

	hint := ParseLocationHint(resp.FirstText())
	zap.L().Debug("classify: location suggested",
		zap.String("domain", structure.Domain),
		zap.String("category", string(hint.Category)),
		zap.String("raw_label", hint.RawLabel),
	)
	return hint
}

func buildLocationPrompt(s model.WebsiteStructure, query string) string {
	sections := s.Sections
	if len(sections) > maxPromptSections {
		sections = sections[:maxPromptSections]
	}

	var navTexts []string
	for _, link := range s.NavLinks {
		navTexts = append(navTexts, link.Text)
		if len(navTexts) == maxPromptNavLinks {
			break
		}
	}

	hasFooter := "No"
	if s.FooterText != "" {
		hasFooter = "Yes"
	}

	return fmt.Sprintf(locationPrompt,
		s.Title,
		strings.Join(sections, ", "),
		strings.Join(navTexts, ", "),
		hasFooter,
		query,
	)
}
