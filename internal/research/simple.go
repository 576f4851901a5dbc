package research

import (
	"context"
	"fmt"

	"github.com/sells-group/site-research/internal/model"
	"github.com/sells-group/site-research/pkg/anthropic"
)

// Whole-page research mode: no structure probing or location targeting,
// just the full reader conversion of the site plus a format-specific prompt.
// Costs more tokens per query but needs only one fetch.

const fullPageBasePrompt = `You are a company research analyst. Your job is to carefully read website content and extract specific information.

IMPORTANT INSTRUCTIONS:
1. Only use information explicitly stated on the website
2. If the information is not found, say "Not found on website"
3. Be precise and cite specific sections when possible
4. If uncertain, indicate your confidence level`

// formatInstructions appends output-format guidance to the base prompt.
// Unknown formats get the text instructions.
var formatInstructions = map[string]string{
	"boolean":    "\n\nOUTPUT FORMAT: Answer with 'Yes', 'No', or 'Unclear' followed by a brief explanation.",
	"list":       "\n\nOUTPUT FORMAT: Provide a bulleted list of items. If nothing found, say 'None found'.",
	"text":       "\n\nOUTPUT FORMAT: Provide a concise text answer (2-3 sentences max).",
	"structured": "\n\nOUTPUT FORMAT: Return a JSON object with keys: 'answer', 'confidence' (high/medium/low), 'evidence' (quote from website)",
}

const fullPageMarker = "\n\n[Content truncated due to length...]"

const fullPageMaxTokens = 2000

// ResearchFullPage answers a query from the whole-page reader conversion of
// a domain. The format is one of text, boolean, list, or structured;
// structured replies go through the lenient JSON parser, everything else is
// returned verbatim.
func (a *Agent) ResearchFullPage(ctx context.Context, domain, query, format string) model.ResearchResult {
	result := model.ResearchResult{Domain: domain, Query: query}

	resp, err := a.fetcher.reader.Read(ctx, NormalizeDomain(domain))
	if err != nil {
		result.Error = err.Error()
		return result
	}

	content := resp.Data.Content
	if len(content) > model.MaxFullPageChars {
		content = content[:model.MaxFullPageChars] + fullPageMarker
	}

	instructions, ok := formatInstructions[format]
	if !ok {
		instructions = formatInstructions["text"]
	}
	prompt := fmt.Sprintf(`%s%s

WEBSITE CONTENT:
%s

RESEARCH QUERY: %s

Please analyze the website content and answer the query.`,
		fullPageBasePrompt, instructions, content, query)

	aiResp, err := a.extractor.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.extractor.model,
		MaxTokens: fullPageMaxTokens,
		Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		result.Error = err.Error()
		return result
	}
	aiResp.Usage.LogCost(a.extractor.model, "full_page")

	text := aiResp.FirstText()
	if format == "structured" {
		result.Result = ParseAnswer(text)
	} else {
		result.Result = &model.Answer{Answer: text, Found: true}
	}
	result.Success = true
	result.SectionSearched = "full_page"

	return result
}
