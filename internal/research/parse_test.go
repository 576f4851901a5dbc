package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/site-research/internal/model"
)

func TestParseLocationHint(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		category  model.Category
		rawLabel  string
		rationale string
	}{
		{
			name:      "plain footer",
			raw:       "footer - SOC2 compliance is typically in footer",
			category:  model.CategoryFooter,
			rawLabel:  "footer",
			rationale: "SOC2 compliance is typically in footer",
		},
		{
			name:      "upper case with em dash",
			raw:       "FOOTER — certifications live there",
			category:  model.CategoryFooter,
			rawLabel:  "footer",
			rationale: "certifications live there",
		},
		{
			name:     "no separator",
			raw:      "pricing",
			category: model.CategoryPricing,
			rawLabel: "pricing",
		},
		{
			name:      "space instead of underscore",
			raw:       "main content - general info",
			category:  model.CategoryMainContent,
			rawLabel:  "main content",
			rationale: "general info",
		},
		{
			name:      "specific page",
			raw:       "specific_page - the Security nav link",
			category:  model.CategorySpecificPage,
			rawLabel:  "specific_page",
			rationale: "the Security nav link",
		},
		{
			name:      "misspelled label falls back",
			raw:       "pricng - typo in reply",
			category:  model.CategoryMainContent,
			rawLabel:  "pricng",
			rationale: "typo in reply",
		},
		{
			name:     "unrelated prose falls back",
			raw:      "I think you should check the careers page",
			category: model.CategoryMainContent,
			rawLabel: "i think you should check the careers page",
		},
		{
			name:     "empty reply",
			raw:      "",
			category: model.CategoryMainContent,
			rawLabel: "main_content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := ParseLocationHint(tt.raw)
			assert.Equal(t, tt.category, hint.Category)
			assert.Equal(t, tt.rawLabel, hint.RawLabel)
			assert.Equal(t, tt.rationale, hint.Rationale)
		})
	}
}

func TestParseAnswer_ValidJSON(t *testing.T) {
	a := ParseAnswer(`{"answer": "Yes, SOC2 Type II", "confidence": "high", "evidence": "SOC2 Type II certified", "found": true}`)
	assert.Equal(t, "Yes, SOC2 Type II", a.Answer)
	assert.Equal(t, "high", a.Confidence)
	assert.Equal(t, "SOC2 Type II certified", a.Evidence)
	assert.True(t, a.Found)
	assert.Empty(t, a.RawAnswer)
}

func TestParseAnswer_CodeFence(t *testing.T) {
	a := ParseAnswer("```json\n{\"answer\": \"three plans\", \"confidence\": \"Medium\", \"found\": true}\n```")
	assert.Equal(t, "three plans", a.Answer)
	assert.Equal(t, "medium", a.Confidence)
}

func TestParseAnswer_TrailingCommentary(t *testing.T) {
	a := ParseAnswer(`Here is what I found: {"answer": "API access available", "confidence": "low"} Let me know if you need more.`)
	assert.Equal(t, "API access available", a.Answer)
	assert.Equal(t, "low", a.Confidence)
	assert.True(t, a.Found)
}

func TestParseAnswer_NotFound(t *testing.T) {
	a := ParseAnswer(`{"answer": "Not found in this section", "confidence": "low", "evidence": "", "found": false}`)
	assert.False(t, a.Found)
	assert.Equal(t, "", a.Evidence)
}

func TestParseAnswer_NoBraces(t *testing.T) {
	a := ParseAnswer("The company appears to offer widgets and consulting.")
	require.NotNil(t, a)
	assert.Equal(t, "The company appears to offer widgets and consulting.", a.RawAnswer)
	assert.True(t, a.Found)
	assert.Nil(t, a.Answer)
}

func TestParseAnswer_MalformedJSON(t *testing.T) {
	raw := `{"answer": "broken", "confidence": }`
	a := ParseAnswer(raw)
	assert.Equal(t, raw, a.RawAnswer)
	assert.True(t, a.Found)
}

func TestParseAnswer_MissingConfidence(t *testing.T) {
	a := ParseAnswer(`{"answer": "widgets"}`)
	assert.Equal(t, "unknown", a.Confidence)
	assert.True(t, a.Found)
}

func TestNormalizeConfidence(t *testing.T) {
	assert.Equal(t, "high", NormalizeConfidence(" High "))
	assert.Equal(t, "medium", NormalizeConfidence("MEDIUM"))
	assert.Equal(t, "low", NormalizeConfidence("low"))
	assert.Equal(t, "unknown", NormalizeConfidence("very high"))
	assert.Equal(t, "unknown", NormalizeConfidence(""))
}
