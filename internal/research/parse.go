package research

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/sells-group/site-research/internal/model"
)

// Lenient parsing of free-text model output. Every malformed-input case has
// an explicit fallback value so parsing never fails the pipeline.

// hyphenSeparators are accepted between a location label and its rationale.
const hyphenSeparators = "-–—"

// ParseLocationHint splits the classifier's raw reply on the first
// hyphen-like separator and normalizes the left part against the known
// category set. Unmatched labels fall back to main_content.
func ParseLocationHint(raw string) model.LocationHint {
	raw = strings.TrimSpace(raw)

	label := raw
	rationale := ""
	if idx := strings.IndexAny(raw, hyphenSeparators); idx >= 0 {
		label = raw[:idx]
		_, size := utf8.DecodeRuneInString(raw[idx:])
		rationale = strings.TrimSpace(raw[idx+size:])
	}
	label = strings.ToLower(strings.TrimSpace(label))

	hint := model.LocationHint{
		Category:  model.CategoryMainContent,
		RawLabel:  label,
		Rationale: rationale,
	}
	if hint.RawLabel == "" {
		hint.RawLabel = string(model.CategoryMainContent)
	}

	normalized := model.Category(strings.ReplaceAll(label, " ", "_"))
	for _, c := range model.AllCategories() {
		if c == normalized {
			hint.Category = c
			break
		}
	}

	return hint
}

// ParseAnswer decodes the extraction reply's first brace-delimited region as
// a JSON object. Undecodable or braceless replies are wrapped verbatim under
// RawAnswer instead of failing; Found defaults to true.
func ParseAnswer(raw string) *model.Answer {
	cleaned := extractJSONObject(raw)
	if cleaned != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(cleaned), &m); err == nil {
			return answerFromMap(m)
		}
	}

	return &model.Answer{
		RawAnswer: strings.TrimSpace(raw),
		Found:     true,
	}
}

func answerFromMap(m map[string]any) *model.Answer {
	a := &model.Answer{Found: true}

	a.Answer = m["answer"]
	conf, _ := m["confidence"].(string)
	a.Confidence = NormalizeConfidence(conf)
	if s, ok := m["evidence"].(string); ok {
		a.Evidence = s
	}
	if b, ok := m["found"].(bool); ok {
		a.Found = b
	}

	return a
}

// NormalizeConfidence lower-cases a confidence label and maps anything
// outside {high, medium, low} to "unknown".
func NormalizeConfidence(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return "high"
	case "medium":
		return "medium"
	case "low":
		return "low"
	default:
		return "unknown"
	}
}

// extractJSONObject locates the widest brace-delimited region in text that
// may contain markdown code fences or trailing commentary. Returns "" when
// no brace region exists.
func extractJSONObject(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}
