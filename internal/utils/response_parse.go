package utils

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNarrativeRunes caps stored flavor text.
const MaxNarrativeRunes = 280

// NarrativeOutput is the structured response from the narration model.
type NarrativeOutput struct {
	Narrative string `json:"narrative"`
}

// ParseNarrativeOutput extracts the flavor text from a model reply. JSON
// replies are preferred; a plain-text reply is accepted as-is.
func ParseNarrativeOutput(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.TrimPrefix(clean, "```json")
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimSuffix(clean, "```")
	clean = strings.TrimSpace(clean)

	text := clean
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		var output NarrativeOutput
		if err := json.Unmarshal([]byte(clean[start:end+1]), &output); err != nil {
			return "", fmt.Errorf("failed to parse narrative output: %w", err)
		}
		text = output.Narrative
	}

	text = strings.Join(strings.Fields(text), " ")
	text = strings.Trim(text, `"`)
	if text == "" {
		return "", fmt.Errorf("missing narrative")
	}
	return truncateRunes(text, MaxNarrativeRunes), nil
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:limit-1])) + "…"
}
