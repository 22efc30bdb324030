package openai

import (
	"regexp"
	"strings"
)

// extractTextContent accepts the two content shapes OpenAI-compatible
// servers produce: a plain string, or a list of parts carrying `text` or
// nested `content` strings.
func extractTextContent(content any) string {
	switch value := content.(type) {
	case string:
		return value
	case []any:
		var parts strings.Builder
		for _, item := range value {
			switch part := item.(type) {
			case string:
				parts.WriteString(part)
			case map[string]any:
				if text, ok := part["text"].(string); ok {
					parts.WriteString(text)
					continue
				}
				if nested, ok := part["content"].(string); ok {
					parts.WriteString(nested)
				}
			}
		}
		return parts.String()
	}
	return ""
}

func firstChoice(response map[string]any) map[string]any {
	choices, ok := response["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil
	}
	choice, _ := choices[0].(map[string]any)
	return choice
}

// extractBufferedText pulls assistant text from a non-stream response,
// preferring message content, then delta content, then the bare text
// field some proxies emit.
func extractBufferedText(response map[string]any) string {
	choice := firstChoice(response)
	if choice == nil {
		return ""
	}

	if message, ok := choice["message"].(map[string]any); ok {
		if content := extractTextContent(message["content"]); content != "" {
			return content
		}
	}
	if delta, ok := choice["delta"].(map[string]any); ok {
		if content := extractTextContent(delta["content"]); content != "" {
			return content
		}
	}
	return extractTextContent(choice["text"])
}

// extractStreamText pulls the incremental text from one SSE event. Deltas
// come first; some endpoints send whole messages per frame instead.
func extractStreamText(event map[string]any) string {
	choice := firstChoice(event)
	if choice == nil {
		return ""
	}

	if delta, ok := choice["delta"].(map[string]any); ok {
		if content := extractTextContent(delta["content"]); content != "" {
			return content
		}
	}
	if message, ok := choice["message"].(map[string]any); ok {
		if content := extractTextContent(message["content"]); content != "" {
			return content
		}
	}
	return extractTextContent(choice["text"])
}

var (
	fenceOpenPattern  = regexp.MustCompile("^```(?:json)?\\s*")
	fenceClosePattern = regexp.MustCompile("\\s*```$")
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
)

// cleanJSONResponse strips code fences and narrows the text to the
// outermost brace-delimited region before parsing.
func cleanJSONResponse(text string) string {
	text = strings.TrimSpace(text)
	text = fenceOpenPattern.ReplaceAllString(text, "")
	text = fenceClosePattern.ReplaceAllString(text, "")
	if match := jsonObjectPattern.FindString(text); match != "" {
		return match
	}
	return text
}
