package ports

import "context"

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Progress reports transport phases ("stream_start", "stream_chunk",
// "stream_fallback", "parse_retry", "stream_end") while a completion is in
// flight. Implementations must tolerate a nil callback.
type Progress func(phase, message, chunk string)

// ChatClient performs one model conversation and returns the decoded JSON
// object the model produced, plus the raw assistant text it was extracted
// from. Implementations own streaming, retries, and format self-repair.
type ChatClient interface {
	Complete(ctx context.Context, messages []ChatMessage, progress Progress) (map[string]any, string, error)
}
