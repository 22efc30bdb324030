package domain

import "errors"

var (
	ErrNoActivePeople  = errors.New("no active people in roster")
	ErrMissingAPIKey   = errors.New("api key not provided via stdin or environment")
	ErrEmptyModelReply = errors.New("model returned empty content")
	ErrMalformedJSON   = errors.New("model returned malformed JSON")
	ErrEmptySchedule   = errors.New("model returned no valid schedule entries")
)
