package openai

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
)

const (
	ssePrefix      = "data:"
	sseDone        = "[DONE]"
	sseMaxLineSize = 1 << 20
)

// requestStream reads an SSE chat completion. Progress is debounced to the
// configured interval. An endpoint that answers with a plain JSON body
// instead of SSE frames is still accepted; an endpoint that answers with
// neither signals ErrStreamUnsupported so the caller can retry buffered.
func (c *Client) requestStream(ctx context.Context, payload chatPayload, progress ports.Progress) (string, error) {
	payload.Stream = true
	resp, err := c.send(ctx, payload)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", readStatusError(resp)
	}

	notify(progress, "stream_start", "Streaming response opened.", "")

	var content strings.Builder
	var pending strings.Builder
	var rawBody strings.Builder
	sawSSEData := false
	lastEmit := time.Now()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), sseMaxLineSize)
	for scanner.Scan() {
		decoded := scanner.Text()
		rawBody.WriteString(decoded)
		rawBody.WriteString("\n")

		line := strings.TrimSpace(decoded)
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}

		sawSSEData = true
		dataText := strings.TrimSpace(line[len(ssePrefix):])
		if dataText == "" {
			continue
		}
		if dataText == sseDone {
			break
		}

		var event map[string]any
		if err := json.Unmarshal([]byte(dataText), &event); err != nil {
			continue
		}

		text := extractStreamText(event)
		if text == "" {
			continue
		}

		content.WriteString(text)
		pending.WriteString(text)
		if time.Since(lastEmit) >= c.cfg.ProgressInterval {
			notify(progress, "stream_chunk", "Receiving model stream...", pending.String())
			pending.Reset()
			lastEmit = time.Now()
		}
	}
	if err := scanner.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && ctxErr == context.Canceled {
			return "", ctxErr
		}
		return "", err
	}

	if !sawSSEData {
		rawText := strings.TrimSpace(rawBody.String())
		if rawText != "" {
			var fallback map[string]any
			if err := json.Unmarshal([]byte(rawText), &fallback); err == nil {
				if text := extractBufferedText(fallback); strings.TrimSpace(text) != "" {
					notify(progress, "stream_end", "Streaming endpoint returned full response payload.", "")
					return text, nil
				}
			}
		}
		return "", ErrStreamUnsupported
	}

	if pending.Len() > 0 {
		notify(progress, "stream_chunk", "Receiving model stream...", pending.String())
	}

	if strings.TrimSpace(content.String()) == "" {
		return "", domain.ErrEmptyModelReply
	}

	notify(progress, "stream_end", "Streaming response completed.", "")
	return content.String(), nil
}
