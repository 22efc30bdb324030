// Package openai implements the model transport against any
// OpenAI-compatible chat completion endpoint, in streaming and buffered
// modes with retry and a bounded JSON self-repair conversation.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/duty-agent/internal/domain"
	"github.com/bnema/duty-agent/internal/ports"
)

const (
	chatCompletionsPath  = "/chat/completions"
	maxBufferedBodyBytes = 8 << 20
)

// ErrStreamUnsupported marks an endpoint that cannot serve SSE output.
// It triggers the buffered fallback instead of failing the run.
var ErrStreamUnsupported = errors.New("endpoint does not support streaming")

// Config carries every transport knob. Zero values fall back to the
// defaults below so a partially filled settings file still works.
type Config struct {
	RequestTimeout   time.Duration
	RetryMax         int
	RetryBackoff     time.Duration
	RepairMax        int
	Temperature      float64
	ProgressInterval time.Duration
}

const (
	defaultRequestTimeout   = 120 * time.Second
	defaultRetryMax         = 2
	defaultRetryBackoff     = 2 * time.Second
	defaultRepairMax        = 1
	defaultTemperature      = 0.1
	defaultProgressInterval = 200 * time.Millisecond
)

func (c Config) withDefaults() Config {
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = defaultRequestTimeout
	}
	if c.RetryMax < 0 {
		c.RetryMax = defaultRetryMax
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = defaultRetryBackoff
	}
	if c.RepairMax < 0 {
		c.RepairMax = defaultRepairMax
	}
	if c.Temperature <= 0 {
		c.Temperature = defaultTemperature
	}
	if c.ProgressInterval <= 0 {
		c.ProgressInterval = defaultProgressInterval
	}
	return c
}

// Client talks to one resolved endpoint/model pair for the lifetime of a
// run.
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	stream     bool
	cfg        Config
	httpClient *http.Client
}

var _ ports.ChatClient = (*Client)(nil)

func NewClient(baseURL, model, apiKey string, stream bool, cfg Config, httpClient *http.Client) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("base url is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("model is required")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, domain.ErrMissingAPIKey
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     apiKey,
		stream:     stream,
		cfg:        cfg.withDefaults(),
		httpClient: httpClient,
	}, nil
}

type chatPayload struct {
	Model       string              `json:"model"`
	Messages    []ports.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
	Stream      bool                `json:"stream,omitempty"`
}

// Complete sends the conversation and returns the parsed JSON object plus
// the raw assistant text. Malformed JSON is handed back to the model for a
// bounded number of repair turns; the conversation is reset to its
// original length before each repair so the context never grows across
// attempts.
func (c *Client) Complete(ctx context.Context, messages []ports.ChatMessage, progress ports.Progress) (map[string]any, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	payload := chatPayload{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.cfg.Temperature,
	}

	var content string
	var err error
	if c.stream {
		content, err = c.executeWithRetries(ctx, payload, true, progress)
		if errors.Is(err, ErrStreamUnsupported) {
			notify(progress, "stream_fallback", "Streaming not supported by endpoint. Falling back to non-stream mode.", "")
			err = nil
			content = ""
		}
		if err != nil {
			return nil, "", err
		}
	}

	if content == "" {
		content, err = c.executeWithRetries(ctx, payload, false, progress)
		if err != nil {
			return nil, "", err
		}
	}

	if strings.TrimSpace(content) == "" {
		return nil, "", domain.ErrEmptyModelReply
	}

	originalCount := len(payload.Messages)
	var parseErr error
	for attempt := 0; attempt <= c.cfg.RepairMax; attempt++ {
		var parsed map[string]any
		parseErr = json.Unmarshal([]byte(cleanJSONResponse(content)), &parsed)
		if parseErr == nil {
			return parsed, content, nil
		}
		if attempt == c.cfg.RepairMax {
			break
		}

		notify(progress, "parse_retry",
			fmt.Sprintf("AI output JSON format error, retrying (%d/%d)...", attempt+1, c.cfg.RepairMax), "")

		repaired := make([]ports.ChatMessage, 0, originalCount+2)
		repaired = append(repaired, messages...)
		repaired = append(repaired,
			ports.ChatMessage{Role: ports.RoleAssistant, Content: content},
			ports.ChatMessage{Role: ports.RoleUser, Content: repairDemand(parseErr)},
		)
		payload.Messages = repaired

		content, err = c.executeWithRetries(ctx, payload, false, progress)
		if err != nil {
			return nil, "", err
		}
	}

	return nil, "", fmt.Errorf("%w after %d attempts: %v", domain.ErrMalformedJSON, c.cfg.RepairMax+1, parseErr)
}

func repairDemand(parseErr error) string {
	return fmt.Sprintf("你的上一次输出无法解析为JSON。报错信息：%v。请检查是否遗漏了逗号或括号，纠正格式并重新输出。严格要求只输出合法的JSON格式。", parseErr)
}

// streamUnsupportedStatus lists the statuses a non-SSE endpoint tends to
// answer a stream request with. In stream mode they mean "fall back", not
// "fail".
func streamUnsupportedStatus(code int) bool {
	switch code {
	case http.StatusBadRequest,
		http.StatusNotFound,
		http.StatusMethodNotAllowed,
		http.StatusUnsupportedMediaType,
		http.StatusUnprocessableEntity,
		http.StatusUpgradeRequired,
		http.StatusNotImplemented:
		return true
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

type httpStatusError struct {
	code   int
	detail string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP error %d: %s", e.code, e.detail)
}

func (c *Client) executeWithRetries(ctx context.Context, payload chatPayload, stream bool, progress ports.Progress) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.RetryMax; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, c.cfg.RetryBackoff*time.Duration(attempt)); err != nil {
				return "", err
			}
		}

		var content string
		var err error
		if stream {
			content, err = c.requestStream(ctx, payload, progress)
		} else {
			content, err = c.requestBuffered(ctx, payload)
		}
		if err == nil {
			return content, nil
		}
		if errors.Is(err, ErrStreamUnsupported) {
			return "", err
		}

		var statusErr *httpStatusError
		if errors.As(err, &statusErr) {
			if retryableStatus(statusErr.code) && attempt < c.cfg.RetryMax {
				lastErr = err
				continue
			}
			if stream && streamUnsupportedStatus(statusErr.code) {
				return "", fmt.Errorf("%w (HTTP %d)", ErrStreamUnsupported, statusErr.code)
			}
			return "", err
		}

		if isNetworkError(err) {
			lastErr = err
			if attempt < c.cfg.RetryMax {
				continue
			}
			if isTimeoutError(err) {
				return "", fmt.Errorf("network request timed out (%s): %w", c.cfg.RequestTimeout, err)
			}
			return "", fmt.Errorf("network error: %w", err)
		}

		return "", err
	}

	return "", fmt.Errorf("network request failed: %w", lastErr)
}

func (c *Client) requestBuffered(ctx context.Context, payload chatPayload) (string, error) {
	payload.Stream = false
	resp, err := c.send(ctx, payload)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", readStatusError(resp)
	}

	var response map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBufferedBodyBytes)).Decode(&response); err != nil {
		return "", fmt.Errorf("decode model response: %w", err)
	}

	content := extractBufferedText(response)
	if strings.TrimSpace(content) == "" {
		return "", domain.ErrEmptyModelReply
	}
	return content, nil
}

func (c *Client) send(ctx context.Context, payload chatPayload) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode chat payload: %w", err)
	}

	reqCtx := ctx
	cancel := context.CancelFunc(func() {})
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		reqCtx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.baseURL+chatCompletionsPath, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("request chat completion: %w", err)
	}

	// The deadline must cover the body read too, so cancellation is tied
	// to closing the body rather than to this function returning.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func readStatusError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxBufferedBodyBytes))
	return &httpStatusError{code: resp.StatusCode, detail: strings.TrimSpace(string(detail))}
}

func notify(progress ports.Progress, phase, message, chunk string) {
	if progress == nil {
		return
	}
	progress(phase, message, chunk)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isNetworkError(err error) bool {
	if isTimeoutError(err) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func isTimeoutError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timed out")
}
