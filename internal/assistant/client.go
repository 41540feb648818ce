package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/avaldez/proforma/internal/domain"
)

// Turn is a single exchange in a conversation history.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Progress reports which required fields the assistant has collected so far.
type Progress struct {
	Collected []string `json:"collected"`
	Missing   []string `json:"missing"`
}

// ChatRequest is the payload sent to the assistant service for one turn.
type ChatRequest struct {
	Flow    string            `json:"flow"`
	Message string            `json:"message"`
	History []Turn            `json:"history,omitempty"`
	Context map[string]string `json:"context,omitempty"`
	Client  domain.Client     `json:"client"`
	Model   string            `json:"model,omitempty"`
}

// ChatResponse is one assistant turn: a conversational message plus zero
// or more generated field sets the caller may fold into the draft.
type ChatResponse struct {
	Message      string            `json:"message"`
	FieldSets    []json.RawMessage `json:"fieldSets"`
	QuickReplies []string          `json:"quickReplies"`
	Progress     Progress          `json:"progress"`
	LatencyMs    int64             `json:"-"`
}

// Client is the interface for conversing with the assistant service.
type Client interface {
	Converse(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	Available(ctx context.Context) bool
}

// httpClient talks to an HTTP chat endpoint.
type httpClient struct {
	endpoint   string
	model      string
	timeout    time.Duration
	maxRetries int
	client     *http.Client
	observer   Observer
}

// NewHTTPClient creates an assistant client from the given config.
// If observer is nil, events are discarded.
func NewHTTPClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &httpClient{
		endpoint:   cfg.Endpoint,
		model:      cfg.Model,
		timeout:    time.Duration(cfg.TimeoutMs) * time.Millisecond,
		maxRetries: cfg.MaxRetries,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
		observer: observer,
	}
}

func (c *httpClient) Converse(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	var lastErr error
	attempts := 1 + c.maxRetries
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.doChat(ctx, req)
		latency := time.Since(start).Milliseconds()

		event := CallEvent{Flow: req.Flow, Model: req.Model, LatencyMs: latency}
		if err == nil {
			event.Success = true
			event.FieldSets = len(resp.FieldSets)
			c.observer.OnCallComplete(event)
			resp.LatencyMs = latency
			return resp, nil
		}

		event.ErrorCode = errorCode(err)
		c.observer.OnCallComplete(event)
		lastErr = err

		// Malformed output will not improve on retry.
		if errors.Is(err, ErrInvalidOutput) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (c *httpClient) doChat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding chat request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: assistant returned status %d", ErrUnavailable, httpResp.StatusCode)
	}

	var resp ChatResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: decoding chat response: %v", ErrInvalidOutput, err)
	}
	return &resp, nil
}

func (c *httpClient) Available(ctx context.Context) bool {
	reqCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, c.endpoint+"/healthz", nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInvalidOutput):
		return "invalid_output"
	default:
		return "unknown"
	}
}
