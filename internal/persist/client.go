package persist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/avaldez/proforma/internal/domain"
)

// Config holds the persistence collaborator settings.
type Config struct {
	Endpoint  string
	TimeoutMs int
}

// DefaultConfig returns the persistence defaults.
func DefaultConfig() Config {
	return Config{
		Endpoint:  "http://localhost:8080",
		TimeoutMs: 8000,
	}
}

// LoadConfig reads persistence configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("PROFORMA_PERSIST_URL"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("PROFORMA_PERSIST_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	return cfg
}

// Client talks to the external persistence collaborator. Create returns the
// identifier the service assigned; Update addresses it from then on.
type Client interface {
	Create(ctx context.Context, d domain.Draft) (string, error)
	Update(ctx context.Context, id string, d domain.Draft) error
	Load(ctx context.Context, id string) (domain.Draft, error)
}

type httpClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient creates a Client over the persistence HTTP API.
func NewHTTPClient(cfg Config) Client {
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
	}
}

// createResponse is the JSON body returned by POST /drafts.
type createResponse struct {
	ID string `json:"id"`
}

// errorResponse is the structured error payload the service returns on
// non-2xx statuses.
type errorResponse struct {
	Error string `json:"error"`
}

func (c *httpClient) Create(ctx context.Context, d domain.Draft) (string, error) {
	body, err := c.do(ctx, http.MethodPost, "/drafts", &d)
	if err != nil {
		return "", err
	}
	var resp createResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("decoding create response: %w", err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("persistence service returned an empty identifier")
	}
	return resp.ID, nil
}

func (c *httpClient) Update(ctx context.Context, id string, d domain.Draft) error {
	_, err := c.do(ctx, http.MethodPatch, "/drafts/"+id, &d)
	return err
}

func (c *httpClient) Load(ctx context.Context, id string) (domain.Draft, error) {
	body, err := c.do(ctx, http.MethodGet, "/drafts/"+id, nil)
	if err != nil {
		return domain.Draft{}, err
	}
	var d domain.Draft
	if err := json.Unmarshal(body, &d); err != nil {
		return domain.Draft{}, fmt.Errorf("decoding draft payload: %w", err)
	}
	return d, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, payload *domain.Draft) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling draft: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.cfg.Endpoint+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if isConnectionError(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	default:
		msg := string(body)
		var structured errorResponse
		if json.Unmarshal(body, &structured) == nil && structured.Error != "" {
			msg = structured.Error
		}
		return nil, &RequestError{Status: resp.StatusCode, Message: msg}
	}
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
