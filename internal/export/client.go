package export

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
	"strings"
	"time"

	"github.com/avaldez/proforma/internal/domain"
)

// Format selects the rendered document type.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
)

var ValidFormats = map[Format]bool{
	FormatPDF:  true,
	FormatDocx: true,
}

// ErrUnavailable indicates the rendering service is unreachable.
var ErrUnavailable = errors.New("export service unavailable")

// RenderError is a structured rejection from the rendering service.
type RenderError struct {
	Status  int
	Message string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("export service rejected request (status %d): %s", e.Status, e.Message)
}

// Config holds rendering service settings.
type Config struct {
	Endpoint  string
	TimeoutMs int
}

func DefaultConfig() Config {
	return Config{
		Endpoint:  "http://localhost:8081",
		TimeoutMs: 30000,
	}
}

// LoadConfig reads export configuration from environment variables.
func LoadConfig() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("PROFORMA_EXPORT_URL"); v != "" {
		cfg.Endpoint = v
	}
	if v := os.Getenv("PROFORMA_EXPORT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	return cfg
}

// Request carries one fully resolved draft to the rendering service.
// Personalization travels inside the draft itself.
type Request struct {
	DocType string       `json:"docType"`
	Format  Format       `json:"format"`
	Draft   domain.Draft `json:"draft"`
}

// Client renders resolved drafts into downloadable documents.
type Client interface {
	Render(ctx context.Context, req Request) ([]byte, error)
}

type httpClient struct {
	endpoint string
	timeout  time.Duration
	client   *http.Client
}

func NewHTTPClient(cfg Config) Client {
	return &httpClient{
		endpoint: cfg.Endpoint,
		timeout:  time.Duration(cfg.TimeoutMs) * time.Millisecond,
		client: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: 5 * time.Second}).DialContext,
			},
		},
	}
}

func (c *httpClient) Render(ctx context.Context, req Request) ([]byte, error) {
	if !ValidFormats[req.Format] {
		return nil, fmt.Errorf("unsupported export format %q", req.Format)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding render request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint+"/render", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building render request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var payload struct {
			Error string `json:"error"`
		}
		msg := "unknown error"
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
			msg = payload.Error
		}
		return nil, &RenderError{Status: resp.StatusCode, Message: msg}
	}

	doc, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading rendered document: %w", err)
	}
	return doc, nil
}

// Filename suggests a download name like "quotation-acme-2026-03-02.pdf".
func Filename(docType, clientName string, date time.Time, format Format) string {
	slug := strings.ToLower(strings.TrimSpace(clientName))
	slug = strings.Join(strings.Fields(slug), "-")
	if slug == "" {
		slug = "draft"
	}
	return fmt.Sprintf("%s-%s-%s.%s", docType, slug, date.Format("2006-01-02"), format)
}
