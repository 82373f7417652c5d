// Package ocr reads text from scanned documents through an external OCR
// service that also detects the document language.
package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"feldbeleg/internal/config"
	"feldbeleg/internal/domain"
	"feldbeleg/internal/port"
)

// Client implements port.TextReader against an HTTP OCR service.
type Client struct {
	endpoint string
	engine   string
	client   *http.Client
}

// NewClient creates an OCR client from config.
func NewClient(cfg *config.OCRConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		endpoint: cfg.Endpoint,
		engine:   cfg.Engine,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewClientWithEndpoint creates a client pointing at a custom endpoint (for testing).
func NewClientWithEndpoint(engine, endpoint string) *Client {
	return &Client{engine: engine, endpoint: endpoint, client: &http.Client{Timeout: 60 * time.Second}}
}

func (c *Client) Engine() string { return c.engine }

type ocrRequest struct {
	Data        string `json:"data"`
	ContentType string `json:"content_type"`
	Engine      string `json:"engine"`
}

type ocrResponse struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// GetText runs OCR over data and returns the recognized text together with
// the detected language.
func (c *Client) GetText(ctx context.Context, data []byte, contentType string) (*port.OCRResult, error) {
	reqBody, err := json.Marshal(ocrRequest{
		Data:        base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
		Engine:      c.engine,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/ocr", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling OCR service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OCR service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var out ocrResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if out.Text == "" {
		return nil, domain.ErrEmptyDocument
	}
	if out.Language == "" {
		// The service could not tell; English is the safest default.
		out.Language = "en"
	}
	return &port.OCRResult{Text: out.Text, Language: out.Language}, nil
}
