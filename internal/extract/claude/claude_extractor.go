// Package claude implements invoice extraction against the Anthropic
// Messages API.
package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"feldbeleg/internal/config"
	"feldbeleg/internal/extract"
	"feldbeleg/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
)

func init() {
	extract.RegisterProvider("claude", func(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.InvoiceExtractor using the Anthropic Messages API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Claude-based extractor from a provider config.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	return newExtractor(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (e *Extractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	blocks, err := buildContentBlocks(input)
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	text, err := e.complete(ctx, blocks)
	if err != nil {
		return nil, err
	}

	record, err := decodeRecord(text)
	if err != nil {
		return nil, err
	}
	return &port.ExtractOutput{Record: record, Model: e.model}, nil
}

// Reconcile asks the model to merge several candidate extractions of the
// same document into one final record.
func (e *Extractor) Reconcile(ctx context.Context, input port.ExtractInput, samples []map[string]any) (*port.ExtractOutput, error) {
	var sb strings.Builder
	sb.WriteString("You are given several candidate JSON extractions of the same scanned document. ")
	sb.WriteString("They were produced by independent passes and may disagree on individual fields. ")
	sb.WriteString("Produce ONE final JSON object of the same shape, picking for each field the value best supported by the candidates and the document. ")
	sb.WriteString("Return ONLY the raw JSON object.\n")
	for i, s := range samples {
		data, err := json.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("marshaling sample %d: %w", i, err)
		}
		fmt.Fprintf(&sb, "\nCandidate %d:\n%s\n", i+1, data)
	}

	blocks, err := buildContentBlocks(port.ExtractInput{
		OCRText:     input.OCRText,
		Image:       input.Image,
		ContentType: input.ContentType,
		Template:    sb.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("building content blocks: %w", err)
	}

	text, err := e.complete(ctx, blocks)
	if err != nil {
		return nil, err
	}
	record, err := decodeRecord(text)
	if err != nil {
		return nil, err
	}
	return &port.ExtractOutput{Record: record, Model: e.model}, nil
}

func (e *Extractor) complete(ctx context.Context, blocks []map[string]interface{}) (string, error) {
	reqBody := map[string]interface{}{
		"model":      e.model,
		"max_tokens": 16384,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": blocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", e.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling claude API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("claude API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extract.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", extract.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return "", baseErr
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if parsed.StopReason == "max_tokens" {
		return "", fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}
	for _, block := range parsed.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty response from API: no text content")
}

func buildContentBlocks(input port.ExtractInput) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	if len(input.Image) > 0 {
		encoded := base64.StdEncoding.EncodeToString(input.Image)
		source := map[string]interface{}{
			"type":       "base64",
			"media_type": input.ContentType,
			"data":       encoded,
		}
		switch input.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type":   "document",
				"source": source,
			})
		case "image/jpeg", "image/png":
			blocks = append(blocks, map[string]interface{}{
				"type":   "image",
				"source": source,
			})
		default:
			return nil, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
		}
	}

	if input.OCRText != "" {
		blocks = append(blocks, map[string]interface{}{
			"type": "text",
			"text": "OCR text of the document:\n" + input.OCRText,
		})
	}

	blocks = append(blocks, map[string]interface{}{
		"type": "text",
		"text": input.Template,
	})
	return blocks, nil
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func decodeRecord(text string) (map[string]any, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in model output (raw: %s)", truncate(text, 500))
	}
	var record map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &record); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	return record, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
