// Package gemini implements invoice extraction against the Google Gemini
// generateContent API.
package gemini

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

const apiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

func init() {
	extract.RegisterProvider("gemini", func(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.InvoiceExtractor using the Gemini API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates a Gemini-based extractor from a provider config.
func NewExtractor(cfg *config.ExtractorProviderConfig) *Extractor {
	model := defaultModel(cfg)
	return newExtractor(cfg, model, fmt.Sprintf("%s/%s:generateContent", apiBaseURL, model))
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.ExtractorProviderConfig, endpoint string) *Extractor {
	return newExtractor(cfg, defaultModel(cfg), endpoint)
}

func defaultModel(cfg *config.ExtractorProviderConfig) string {
	if cfg.DefaultModel != "" {
		return cfg.DefaultModel
	}
	return "gemini-2.0-flash"
}

func newExtractor(cfg *config.ExtractorProviderConfig, model, endpoint string) *Extractor {
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
	parts, err := buildParts(input)
	if err != nil {
		return nil, fmt.Errorf("building content parts: %w", err)
	}

	text, err := e.generate(ctx, parts)
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

	parts, err := buildParts(port.ExtractInput{
		OCRText:     input.OCRText,
		Image:       input.Image,
		ContentType: input.ContentType,
		Template:    sb.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("building content parts: %w", err)
	}

	text, err := e.generate(ctx, parts)
	if err != nil {
		return nil, err
	}
	record, err := decodeRecord(text)
	if err != nil {
		return nil, err
	}
	return &port.ExtractOutput{Record: record, Model: e.model}, nil
}

func (e *Extractor) generate(ctx context.Context, parts []map[string]interface{}) (string, error) {
	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{
				"role":  "user",
				"parts": parts,
			},
		},
		"generationConfig": map[string]interface{}{
			"responseMimeType": "application/json",
			"maxOutputTokens":  16384,
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
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling gemini API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("gemini API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extract.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", extract.NewRateLimitError("gemini", baseErr, retryAfter)
		}
		return "", baseErr
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	if parsed.Candidates[0].FinishReason == "MAX_TOKENS" {
		return "", fmt.Errorf("output truncated (finishReason: MAX_TOKENS): response exceeded output token limit")
	}
	if len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API: no parts")
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

func buildParts(input port.ExtractInput) ([]map[string]interface{}, error) {
	var parts []map[string]interface{}

	if len(input.Image) > 0 {
		switch input.ContentType {
		case "application/pdf", "image/jpeg", "image/png":
		default:
			return nil, fmt.Errorf("unsupported content type for extraction: %s", input.ContentType)
		}
		parts = append(parts, map[string]interface{}{
			"inline_data": map[string]interface{}{
				"mime_type": input.ContentType,
				"data":      base64.StdEncoding.EncodeToString(input.Image),
			},
		})
	}

	if input.OCRText != "" {
		parts = append(parts, map[string]interface{}{
			"text": "OCR text of the document:\n" + input.OCRText,
		})
	}

	parts = append(parts, map[string]interface{}{
		"text": input.Template,
	})
	return parts, nil
}

// apiResponse models the Gemini generateContent API response.
type apiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
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
