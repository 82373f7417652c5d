// Package openai implements invoice extraction against the OpenAI Chat
// Completions API.
package openai

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
	apiURL = "https://api.openai.com/v1/chat/completions"
)

func init() {
	extract.RegisterProvider("openai", func(cfg *config.ExtractorProviderConfig) (port.InvoiceExtractor, error) {
		return NewExtractor(cfg), nil
	})
}

// Extractor implements port.InvoiceExtractor using the OpenAI Chat Completions API.
type Extractor struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewExtractor creates an OpenAI-based extractor from a provider config.
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
		model = "gpt-4o"
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
		"model":                 e.model,
		"max_completion_tokens": 16384,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": blocks,
			},
		},
		"response_format": map[string]interface{}{
			"type": "json_object",
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
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := extract.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return "", extract.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return "", baseErr
	}

	var parsed apiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	if parsed.Choices[0].FinishReason == "length" {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildContentBlocks(input port.ExtractInput) ([]map[string]interface{}, error) {
	var blocks []map[string]interface{}

	if len(input.Image) > 0 {
		encoded := base64.StdEncoding.EncodeToString(input.Image)
		dataURI := fmt.Sprintf("data:%s;base64,%s", input.ContentType, encoded)
		switch input.ContentType {
		case "application/pdf":
			blocks = append(blocks, map[string]interface{}{
				"type": "file",
				"file": map[string]interface{}{
					"filename":  "document.pdf",
					"file_data": dataURI,
				},
			})
		case "image/jpeg", "image/png":
			blocks = append(blocks, map[string]interface{}{
				"type": "image_url",
				"image_url": map[string]interface{}{
					"url": dataURI,
				},
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

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

// decodeRecord parses the model output into a record, slicing from the first
// opening brace to the last closing brace to shed any stray framing text.
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
