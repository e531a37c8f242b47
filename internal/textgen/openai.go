package textgen

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openaiBaseURL = "https://api.openai.com/v1"
	openaiTimeout = 120 * time.Second
)

// OpenAI calls the Responses API.
type OpenAI struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type openaiContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type openaiInput struct {
	Role    string          `json:"role"`
	Content []openaiContent `json:"content"`
}

type openaiRequest struct {
	Model string        `json:"model"`
	Input []openaiInput `json:"input"`
}

type openaiResponse struct {
	Model  string `json:"model"`
	Output []struct {
		Type    string          `json:"type"`
		Content []openaiContent `json:"content"`
	} `json:"output"`
}

type openaiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: OPENAI_API_KEY not set", ErrNotConfigured)
	}
	if baseURL == "" {
		baseURL = openaiBaseURL
	}
	return &OpenAI{
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: openaiTimeout},
	}, nil
}

func (c *OpenAI) Generate(ctx context.Context, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}

	body, err := json.Marshal(openaiRequest{
		Model: c.model,
		Input: []openaiInput{{
			Role:    "user",
			Content: []openaiContent{{Type: "input_text", Text: prompt}},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/responses", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var apiErr openaiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("OpenAI API error (%d): %s", resp.StatusCode, string(respBody))
	}

	var parsed openaiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var out strings.Builder
	for _, item := range parsed.Output {
		for _, c := range item.Content {
			if c.Type == "output_text" {
				out.WriteString(c.Text)
			}
		}
	}

	model := parsed.Model
	if model == "" {
		model = c.model
	}
	return &Result{OutputText: out.String(), Provider: "openai", Model: model}, nil
}
