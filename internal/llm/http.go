package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"excel-interviewer/internal/config"
)

const providerHTTP = "http"

// ChatClient обращается к OpenAI-совместимому /chat/completions напрямую
type ChatClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	client      *http.Client
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type ChatResponse struct {
	ID      string    `json:"id"`
	Model   string    `json:"model"`
	Choices []Choice  `json:"choices"`
	Usage   Usage     `json:"usage"`
	Error   *APIError `json:"error,omitempty"`
}

type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewChatClient(cfg *config.LLMConfig) *ChatClient {
	return &ChatClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimRight(cfg.ResolvedBaseURL(), "/"),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

func (c *ChatClient) Complete(ctx context.Context, messages []Message) (string, error) {
	reqBody := ChatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("error creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classify(providerHTTP, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", classify(providerHTTP, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Provider: providerHTTP,
			Kind:     statusKind(resp.StatusCode),
			Status:   resp.StatusCode,
			Err:      fmt.Errorf("body: %s", truncate(string(body), 500)),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &Error{Provider: providerHTTP, Kind: KindMalformed, Err: err}
	}

	if chatResp.Error != nil {
		return "", &Error{Provider: providerHTTP, Kind: KindStatus, Err: fmt.Errorf("%s", chatResp.Error.Message)}
	}

	if len(chatResp.Choices) == 0 || strings.TrimSpace(chatResp.Choices[0].Message.Content) == "" {
		return "", &Error{Provider: providerHTTP, Kind: KindEmpty, Err: fmt.Errorf("no choices returned")}
	}

	return chatResp.Choices[0].Message.Content, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
