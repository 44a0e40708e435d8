package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"excel-interviewer/internal/config"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const providerOpenAI = "openai"

// LangChainClient работает с любым OpenAI-совместимым API через langchaingo
type LangChainClient struct {
	model       llms.Model
	maxTokens   int
	temperature float64
}

func NewLangChainClient(cfg *config.LLMConfig) (*LangChainClient, error) {
	model, err := openai.New(
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.ResolvedBaseURL()),
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	return NewLangChainClientFromModel(model, cfg.MaxTokens, cfg.Temperature), nil
}

// NewLangChainClientFromModel оборачивает готовую модель langchaingo
func NewLangChainClientFromModel(model llms.Model, maxTokens int, temperature float64) *LangChainClient {
	return &LangChainClient{
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

func (c *LangChainClient) Complete(ctx context.Context, messages []Message) (string, error) {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(chatMessageType(msg.Role), msg.Content))
	}

	resp, err := c.model.GenerateContent(ctx, content,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", classify(providerOpenAI, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Content) == "" {
		return "", &Error{Provider: providerOpenAI, Kind: KindEmpty, Err: fmt.Errorf("no choices returned")}
	}

	return resp.Choices[0].Content, nil
}

func chatMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
