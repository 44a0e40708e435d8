package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"excel-interviewer/internal/config"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const providerAnthropic = "anthropic"

// AnthropicClient обращается к Messages API. Встроенные повторы SDK отключены:
// неудачный вызов сразу возвращается пользователю.
type AnthropicClient struct {
	client      *anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewAnthropicClient(cfg *config.LLMConfig) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	}
	if baseURL := cfg.ResolvedBaseURL(); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := anthropic.NewClient(opts...)

	return &AnthropicClient{
		client:      &client,
		model:       cfg.Model,
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, messages []Message) (string, error) {
	var system []anthropic.TextBlockParam
	var conversation []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			system = append(system, anthropic.TextBlockParam{Text: msg.Content})
		case RoleAssistant:
			conversation = append(conversation, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			conversation = append(conversation, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	response, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		System:      system,
		Messages:    conversation,
		Temperature: anthropic.Float(c.temperature),
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &Error{
				Provider: providerAnthropic,
				Kind:     statusKind(apiErr.StatusCode),
				Status:   apiErr.StatusCode,
				Err:      err,
			}
		}
		return "", classify(providerAnthropic, err)
	}

	var text strings.Builder
	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(block.Text)
		}
	}

	if strings.TrimSpace(text.String()) == "" {
		return "", &Error{Provider: providerAnthropic, Kind: KindEmpty, Err: fmt.Errorf("no text blocks returned")}
	}

	return text.String(), nil
}
