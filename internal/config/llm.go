package config

import (
	"fmt"
	"time"
)

// Поддерживаемые провайдеры модели
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderHTTP      = "http"
)

const (
	DefaultBaseURL = "https://router.huggingface.co/v1"
	DefaultModel   = "zai-org/GLM-4.5:novita"
)

type LLMConfig struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// LoadLLMConfig загружает конфигурацию модели из переменных окружения
func LoadLLMConfig() *LLMConfig {
	return &LLMConfig{
		Provider:    getEnv("LLM_PROVIDER", ProviderOpenAI),
		APIKey:      getEnv("LLM_API_KEY", getEnv("HF_TOKEN", "")),
		BaseURL:     getEnv("LLM_BASE_URL", ""),
		Model:       getEnv("LLM_MODEL", DefaultModel),
		MaxTokens:   getEnvAsInt("LLM_MAX_TOKENS", 1024),
		Temperature: getEnvAsFloat("LLM_TEMPERATURE", 0.1),
		Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
	}
}

// ResolvedBaseURL возвращает адрес API с учетом провайдера
func (c *LLMConfig) ResolvedBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Provider == ProviderAnthropic {
		return ""
	}
	return DefaultBaseURL
}

// ValidateConfig проверяет корректность конфигурации
func (c *LLMConfig) ValidateConfig() error {
	switch c.Provider {
	case ProviderOpenAI, ProviderAnthropic, ProviderHTTP:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q", c.Provider)
	}

	if c.APIKey == "" {
		return fmt.Errorf("LLM_API_KEY (or HF_TOKEN) is required")
	}

	if c.Model == "" {
		return fmt.Errorf("LLM_MODEL is required")
	}

	if c.MaxTokens <= 0 {
		return fmt.Errorf("LLM_MAX_TOKENS must be positive")
	}

	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}

	if c.Timeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT must be positive")
	}

	return nil
}

// GetModelInfo возвращает информацию о используемой модели
func (c *LLMConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"provider":    c.Provider,
		"model":       c.Model,
		"base_url":    c.ResolvedBaseURL(),
		"max_tokens":  c.MaxTokens,
		"temperature": c.Temperature,
		"timeout":     c.Timeout.String(),
	}
}
