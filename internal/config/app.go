package config

import (
	"os"
	"strconv"
	"time"
)

// Режимы работы приложения
const (
	ModeConsole  = "console"
	ModeTelegram = "telegram"
	ModeHTTP     = "http"
)

type AppConfig struct {
	Mode       string
	ConfigPath string
	LogFile    string
	ReportsDir string
	LLM        LLMConfig
	Telegram   TelegramConfig
	Server     ServerConfig
}

type TelegramConfig struct {
	Token          string
	Debug          bool
	RateLimit      int
	RateWindow     time.Duration
	SessionTimeout time.Duration
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	SessionTimeout  time.Duration
}

// finalAnswerLLMCalls - последний ответ ждет две модели подряд: оценку и итоговый отчет
const finalAnswerLLMCalls = 2

func LoadAppConfig() *AppConfig {
	llm := LoadLLMConfig()

	return &AppConfig{
		Mode:       getEnv("INTERVIEW_MODE", ModeConsole),
		ConfigPath: getEnv("INTERVIEW_CONFIG", "config/interview.yaml"),
		LogFile:    getEnv("LOG_FILE", "interview.log"),
		ReportsDir: getEnv("REPORTS_DIR", ""),
		LLM:        *llm,
		Telegram: TelegramConfig{
			Token:          getEnv("TELEGRAM_BOT_TOKEN", ""),
			Debug:          getEnvAsBool("TELEGRAM_DEBUG", false),
			RateLimit:      getEnvAsInt("TELEGRAM_RATE_LIMIT", 10),
			RateWindow:     getEnvAsDuration("TELEGRAM_RATE_WINDOW", time.Minute),
			SessionTimeout: getEnvAsDuration("TELEGRAM_SESSION_TIMEOUT", 24*time.Hour),
		},
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			// Ответ на последний вопрос включает оценку и отчет, каждый до LLM_TIMEOUT
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", DefaultWriteTimeout(llm.Timeout)),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			SessionTimeout:  getEnvAsDuration("SERVER_SESSION_TIMEOUT", 2*time.Hour),
		},
	}
}

// DefaultWriteTimeout покрывает оба вызова модели на последнем ответе с запасом на ответ клиенту
func DefaultWriteTimeout(llmTimeout time.Duration) time.Duration {
	return finalAnswerLLMCalls*llmTimeout + 30*time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
