package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load загружает конфигурацию из YAML файла
func Load(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	config, err := Parse(data)
	if err != nil {
		return nil, err
	}

	// Относительный путь к банку сначала ищется рядом с файлом конфигурации, затем от рабочей директории
	if !filepath.IsAbs(config.QuestionBank) {
		candidate := filepath.Join(filepath.Dir(filename), config.QuestionBank)
		if _, err := os.Stat(candidate); err == nil {
			config.QuestionBank = candidate
		}
	}

	return config, nil
}

// Parse разбирает YAML и применяет значения по умолчанию
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if config.Persona == "" {
		config.Persona = DefaultPersona
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid interview config: %w", err)
	}

	return &config, nil
}

// DefaultPersona используется, если persona не задана
const DefaultPersona = "Excellytix AI"

func validateConfig(config *Config) error {
	mix := config.InterviewConfig
	if mix.Easy < 0 || mix.Medium < 0 || mix.Hard < 0 {
		return fmt.Errorf("question counts cannot be negative")
	}

	if config.GetTotalQuestions() == 0 {
		return fmt.Errorf("interview must contain at least one question")
	}

	if config.QuestionBank == "" {
		return fmt.Errorf("question_bank is required")
	}

	return nil
}
