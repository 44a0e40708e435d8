package questions

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// bankEntry повторяет формат question_bank.json
type bankEntry struct {
	ID             string `json:"id,omitempty" yaml:"id,omitempty"`
	QuestionText   string `json:"question_text" yaml:"question_text"`
	CorrectFormula string `json:"correct_formula" yaml:"correct_formula"`
}

// LoadBank читает банк вопросов из JSON или YAML файла
func LoadBank(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question bank %s: %w", path, err)
	}

	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	bank, err := ParseBank(data, format)
	if err != nil {
		return nil, fmt.Errorf("question bank %s: %w", path, err)
	}
	return bank, nil
}

// ParseBank разбирает банк вопросов; format - "json", "yaml" или "yml"
func ParseBank(data []byte, format string) (*Bank, error) {
	raw := map[string][]bankEntry{}

	switch format {
	case "json":
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported question bank format %q", format)
	}

	// Ключи сортируются, чтобы сгенерированные ID не зависели от порядка map
	keys := lo.Keys(raw)
	sort.Strings(keys)

	var items []Question
	for _, key := range keys {
		difficulty, err := ParseDifficulty(key)
		if err != nil {
			return nil, err
		}

		for i, entry := range raw[key] {
			q := Question{
				ID:              strings.TrimSpace(entry.ID),
				Difficulty:      difficulty,
				Text:            strings.TrimSpace(entry.QuestionText),
				ReferenceAnswer: strings.TrimSpace(entry.CorrectFormula),
			}
			if q.ID == "" {
				q.ID = fmt.Sprintf("%s-%d", difficulty, i+1)
			}
			if q.Text == "" {
				return nil, fmt.Errorf("question %s has empty question_text", q.ID)
			}
			if q.ReferenceAnswer == "" {
				return nil, fmt.Errorf("question %s has empty correct_formula", q.ID)
			}
			items = append(items, q)
		}
	}

	if dups := lo.FindDuplicatesBy(items, func(q Question) string { return q.ID }); len(dups) > 0 {
		return nil, fmt.Errorf("duplicate question id %q", dups[0].ID)
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}

	return NewBank(items), nil
}
