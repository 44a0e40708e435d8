package evaluator

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"excel-interviewer/internal/llm"
	"excel-interviewer/internal/prompts"
	"excel-interviewer/internal/questions"

	"github.com/invopop/jsonschema"
)

// Verdict - решение модели по одному ответу
type Verdict struct {
	IsCorrect   bool   `json:"is_correct" jsonschema:"required,description=True when the candidate answer is functionally correct"`
	Explanation string `json:"explanation" jsonschema:"required,description=Praise when correct or a hint that does not reveal the answer when incorrect"`
}

// Тексты на случай, если модель вернула пустое объяснение
const (
	defaultPraise = "Well done, that works."
	defaultHint   = "Think again about which function fits this task."
)

// Error означает, что ответ не удалось оценить. Попытка кандидата при этом не засчитывается.
type Error struct {
	Reason  string
	Wrapped error
}

func (e *Error) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("evaluation failed: %s: %v", e.Reason, e.Wrapped)
	}
	return fmt.Sprintf("evaluation failed: %s", e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Wrapped
}

type Evaluator struct {
	llm     llm.Completer
	persona string
	schema  string
}

func New(completer llm.Completer, persona string) (*Evaluator, error) {
	schema, err := verdictSchema()
	if err != nil {
		return nil, err
	}

	return &Evaluator{
		llm:     completer,
		persona: persona,
		schema:  schema,
	}, nil
}

func verdictSchema() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&Verdict{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal verdict schema: %w", err)
	}
	return string(data), nil
}

// Messages собирает запрос к модели для одного ответа
func (e *Evaluator) Messages(q questions.Question, answer string) []llm.Message {
	return []llm.Message{
		llm.SystemMessage(prompts.EvaluationSystem(e.persona, e.schema)),
		llm.UserMessage(prompts.EvaluationUser(q.Text, q.ReferenceAnswer, answer)),
	}
}

// Evaluate отправляет один запрос к модели и разбирает вердикт.
// Повторов нет: любая ошибка возвращается как *Error.
func (e *Evaluator) Evaluate(ctx context.Context, q questions.Question, answer string) (*Verdict, error) {
	log.Printf("[INFO] Evaluating answer for question %s", q.ID)

	response, err := e.llm.Complete(ctx, e.Messages(q, answer))
	if err != nil {
		return nil, &Error{Reason: "model call failed", Wrapped: err}
	}

	verdict, err := ParseVerdict(response)
	if err != nil {
		log.Printf("[WARN] Unparseable evaluation for question %s: %v", q.ID, err)
		return nil, err
	}

	log.Printf("[INFO] Question %s evaluated: correct=%t", q.ID, verdict.IsCorrect)
	return verdict, nil
}

// ParseVerdict извлекает вердикт из ответа модели
func ParseVerdict(response string) (*Verdict, error) {
	cleaned := llm.CleanResponse(response)

	jsonStr := llm.ExtractJSON(cleaned)
	if jsonStr == "" {
		return nil, &Error{Reason: "no JSON object found in model response"}
	}

	var raw struct {
		IsCorrect   *bool  `json:"is_correct"`
		Explanation string `json:"explanation"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return nil, &Error{Reason: "invalid JSON from model", Wrapped: err}
	}

	if raw.IsCorrect == nil {
		return nil, &Error{Reason: "model response is missing is_correct"}
	}

	verdict := &Verdict{
		IsCorrect:   *raw.IsCorrect,
		Explanation: strings.TrimSpace(raw.Explanation),
	}
	if verdict.Explanation == "" {
		if verdict.IsCorrect {
			verdict.Explanation = defaultPraise
		} else {
			verdict.Explanation = defaultHint
		}
	}

	return verdict, nil
}
