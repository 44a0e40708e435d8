package interview

import (
	"excel-interviewer/internal/evaluator"
	"excel-interviewer/internal/questions"
	"excel-interviewer/internal/summary"
)

// State представляет состояние сессии
type State string

const (
	StateIntroduction   State = "introduction"
	StateAwaitingAnswer State = "awaiting_answer"
	StateConcluded      State = "concluded"
)

// maxAttempts: первая ошибка дает подсказку, вторая закрывает вопрос
const maxAttempts = 2

// maxAnswerLength ограничивает длину одного ответа в символах
const maxAnswerLength = 4000

// Turn - закрытый вопрос. После добавления в сессию не меняется.
type Turn struct {
	Question  questions.Question `json:"question"`
	Answers   []string           `json:"answers"`
	Correct   bool               `json:"correct"`
	HintShown bool               `json:"hint_shown"`
	Hint      string             `json:"hint,omitempty"`
	Feedback  string             `json:"feedback"`
}

func (t Turn) Attempts() int {
	return len(t.Answers)
}

func (t Turn) Result() summary.Result {
	return summary.Result{
		QuestionID: t.Question.ID,
		Difficulty: string(t.Question.Difficulty),
		Question:   t.Question.Text,
		Correct:    t.Correct,
		Attempts:   t.Attempts(),
		HintShown:  t.HintShown,
	}
}

// Outcome - результат одного SubmitAnswer
type Outcome struct {
	Verdict    *evaluator.Verdict
	HintShown  bool
	Resolved   bool
	Turn       *Turn
	Completed  bool
	Summary    *summary.Summary
	SummaryErr error
	// Replies - сообщения для пользователя в порядке показа
	Replies []string
}
