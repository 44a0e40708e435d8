package storage

// InterviewReport представляет результат всего интервью
type InterviewReport struct {
	InterviewID string       `json:"interview_id"`
	Timestamp   string       `json:"timestamp"`
	StartedAt   string       `json:"started_at"`
	Turns       []TurnRecord `json:"turns"`
	Passed      int          `json:"passed"`
	Failed      int          `json:"failed"`
	HintsShown  int          `json:"hints_shown"`
	Summary     string       `json:"summary,omitempty"`
}

// TurnRecord представляет один закрытый вопрос
type TurnRecord struct {
	QuestionID string   `json:"question_id"`
	Difficulty string   `json:"difficulty"`
	Question   string   `json:"question"`
	Reference  string   `json:"reference_answer"`
	Answers    []string `json:"answers"`
	Correct    bool     `json:"correct"`
	HintShown  bool     `json:"hint_shown"`
	Hint       string   `json:"hint,omitempty"`
	Feedback   string   `json:"feedback"`
}
