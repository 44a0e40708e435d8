package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                  sync.RWMutex
	InterviewsStarted   int64
	InterviewsCompleted int64
	QuestionsAsked      int64
	AnswersEvaluated    int64
	AnswersCorrect      int64
	HintsShown          int64
	EvaluationFailures  int64
	SummariesGenerated  int64
	SummaryFailures     int64
	APICallsTotal       int64
	APICallsSuccessful  int64
	LastUpdateTime      time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) update(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn()
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.update(func() { m.InterviewsStarted++ })
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.update(func() { m.InterviewsCompleted++ })
}

func (m *Metrics) IncrementQuestionsAsked() {
	m.update(func() { m.QuestionsAsked++ })
}

func (m *Metrics) IncrementAnswersEvaluated(correct bool) {
	m.update(func() {
		m.AnswersEvaluated++
		if correct {
			m.AnswersCorrect++
		}
	})
}

func (m *Metrics) IncrementHintsShown() {
	m.update(func() { m.HintsShown++ })
}

func (m *Metrics) IncrementEvaluationFailures() {
	m.update(func() { m.EvaluationFailures++ })
}

func (m *Metrics) IncrementSummaries(success bool) {
	m.update(func() {
		if success {
			m.SummariesGenerated++
		} else {
			m.SummaryFailures++
		}
	})
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.update(func() {
		m.APICallsTotal++
		if success {
			m.APICallsSuccessful++
		}
	})
}

// Snapshot - копия счетчиков без мьютекса
type Snapshot struct {
	InterviewsStarted   int64     `json:"interviews_started"`
	InterviewsCompleted int64     `json:"interviews_completed"`
	QuestionsAsked      int64     `json:"questions_asked"`
	AnswersEvaluated    int64     `json:"answers_evaluated"`
	AnswersCorrect      int64     `json:"answers_correct"`
	HintsShown          int64     `json:"hints_shown"`
	EvaluationFailures  int64     `json:"evaluation_failures"`
	SummariesGenerated  int64     `json:"summaries_generated"`
	SummaryFailures     int64     `json:"summary_failures"`
	APICallsTotal       int64     `json:"api_calls_total"`
	APICallsSuccessful  int64     `json:"api_calls_successful"`
	LastUpdateTime      time.Time `json:"last_update_time"`
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		InterviewsStarted:   m.InterviewsStarted,
		InterviewsCompleted: m.InterviewsCompleted,
		QuestionsAsked:      m.QuestionsAsked,
		AnswersEvaluated:    m.AnswersEvaluated,
		AnswersCorrect:      m.AnswersCorrect,
		HintsShown:          m.HintsShown,
		EvaluationFailures:  m.EvaluationFailures,
		SummariesGenerated:  m.SummariesGenerated,
		SummaryFailures:     m.SummaryFailures,
		APICallsTotal:       m.APICallsTotal,
		APICallsSuccessful:  m.APICallsSuccessful,
		LastUpdateTime:      m.LastUpdateTime,
	}
}
