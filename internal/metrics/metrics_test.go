package metrics

import (
	"sync"
	"testing"
)

func TestMetricsCounters(t *testing.T) {
	m := NewMetrics()

	m.IncrementInterviewsStarted()
	m.IncrementQuestionsAsked()
	m.IncrementQuestionsAsked()
	m.IncrementAnswersEvaluated(true)
	m.IncrementAnswersEvaluated(false)
	m.IncrementHintsShown()
	m.IncrementEvaluationFailures()
	m.IncrementSummaries(true)
	m.IncrementSummaries(false)
	m.IncrementAPICall(true)
	m.IncrementAPICall(false)
	m.IncrementInterviewsCompleted()

	s := m.GetSnapshot()
	checks := []struct {
		name string
		got  int64
		want int64
	}{
		{"InterviewsStarted", s.InterviewsStarted, 1},
		{"InterviewsCompleted", s.InterviewsCompleted, 1},
		{"QuestionsAsked", s.QuestionsAsked, 2},
		{"AnswersEvaluated", s.AnswersEvaluated, 2},
		{"AnswersCorrect", s.AnswersCorrect, 1},
		{"HintsShown", s.HintsShown, 1},
		{"EvaluationFailures", s.EvaluationFailures, 1},
		{"SummariesGenerated", s.SummariesGenerated, 1},
		{"SummaryFailures", s.SummaryFailures, 1},
		{"APICallsTotal", s.APICallsTotal, 2},
		{"APICallsSuccessful", s.APICallsSuccessful, 1},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}
}

func TestMetricsConcurrentIncrements(t *testing.T) {
	m := NewMetrics()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncrementAPICall(true)
			_ = m.GetSnapshot()
		}()
	}
	wg.Wait()

	if got := m.GetSnapshot().APICallsTotal; got != 50 {
		t.Errorf("APICallsTotal = %d, want 50", got)
	}
}
