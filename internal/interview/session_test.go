package interview

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"excel-interviewer/internal/evaluator"
	"excel-interviewer/internal/llm"
	"excel-interviewer/internal/metrics"
	"excel-interviewer/internal/questions"
	"excel-interviewer/internal/storage"
	"excel-interviewer/internal/summary"
)

type fixedSource struct {
	items []questions.Question
	err   error
}

func (f fixedSource) Select() ([]questions.Question, error) {
	return f.items, f.err
}

// step - один шаг сценария оценщика: вердикт или ошибка
type step struct {
	correct bool
	err     error
}

var (
	right = step{correct: true}
	wrong = step{correct: false}
	down  = step{err: &evaluator.Error{Reason: "model call failed", Wrapped: &llm.Error{Provider: "http", Kind: llm.KindTimeout}}}
)

type scriptedEvaluator struct {
	steps []step
	calls int
}

func (e *scriptedEvaluator) Evaluate(ctx context.Context, q questions.Question, answer string) (*evaluator.Verdict, error) {
	if e.calls >= len(e.steps) {
		return nil, fmt.Errorf("unexpected evaluation #%d", e.calls+1)
	}
	s := e.steps[e.calls]
	e.calls++
	if s.err != nil {
		return nil, s.err
	}
	expl := "hint for " + q.ID
	if s.correct {
		expl = "nice work on " + q.ID
	}
	return &evaluator.Verdict{IsCorrect: s.correct, Explanation: expl}, nil
}

type countingSummarizer struct {
	calls int
	err   error
	last  summary.Request
}

func (c *countingSummarizer) Generate(ctx context.Context, req summary.Request) (*summary.Summary, error) {
	c.calls++
	c.last = req
	if c.err != nil {
		return nil, c.err
	}
	return &summary.Summary{Text: "Strong fundamentals.", Tally: summary.NewTally(req.Results)}, nil
}

type memoryArchive struct {
	reports []*storage.InterviewReport
}

func (m *memoryArchive) SaveReport(r *storage.InterviewReport) error {
	m.reports = append(m.reports, r)
	return nil
}

func makeQuestions(n int) []questions.Question {
	items := make([]questions.Question, n)
	for i := range items {
		items[i] = questions.Question{
			ID:              fmt.Sprintf("q%d", i+1),
			Difficulty:      questions.Difficulties[i%len(questions.Difficulties)],
			Text:            fmt.Sprintf("Question text %d", i+1),
			ReferenceAnswer: fmt.Sprintf("=REF(%d)", i+1),
		}
	}
	return items
}

type harness struct {
	session    *Session
	evaluator  *scriptedEvaluator
	summarizer *countingSummarizer
	metrics    *metrics.Metrics
	archive    *memoryArchive
}

func newHarness(t *testing.T, n int, steps ...step) *harness {
	t.Helper()
	h := &harness{
		evaluator:  &scriptedEvaluator{steps: steps},
		summarizer: &countingSummarizer{},
		metrics:    metrics.NewMetrics(),
		archive:    &memoryArchive{},
	}
	svc := NewService(fixedSource{items: makeQuestions(n)}, h.evaluator, h.summarizer,
		WithRecorder(h.metrics), WithArchive(h.archive), WithPersona("Excellytix AI"))
	h.session = svc.NewSession()
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	if _, err := h.session.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
}

func TestStart(t *testing.T) {
	h := newHarness(t, 3)

	replies, err := h.session.Start()
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(replies) != 2 {
		t.Fatalf("Start() returned %d replies, want welcome + first question", len(replies))
	}
	if !strings.Contains(replies[0], "Excellytix AI") || !strings.Contains(replies[0], "3 questions") {
		t.Errorf("welcome = %q", replies[0])
	}
	if replies[1] != "**Question 1 of 3:** Question text 1" {
		t.Errorf("first question = %q", replies[1])
	}
	if h.session.State() != StateAwaitingAnswer {
		t.Errorf("State() = %s", h.session.State())
	}
	if q, ok := h.session.CurrentQuestion(); !ok || q.ID != "q1" {
		t.Errorf("CurrentQuestion() = %v, %v", q, ok)
	}

	if _, err := h.session.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() error = %v, want ErrAlreadyStarted", err)
	}
}

func TestStartWithoutQuestions(t *testing.T) {
	svc := NewService(fixedSource{err: questions.ErrNoQuestions}, &scriptedEvaluator{}, &countingSummarizer{})
	s := svc.NewSession()

	if _, err := s.Start(); !errors.Is(err, questions.ErrNoQuestions) {
		t.Fatalf("Start() error = %v, want ErrNoQuestions", err)
	}
	if s.State() != StateIntroduction {
		t.Errorf("State() = %s, want introduction", s.State())
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	h := newHarness(t, 1, right)

	if _, err := h.session.SubmitAnswer(context.Background(), "=SUM(A1)"); !errors.Is(err, ErrNotAwaitingAnswer) {
		t.Errorf("before Start: error = %v, want ErrNotAwaitingAnswer", err)
	}

	h.start(t)

	tests := []struct {
		name   string
		answer string
		want   error
	}{
		{"empty", "", ErrEmptyAnswer},
		{"whitespace", "  \n\t", ErrEmptyAnswer},
		{"too long", strings.Repeat("x", maxAnswerLength+1), ErrAnswerTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := h.session.SubmitAnswer(context.Background(), tt.answer); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}

	if h.evaluator.calls != 0 {
		t.Errorf("evaluator called %d times for invalid input", h.evaluator.calls)
	}
}

func TestScriptedAnswersProduceExactTally(t *testing.T) {
	tests := []struct {
		name  string
		n     int
		steps []step
		want  summary.Tally
	}{
		{
			name:  "all correct first try",
			n:     3,
			steps: []step{right, right, right},
			want:  summary.Tally{Total: 3, Passed: 3},
		},
		{
			name:  "all failed",
			n:     2,
			steps: []step{wrong, wrong, wrong, wrong},
			want:  summary.Tally{Total: 2, Failed: 2, HintsShown: 2},
		},
		{
			name:  "mixed",
			n:     5,
			steps: []step{right, wrong, right, wrong, wrong, right, wrong, right},
			want:  summary.Tally{Total: 5, Passed: 4, Failed: 1, HintsShown: 3},
		},
		{
			name:  "api failures in between",
			n:     2,
			steps: []step{down, wrong, down, down, right, wrong, wrong},
			want:  summary.Tally{Total: 2, Passed: 1, Failed: 1, HintsShown: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.n, tt.steps...)
			h.start(t)

			for i := range tt.steps {
				_, err := h.session.SubmitAnswer(context.Background(), fmt.Sprintf("answer %d", i))
				if tt.steps[i].err != nil {
					if err == nil {
						t.Fatalf("step %d: expected evaluation error", i)
					}
					continue
				}
				if err != nil {
					t.Fatalf("step %d: SubmitAnswer() error = %v", i, err)
				}
			}

			if !h.session.IsComplete() {
				t.Fatal("session should be complete")
			}
			if got := h.session.Tally(); got != tt.want {
				t.Errorf("Tally() = %+v, want %+v", got, tt.want)
			}
			if h.summarizer.calls != 1 {
				t.Errorf("summarizer called %d times, want 1", h.summarizer.calls)
			}
			if got := summary.NewTally(h.summarizer.last.Results); got != tt.want {
				t.Errorf("summarizer saw tally %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHintThenSecondWrongResolvesAsFailed(t *testing.T) {
	h := newHarness(t, 2, wrong, wrong)
	h.start(t)

	first, err := h.session.SubmitAnswer(context.Background(), "=AVERAGE(A1:A10)")
	if err != nil {
		t.Fatal(err)
	}
	if !first.HintShown || first.Resolved {
		t.Fatalf("first wrong answer: HintShown=%v Resolved=%v", first.HintShown, first.Resolved)
	}
	if len(first.Replies) != 1 || !strings.Contains(first.Replies[0], "hint for q1") {
		t.Errorf("hint replies = %v", first.Replies)
	}
	if h.session.Attempts() != 1 {
		t.Errorf("Attempts() = %d, want 1", h.session.Attempts())
	}

	second, err := h.session.SubmitAnswer(context.Background(), "=MAX(A1:A10)")
	if err != nil {
		t.Fatal(err)
	}
	if second.HintShown {
		t.Error("a second hint must never be shown")
	}
	if !second.Resolved || second.Turn.Correct {
		t.Fatalf("second wrong answer should resolve as failed: %+v", second.Turn)
	}
	if got := second.Turn.Answers; len(got) != 2 || got[0] != "=AVERAGE(A1:A10)" || got[1] != "=MAX(A1:A10)" {
		t.Errorf("Turn.Answers = %v", got)
	}
	if !second.Turn.HintShown || second.Turn.Hint != "hint for q1" {
		t.Errorf("turn hint = %v %q", second.Turn.HintShown, second.Turn.Hint)
	}
	if !strings.Contains(second.Replies[0], "=REF(1)") {
		t.Errorf("failed feedback should reveal the reference: %q", second.Replies[0])
	}
	if second.Replies[1] != "**Question 2 of 2:** Question text 2" {
		t.Errorf("next question = %q", second.Replies[1])
	}
	if cur, total := h.session.Progress(); cur != 2 || total != 2 {
		t.Errorf("Progress() = %d/%d", cur, total)
	}
}

func TestEvaluationFailureLeavesTurnUnresolved(t *testing.T) {
	h := newHarness(t, 1, wrong, down, right)
	h.start(t)

	if _, err := h.session.SubmitAnswer(context.Background(), "first try"); err != nil {
		t.Fatal(err)
	}
	transcriptBefore := len(h.session.Transcript())

	_, err := h.session.SubmitAnswer(context.Background(), "second try")
	var evalErr *evaluator.Error
	if !errors.As(err, &evalErr) {
		t.Fatalf("expected *evaluator.Error, got %v", err)
	}
	if !llm.IsKind(err, llm.KindTimeout) {
		t.Errorf("expected timeout kind to be preserved, got %v", err)
	}

	if h.session.Attempts() != 1 {
		t.Errorf("failed evaluation consumed an attempt: Attempts() = %d", h.session.Attempts())
	}
	if len(h.session.Turns()) != 0 {
		t.Error("failed evaluation must not resolve the turn")
	}
	if len(h.session.Transcript()) != transcriptBefore {
		t.Error("failed evaluation must not touch the transcript")
	}
	if h.session.State() != StateAwaitingAnswer {
		t.Errorf("State() = %s", h.session.State())
	}

	out, err := h.session.SubmitAnswer(context.Background(), "second try")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if !out.Resolved || !out.Turn.Correct || out.Turn.Attempts() != 2 {
		t.Errorf("retry outcome = %+v", out.Turn)
	}

	snap := h.metrics.GetSnapshot()
	if snap.EvaluationFailures != 1 || snap.AnswersEvaluated != 2 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestCompletionTriggersSummaryOnce(t *testing.T) {
	h := newHarness(t, 2, right, right)
	h.start(t)

	out, err := h.session.SubmitAnswer(context.Background(), "a")
	if err != nil {
		t.Fatal(err)
	}
	if out.Completed || h.summarizer.calls != 0 {
		t.Fatal("summary must not run before every question is resolved")
	}
	if _, err := h.session.Summary(); !errors.Is(err, ErrSummaryUnavailable) {
		t.Errorf("Summary() before completion error = %v", err)
	}

	out, err = h.session.SubmitAnswer(context.Background(), "b")
	if err != nil {
		t.Fatal(err)
	}
	if !out.Completed || out.Summary == nil || out.SummaryErr != nil {
		t.Fatalf("final outcome = %+v", out)
	}
	if h.summarizer.calls != 1 {
		t.Fatalf("summarizer called %d times, want 1", h.summarizer.calls)
	}

	last := out.Replies[len(out.Replies)-1]
	if !strings.HasPrefix(last, "### Performance Summary") {
		t.Errorf("last reply = %q", last)
	}
	if !strings.Contains(strings.Join(out.Replies, "\n"), "That was the last question!") {
		t.Error("conclusion message missing")
	}

	if _, err := h.session.SubmitAnswer(context.Background(), "c"); !errors.Is(err, ErrNotAwaitingAnswer) {
		t.Errorf("answer after completion error = %v", err)
	}
	if h.summarizer.calls != 1 {
		t.Errorf("summarizer called again: %d", h.summarizer.calls)
	}

	s, err := h.session.Summary()
	if err != nil || s.Text != "Strong fundamentals." {
		t.Errorf("Summary() = %v, %v", s, err)
	}

	if len(h.archive.reports) != 1 {
		t.Fatalf("archived %d reports, want 1", len(h.archive.reports))
	}
	report := h.archive.reports[0]
	if report.InterviewID != h.session.ID() || report.Passed != 2 || len(report.Turns) != 2 || report.Summary != "Strong fundamentals." {
		t.Errorf("report = %+v", report)
	}

	snap := h.metrics.GetSnapshot()
	if snap.InterviewsStarted != 1 || snap.InterviewsCompleted != 1 || snap.QuestionsAsked != 2 || snap.SummariesGenerated != 1 {
		t.Errorf("metrics = %+v", snap)
	}
}

func TestSummaryFailureIsReportedNotRetried(t *testing.T) {
	h := newHarness(t, 1, wrong, right)
	h.summarizer.err = errors.New("503 from provider")
	h.start(t)

	h.session.SubmitAnswer(context.Background(), "x")
	out, err := h.session.SubmitAnswer(context.Background(), "y")
	if err != nil {
		t.Fatalf("SubmitAnswer() error = %v", err)
	}
	if !out.Completed || out.Summary != nil || out.SummaryErr == nil {
		t.Fatalf("outcome = %+v", out)
	}
	if !strings.Contains(out.Replies[len(out.Replies)-1], "Passed 1 of 1") {
		t.Errorf("fallback reply should carry the tally: %q", out.Replies[len(out.Replies)-1])
	}
	if _, err := h.session.Summary(); !errors.Is(err, ErrSummaryUnavailable) {
		t.Errorf("Summary() error = %v", err)
	}
	if h.summarizer.calls != 1 {
		t.Errorf("summarizer called %d times, want 1", h.summarizer.calls)
	}
}

func TestTranscriptOrder(t *testing.T) {
	h := newHarness(t, 1, wrong, right)
	h.start(t)
	h.session.SubmitAnswer(context.Background(), "=AVG(A:A)")
	h.session.SubmitAnswer(context.Background(), "=SUM(A:A)")

	roles := []string{}
	for _, m := range h.session.Transcript() {
		roles = append(roles, m.Role)
	}
	want := []string{
		llm.RoleAssistant, // welcome
		llm.RoleAssistant, // question 1
		llm.RoleUser,      // wrong answer
		llm.RoleAssistant, // hint
		llm.RoleUser,      // correct answer
		llm.RoleAssistant, // praise
		llm.RoleAssistant, // conclusion
		llm.RoleAssistant, // summary
	}
	if strings.Join(roles, ",") != strings.Join(want, ",") {
		t.Errorf("transcript roles = %v, want %v", roles, want)
	}
}

// Случайные сценарии: инварианты должны держаться при любом порядке ответов
func TestRandomScriptsKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for run := 0; run < 200; run++ {
		n := 1 + rng.Intn(6)
		steps := make([]step, 0, 64)
		for i := 0; i < 64; i++ {
			switch rng.Intn(4) {
			case 0:
				steps = append(steps, down)
			case 1:
				steps = append(steps, right)
			default:
				steps = append(steps, wrong)
			}
		}

		h := newHarness(t, n, steps...)
		h.start(t)

		hintsPerQuestion := map[string]int{}
		for i := 0; !h.session.IsComplete(); i++ {
			if i > len(steps) {
				t.Fatalf("run %d: script exhausted before completion", run)
			}
			q, _ := h.session.CurrentQuestion()
			out, err := h.session.SubmitAnswer(context.Background(), "answer")
			if err != nil {
				if h.summarizer.calls != 0 {
					t.Fatalf("run %d: summary ran before completion", run)
				}
				continue
			}
			if out.HintShown {
				hintsPerQuestion[q.ID]++
			}
			if out.Completed && len(h.session.Turns()) != n {
				t.Fatalf("run %d: completed with %d of %d questions resolved", run, len(h.session.Turns()), n)
			}
		}

		for id, hints := range hintsPerQuestion {
			if hints > 1 {
				t.Fatalf("run %d: question %s got %d hints", run, id, hints)
			}
		}
		for _, turn := range h.session.Turns() {
			if turn.Attempts() < 1 || turn.Attempts() > maxAttempts {
				t.Fatalf("run %d: turn %s has %d attempts", run, turn.Question.ID, turn.Attempts())
			}
			if turn.HintShown != (turn.Attempts() == 2) {
				t.Fatalf("run %d: turn %s hint/attempt mismatch", run, turn.Question.ID)
			}
		}
		if h.summarizer.calls != 1 {
			t.Fatalf("run %d: summarizer called %d times", run, h.summarizer.calls)
		}
	}
}
