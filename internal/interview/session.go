package interview

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"excel-interviewer/internal/llm"
	"excel-interviewer/internal/prompts"
	"excel-interviewer/internal/questions"
	"excel-interviewer/internal/storage"
	"excel-interviewer/internal/summary"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// Session ведет одно интервью: вопрос, ответ, оценка, подсказка или переход.
// Сессия не потокобезопасна; параллельный доступ сериализует Registry.
type Session struct {
	id  string
	svc *Service

	state     State
	questions []questions.Question
	index     int
	answers   []string
	hint      string
	turns     []Turn

	transcript []llm.Message

	summarized bool
	summary    *summary.Summary
	summaryErr error

	startedAt  time.Time
	finishedAt time.Time
}

func newSession(svc *Service) *Session {
	return &Session{
		id:    uuid.New().String(),
		svc:   svc,
		state: StateIntroduction,
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) State() State {
	return s.state
}

func (s *Session) IsComplete() bool {
	return s.state == StateConcluded
}

// Start выбирает вопросы и задает первый
func (s *Session) Start() ([]string, error) {
	if s.state != StateIntroduction {
		return nil, ErrAlreadyStarted
	}

	selected, err := s.svc.source.Select()
	if err != nil {
		return nil, fmt.Errorf("failed to select questions: %w", err)
	}

	s.questions = selected
	s.state = StateAwaitingAnswer
	s.startedAt = time.Now()
	s.svc.recorder.IncrementInterviewsStarted()

	log.Printf("[INFO] Interview %s started with %d questions", s.id, len(selected))

	welcome := prompts.Welcome(s.svc.persona, len(selected))
	s.transcript = append(s.transcript, llm.AssistantMessage(welcome))

	return []string{welcome, s.askCurrent()}, nil
}

// SubmitAnswer оценивает ответ на текущий вопрос.
// При ошибке оценки попытка не засчитывается и ничего не записывается.
func (s *Session) SubmitAnswer(ctx context.Context, text string) (*Outcome, error) {
	if s.state != StateAwaitingAnswer {
		return nil, fmt.Errorf("%w: interview is %s", ErrNotAwaitingAnswer, s.state)
	}

	answer := strings.TrimSpace(text)
	if answer == "" {
		return nil, ErrEmptyAnswer
	}
	if utf8.RuneCountInString(answer) > maxAnswerLength {
		return nil, ErrAnswerTooLong
	}

	q := s.questions[s.index]
	verdict, err := s.svc.evaluator.Evaluate(ctx, q, answer)
	if err != nil {
		s.svc.recorder.IncrementEvaluationFailures()
		log.Printf("[ERROR] Interview %s: evaluation of %s failed: %v", s.id, q.ID, err)
		return nil, err
	}

	s.svc.recorder.IncrementAnswersEvaluated(verdict.IsCorrect)
	s.answers = append(s.answers, answer)
	s.transcript = append(s.transcript, llm.UserMessage(answer))

	out := &Outcome{Verdict: verdict}

	switch {
	case verdict.IsCorrect:
		s.resolve(ctx, out, true, prompts.Praise(verdict.Explanation))
	case len(s.answers) < maxAttempts:
		s.hint = verdict.Explanation
		reply := prompts.Hint(verdict.Explanation)
		s.transcript = append(s.transcript, llm.AssistantMessage(reply))
		s.svc.recorder.IncrementHintsShown()
		out.HintShown = true
		out.Replies = append(out.Replies, reply)
	default:
		s.resolve(ctx, out, false, prompts.Failed(verdict.Explanation, q.ReferenceAnswer))
	}

	return out, nil
}

// resolve закрывает текущий вопрос и переходит к следующему или к итогам
func (s *Session) resolve(ctx context.Context, out *Outcome, correct bool, feedback string) {
	turn := Turn{
		Question:  s.questions[s.index],
		Answers:   s.answers,
		Correct:   correct,
		HintShown: s.hint != "",
		Hint:      s.hint,
		Feedback:  feedback,
	}
	s.turns = append(s.turns, turn)
	s.transcript = append(s.transcript, llm.AssistantMessage(feedback))

	out.Resolved = true
	out.Turn = &turn
	out.Replies = append(out.Replies, feedback)

	s.index++
	s.answers = nil
	s.hint = ""

	if s.index < len(s.questions) {
		out.Replies = append(out.Replies, s.askCurrent())
		return
	}

	s.conclude(ctx, out)
}

func (s *Session) askCurrent() string {
	q := s.questions[s.index]
	text := prompts.QuestionHeader(s.index+1, len(s.questions), q.Text)
	s.transcript = append(s.transcript, llm.AssistantMessage(text))
	s.svc.recorder.IncrementQuestionsAsked()
	return text
}

func (s *Session) conclude(ctx context.Context, out *Outcome) {
	s.state = StateConcluded
	s.finishedAt = time.Now()
	s.svc.recorder.IncrementInterviewsCompleted()

	conclusion := prompts.Conclusion()
	s.transcript = append(s.transcript, llm.AssistantMessage(conclusion))
	out.Completed = true
	out.Replies = append(out.Replies, conclusion)

	log.Printf("[INFO] Interview %s concluded: %s", s.id, s.Tally())

	s.summarize(ctx)
	out.Summary = s.summary
	out.SummaryErr = s.summaryErr

	if s.summary != nil {
		out.Replies = append(out.Replies, s.summary.Markdown())
	} else {
		out.Replies = append(out.Replies, prompts.SummaryFailedMessage+"\n\n_"+s.Tally().String()+"_")
	}

	if s.svc.archive != nil {
		if err := s.svc.archive.SaveReport(s.Report()); err != nil {
			log.Printf("[ERROR] Interview %s: failed to save report: %v", s.id, err)
		}
	}
}

// summarize вызывает генератор отчета не более одного раза за сессию
func (s *Session) summarize(ctx context.Context) {
	if s.summarized {
		return
	}
	s.summarized = true

	result, err := s.svc.summarizer.Generate(ctx, summary.Request{
		Results:    s.results(),
		Transcript: s.Transcript(),
	})
	s.svc.recorder.IncrementSummaries(err == nil)
	if err != nil {
		log.Printf("[ERROR] Interview %s: %v", s.id, err)
		s.summaryErr = err
		return
	}

	s.summary = result
	s.transcript = append(s.transcript, llm.AssistantMessage(result.Markdown()))
}

// CurrentQuestion возвращает открытый вопрос, если он есть
func (s *Session) CurrentQuestion() (questions.Question, bool) {
	if s.state != StateAwaitingAnswer {
		return questions.Question{}, false
	}
	return s.questions[s.index], true
}

// Progress возвращает номер текущего вопроса (с единицы) и их общее число
func (s *Session) Progress() (current, total int) {
	total = len(s.questions)
	current = min(s.index+1, total)
	return current, total
}

// Attempts - число оцененных попыток на текущем вопросе
func (s *Session) Attempts() int {
	return len(s.answers)
}

func (s *Session) Turns() []Turn {
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

func (s *Session) Transcript() []llm.Message {
	out := make([]llm.Message, len(s.transcript))
	copy(out, s.transcript)
	return out
}

func (s *Session) Tally() summary.Tally {
	return summary.NewTally(s.results())
}

// Summary возвращает итоговый отчет после завершения интервью
func (s *Session) Summary() (*summary.Summary, error) {
	if !s.summarized {
		return nil, ErrSummaryUnavailable
	}
	if s.summaryErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrSummaryUnavailable, s.summaryErr)
	}
	return s.summary, nil
}

func (s *Session) results() []summary.Result {
	return lo.Map(s.turns, func(t Turn, _ int) summary.Result {
		return t.Result()
	})
}

// Report собирает отчет для сохранения
func (s *Session) Report() *storage.InterviewReport {
	tally := s.Tally()
	report := &storage.InterviewReport{
		InterviewID: s.id,
		Timestamp:   s.finishedAt.Format(time.RFC3339),
		StartedAt:   s.startedAt.Format(time.RFC3339),
		Passed:      tally.Passed,
		Failed:      tally.Failed,
		HintsShown:  tally.HintsShown,
		Turns: lo.Map(s.turns, func(t Turn, _ int) storage.TurnRecord {
			return storage.TurnRecord{
				QuestionID: t.Question.ID,
				Difficulty: string(t.Question.Difficulty),
				Question:   t.Question.Text,
				Reference:  t.Question.ReferenceAnswer,
				Answers:    t.Answers,
				Correct:    t.Correct,
				HintShown:  t.HintShown,
				Hint:       t.Hint,
				Feedback:   t.Feedback,
			}
		}),
	}
	if s.summary != nil {
		report.Summary = s.summary.Text
	}
	return report
}
