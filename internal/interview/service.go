package interview

import (
	"context"

	"excel-interviewer/internal/evaluator"
	"excel-interviewer/internal/questions"
	"excel-interviewer/internal/storage"
	"excel-interviewer/internal/summary"
)

// QuestionSource выдает набор вопросов для новой сессии
type QuestionSource interface {
	Select() ([]questions.Question, error)
}

// Evaluator оценивает один ответ кандидата
type Evaluator interface {
	Evaluate(ctx context.Context, q questions.Question, answer string) (*evaluator.Verdict, error)
}

// Summarizer строит итоговый отчет
type Summarizer interface {
	Generate(ctx context.Context, req summary.Request) (*summary.Summary, error)
}

// Recorder учитывает события интервью
type Recorder interface {
	IncrementInterviewsStarted()
	IncrementInterviewsCompleted()
	IncrementQuestionsAsked()
	IncrementAnswersEvaluated(correct bool)
	IncrementHintsShown()
	IncrementEvaluationFailures()
	IncrementSummaries(success bool)
}

// Archiver сохраняет отчет завершенного интервью
type Archiver interface {
	SaveReport(report *storage.InterviewReport) error
}

// Service создает сессии с общими зависимостями
type Service struct {
	persona    string
	source     QuestionSource
	evaluator  Evaluator
	summarizer Summarizer
	recorder   Recorder
	archive    Archiver
}

type Option func(*Service)

func WithPersona(persona string) Option {
	return func(s *Service) { s.persona = persona }
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithArchive(a Archiver) Option {
	return func(s *Service) { s.archive = a }
}

func NewService(source QuestionSource, eval Evaluator, summarizer Summarizer, opts ...Option) *Service {
	s := &Service{
		persona:    "Excellytix AI",
		source:     source,
		evaluator:  eval,
		summarizer: summarizer,
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Persona() string {
	return s.persona
}

// NewSession создает новую сессию в состоянии introduction
func (s *Service) NewSession() *Session {
	return newSession(s)
}

type nopRecorder struct{}

func (nopRecorder) IncrementInterviewsStarted() {}
func (nopRecorder) IncrementInterviewsCompleted() {}
func (nopRecorder) IncrementQuestionsAsked() {}
func (nopRecorder) IncrementAnswersEvaluated(bool) {}
func (nopRecorder) IncrementHintsShown() {}
func (nopRecorder) IncrementEvaluationFailures() {}
func (nopRecorder) IncrementSummaries(bool) {}
