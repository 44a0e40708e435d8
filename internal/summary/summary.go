package summary

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"excel-interviewer/internal/llm"
	"excel-interviewer/internal/prompts"

	"github.com/samber/lo"
)

const (
	maxTranscriptChars = 32000
	keepHeadChars      = 8000
)

// Result - итог по одному вопросу
type Result struct {
	QuestionID string `json:"question_id"`
	Difficulty string `json:"difficulty"`
	Question   string `json:"question"`
	Correct    bool   `json:"correct"`
	Attempts   int    `json:"attempts"`
	HintShown  bool   `json:"hint_shown"`
}

// Tally - детерминированный подсчет результатов
type Tally struct {
	Total      int `json:"total"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	HintsShown int `json:"hints_shown"`
}

func NewTally(results []Result) Tally {
	passed := lo.CountBy(results, func(r Result) bool { return r.Correct })
	return Tally{
		Total:      len(results),
		Passed:     passed,
		Failed:     len(results) - passed,
		HintsShown: lo.CountBy(results, func(r Result) bool { return r.HintShown }),
	}
}

func (t Tally) String() string {
	return fmt.Sprintf("Passed %d of %d questions (%d failed, %d hints used)", t.Passed, t.Total, t.Failed, t.HintsShown)
}

// Request - все, что нужно для отчета
type Request struct {
	Results    []Result
	Transcript []llm.Message
}

// Summary - итоговый отчет. Создается один раз и дальше не меняется.
type Summary struct {
	Text        string    `json:"text"`
	Tally       Tally     `json:"tally"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Markdown возвращает отчет с заголовком для чата
func (s *Summary) Markdown() string {
	return prompts.SummaryHeading + "\n\n" + s.Text + "\n\n_" + s.Tally.String() + "_"
}

type Generator struct {
	llm llm.Completer
	now func() time.Time
}

func New(completer llm.Completer) *Generator {
	return &Generator{
		llm: completer,
		now: time.Now,
	}
}

// Generate делает один запрос к модели и возвращает отчет
func (g *Generator) Generate(ctx context.Context, req Request) (*Summary, error) {
	tally := NewTally(req.Results)
	log.Printf("[INFO] Generating performance summary: %s", tally)

	messages := []llm.Message{
		llm.SystemMessage(prompts.SummarySystem()),
		llm.UserMessage(prompts.SummaryUser(FormatTranscript(req.Transcript), Scoreboard(req.Results))),
	}

	response, err := g.llm.Complete(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	text := llm.CleanResponse(response)
	if text == "" {
		return nil, fmt.Errorf("failed to generate summary: empty response")
	}

	return &Summary{
		Text:        text,
		Tally:       tally,
		GeneratedAt: g.now(),
	}, nil
}

// FormatTranscript склеивает диалог в строки "role: content".
// Слишком длинная расшифровка обрезается посередине.
func FormatTranscript(messages []llm.Message) string {
	lines := lo.Map(messages, func(m llm.Message, _ int) string {
		return m.Role + ": " + m.Content
	})
	transcript := strings.Join(lines, "\n")

	if len(transcript) > maxTranscriptChars {
		// Обе границы сдвигаются на начало руны, чтобы не резать UTF-8 посередине
		head := keepHeadChars
		for head > 0 && !utf8.RuneStart(transcript[head]) {
			head--
		}
		tail := len(transcript) - (maxTranscriptChars - keepHeadChars)
		for tail < len(transcript) && !utf8.RuneStart(transcript[tail]) {
			tail++
		}
		transcript = transcript[:head] + "\n\n[... middle truncated ...]\n\n" + transcript[tail:]
	}
	return transcript
}

// Scoreboard перечисляет результаты по вопросам
func Scoreboard(results []Result) string {
	var b strings.Builder
	for i, r := range results {
		status := "failed"
		switch {
		case r.Correct && r.Attempts <= 1:
			status = "passed on the first try"
		case r.Correct:
			status = "passed after a hint"
		}
		b.WriteString(fmt.Sprintf("%d. [%s] %s - %s\n", i+1, r.Difficulty, r.Question, status))
	}
	b.WriteString(NewTally(results).String())
	return b.String()
}
