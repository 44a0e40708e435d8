package console

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"excel-interviewer/internal/commands"
	"excel-interviewer/internal/evaluator"
	"excel-interviewer/internal/interview"
	"excel-interviewer/internal/prompts"
)

type role int

const (
	roleInterviewer role = iota
	roleCandidate
	roleSystem
	roleError
)

type entry struct {
	role role
	text string
}

// answerEvaluatedMsg приходит, когда SubmitAnswer вернулся
type answerEvaluatedMsg struct {
	outcome *interview.Outcome
	err     error
}

// Model - терминальный чат одного интервью
type Model struct {
	ctx     context.Context
	service *interview.Service
	session *interview.Session

	keys     KeyMap
	help     help.Model
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	entries    []entry
	evaluating bool

	// Копия прогресса для View: пока идет оценка, сессией владеет горутина команды
	current int
	total   int
	ready      bool
	width      int
	height     int
}

func NewModel(ctx context.Context, service *interview.Service) Model {
	ti := textinput.New()
	ti.Placeholder = "Type your answer or /help..."
	ti.Prompt = "❯ "
	ti.PromptStyle = InputPromptStyle
	ti.CharLimit = 4000
	ti.Width = 80
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SpinnerStyle

	m := Model{
		ctx:      ctx,
		service:  service,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    ti,
		viewport: viewport.New(80, 20),
		spinner:  sp,
	}
	m.startSession()
	return m
}

func (m *Model) startSession() {
	m.session = m.service.NewSession()
	replies, err := m.session.Start()
	if err != nil {
		log.Printf("[ERROR] Failed to start interview: %v", err)
		m.add(roleError, "Could not start the interview: "+err.Error())
		return
	}
	m.addAll(roleInterviewer, replies)
	m.syncProgress()
}

// syncProgress вызывается только из Update, когда оценка не идет
func (m *Model) syncProgress() {
	m.current, m.total = m.session.Progress()
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

		// шапка, поле ввода с рамкой, строка помощи и рамка вывода
		m.viewport.Width = max(msg.Width-4, 10)
		m.viewport.Height = max(msg.Height-9, 1)
		m.input.Width = max(msg.Width-8, 10)
		m.help.Width = msg.Width
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		}

	case answerEvaluatedMsg:
		m.evaluating = false
		m.input.Focus()
		if msg.err != nil {
			m.add(roleError, errorText(msg.err))
		} else {
			m.addAll(roleInterviewer, msg.outcome.Replies)
		}
		m.syncProgress()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.evaluating {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.evaluating {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit отправляет введенный текст. Пока идет оценка, ввод игнорируется.
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.evaluating {
		return m, nil
	}

	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.Reset()

	if commands.IsCommand(text) {
		return m.handleCommand(text)
	}

	m.add(roleCandidate, text)
	if m.session.IsComplete() {
		m.add(roleSystem, "The interview is finished. Use /summary to see your report or /restart for a new one.")
		m.refresh()
		return m, nil
	}

	m.evaluating = true
	m.input.Blur()
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, evaluate(m.ctx, m.session, text))
}

// evaluate выполняет SubmitAnswer вне цикла Update
func evaluate(ctx context.Context, session *interview.Session, text string) tea.Cmd {
	return func() tea.Msg {
		outcome, err := session.SubmitAnswer(ctx, text)
		return answerEvaluatedMsg{outcome: outcome, err: err}
	}
}

func (m Model) handleCommand(text string) (tea.Model, tea.Cmd) {
	switch command := commands.Parse(text); command {
	case commands.Quit:
		return m, tea.Quit
	case commands.Help:
		m.add(roleSystem, commands.Console.HelpText())
	case commands.Status:
		m.add(roleSystem, statusText(m.session))
	case commands.Summary:
		m.add(roleSystem, summaryText(m.session))
	case commands.Restart:
		m.entries = nil
		m.startSession()
	default:
		m.add(roleSystem, commands.Console.Unknown(command))
	}
	m.refresh()
	return m, nil
}

func statusText(s *interview.Session) string {
	current, total := s.Progress()
	if s.IsComplete() {
		return "Interview finished. " + s.Tally().String()
	}
	if s.State() != interview.StateAwaitingAnswer {
		return "Interview not started."
	}
	tally := s.Tally()
	return fmt.Sprintf("Question %d of %d, attempt %d. So far: %d passed, %d failed.",
		current, total, s.Attempts()+1, tally.Passed, tally.Failed)
}

func summaryText(s *interview.Session) string {
	if !s.IsComplete() {
		return "The summary is available once the interview is finished."
	}
	report, err := s.Summary()
	if err != nil {
		return prompts.SummaryFailedMessage + "\n" + s.Tally().String()
	}
	return report.Markdown()
}

func errorText(err error) string {
	var evalErr *evaluator.Error
	switch {
	case errors.As(err, &evalErr):
		return prompts.RetryMessage
	case errors.Is(err, interview.ErrAnswerTooLong):
		return "That answer is too long. Please keep it under 4000 characters."
	case errors.Is(err, interview.ErrEmptyAnswer):
		return "Please type an answer."
	default:
		return "Something went wrong: " + err.Error()
	}
}

func (m *Model) add(r role, text string) {
	m.entries = append(m.entries, entry{role: r, text: text})
}

func (m *Model) addAll(r role, texts []string) {
	for _, text := range texts {
		m.add(r, text)
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderEntries())
	m.viewport.GotoBottom()
}

func (m Model) renderEntries() string {
	width := max(m.viewport.Width-2, 20)

	blocks := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		var style lipgloss.Style
		switch e.role {
		case roleCandidate:
			style = CandidateStyle
		case roleSystem:
			style = SystemStyle
		case roleError:
			style = ErrorStyle
		default:
			style = InterviewerStyle
		}
		blocks = append(blocks, style.Width(width).Render(e.text))
	}
	return strings.Join(blocks, "\n\n")
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := HeaderStyle.Render(m.service.Persona()+" · Excel mock interview") +
		"  " + ProgressStyle.Render(fmt.Sprintf("%d/%d", m.current, m.total))

	var input string
	if m.evaluating {
		input = m.spinner.View() + " Evaluating your answer..."
	} else {
		input = m.input.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		OutputStyle.Render(m.viewport.View()),
		InputStyle.Width(max(m.width-2, 10)).Render(input),
		m.help.View(m.keys),
	)
}

// Run запускает чат и блокируется до выхода пользователя или отмены ctx
func Run(ctx context.Context, service *interview.Service) error {
	p := tea.NewProgram(NewModel(ctx, service), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
