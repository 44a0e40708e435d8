package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"excel-interviewer/internal/commands"
	"excel-interviewer/internal/config"
	"excel-interviewer/internal/evaluator"
	"excel-interviewer/internal/interview"
	"excel-interviewer/internal/prompts"
)

// Sender отправляет текст в чат
type Sender interface {
	SendMessage(chatID int64, text string) error
}

type RateLimiter struct {
	requests map[int64][]time.Time
	mutex    sync.Mutex
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		requests: make(map[int64][]time.Time),
		limit:    limit,
		window:   window,
	}
}

func (rl *RateLimiter) IsAllowed(userID int64) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()

	var valid []time.Time
	for _, t := range rl.requests[userID] {
		if now.Sub(t) < rl.window {
			valid = append(valid, t)
		}
	}

	if len(valid) >= rl.limit {
		rl.requests[userID] = valid
		return false
	}

	rl.requests[userID] = append(valid, now)
	return true
}

type Handler struct {
	bot         Sender
	service     *interview.Service
	sessions    *interview.Registry
	rateLimiter *RateLimiter
	debug       bool
}

func NewHandler(bot Sender, service *interview.Service, cfg config.TelegramConfig) *Handler {
	return &Handler{
		bot:         bot,
		service:     service,
		sessions:    interview.NewRegistry(cfg.SessionTimeout),
		rateLimiter: NewRateLimiter(cfg.RateLimit, cfg.RateWindow),
		debug:       cfg.Debug,
	}
}

// StartSessionCleanup удаляет брошенные интервью раз в час
func (h *Handler) StartSessionCleanup(ctx context.Context) {
	h.sessions.StartCleanup(ctx, time.Hour)
}

func (h *Handler) HandleUpdate(ctx context.Context, update Update) {
	if update.Message == nil || update.Message.From == nil || update.Message.Chat == nil {
		return
	}
	userID := update.Message.From.ID
	chatID := update.Message.Chat.ID
	text := strings.TrimSpace(update.Message.Text)

	if h.debug {
		log.Printf("[DEBUG] Update %d from chat %d: %q", update.UpdateID, chatID, text)
	}

	if !h.rateLimiter.IsAllowed(userID) {
		h.send(chatID, "⏳ Too many messages. Please wait a minute.")
		return
	}

	if commands.IsCommand(text) {
		h.handleCommand(ctx, chatID, text)
		return
	}
	h.handleUserInput(ctx, chatID, text)
}

func sessionKey(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}

// handleCommand обрабатывает команды бота
func (h *Handler) handleCommand(ctx context.Context, chatID int64, text string) {
	switch command := commands.Parse(text); command {
	case commands.Start:
		h.handleStartCommand(chatID)
	case commands.Help:
		h.handleHelpCommand(chatID)
	case commands.Status:
		h.handleStatusCommand(chatID)
	case commands.Summary:
		h.handleSummaryCommand(chatID)
	case commands.Restart:
		h.sessions.Delete(sessionKey(chatID))
		h.send(chatID, "🔄 Interview reset.")
		h.handleStartCommand(chatID)
	case commands.Stop:
		h.handleStopCommand(chatID)
	default:
		h.send(chatID, commands.Chat.Unknown(command))
	}
}

func (h *Handler) handleStartCommand(chatID int64) {
	key := sessionKey(chatID)

	var inProgress bool
	err := h.sessions.Do(key, func(s *interview.Session) error {
		inProgress = !s.IsComplete()
		return nil
	})
	switch {
	case errors.Is(err, interview.ErrBusy):
		h.send(chatID, userMessage(err))
		return
	case err == nil && inProgress:
		h.send(chatID, "You already have an interview in progress. Use /status to check it or /restart to begin again.")
		return
	}

	session := h.service.NewSession()
	replies, err := session.Start()
	if err != nil {
		log.Printf("[ERROR] Chat %d: failed to start interview: %v", chatID, err)
		h.send(chatID, "❌ Could not start the interview. Please try again later.")
		return
	}

	h.sessions.Put(key, session)
	h.sendAll(chatID, replies)
}

func (h *Handler) handleHelpCommand(chatID int64) {
	h.send(chatID, fmt.Sprintf("🤖 *%s Excel mock interview*\n\n%s\n\n"+
		"Answer each question with a formula or a short explanation. A wrong first answer earns one hint; "+
		"a second wrong answer moves on to the next question.", h.service.Persona(), commands.Chat.HelpText()))
}

// handleStatusCommand читает сессию только внутри Registry.Do
func (h *Handler) handleStatusCommand(chatID int64) {
	var status string
	err := h.sessions.Do(sessionKey(chatID), func(s *interview.Session) error {
		status = statusText(s)
		return nil
	})

	switch {
	case errors.Is(err, interview.ErrSessionNotFound):
		h.send(chatID, "No interview yet. Send /start to begin.")
	case errors.Is(err, interview.ErrBusy):
		h.send(chatID, "⏳ Evaluating your last answer, one moment...")
	case err != nil:
		h.send(chatID, userMessage(err))
	default:
		h.send(chatID, status)
	}
}

func statusText(s *interview.Session) string {
	current, total := s.Progress()
	tally := s.Tally()

	switch s.State() {
	case interview.StateConcluded:
		return fmt.Sprintf("✅ Interview finished. %s\nUse /summary to see the report or /start for a new interview.", tally)
	case interview.StateAwaitingAnswer:
		attempt := "first attempt"
		if s.Attempts() > 0 {
			attempt = "second attempt (hint given)"
		}
		return fmt.Sprintf("📊 Question %d of %d, %s.\nSo far: %d passed, %d failed.", current, total, attempt, tally.Passed, tally.Failed)
	default:
		return "Interview not started. Send /start to begin."
	}
}

func (h *Handler) handleSummaryCommand(chatID int64) {
	var text string
	err := h.sessions.Do(sessionKey(chatID), func(s *interview.Session) error {
		if !s.IsComplete() {
			return interview.ErrSummaryUnavailable
		}
		report, err := s.Summary()
		if err != nil {
			text = prompts.SummaryFailedMessage
			return nil
		}
		text = report.Markdown()
		return nil
	})

	switch {
	case errors.Is(err, interview.ErrBusy):
		h.send(chatID, userMessage(err))
	case err != nil:
		h.send(chatID, "The summary is available once the interview is finished.")
	default:
		h.send(chatID, text)
	}
}

func (h *Handler) handleStopCommand(chatID int64) {
	if _, ok := h.sessions.Get(sessionKey(chatID)); !ok {
		h.send(chatID, "No interview is running.")
		return
	}
	h.sessions.Delete(sessionKey(chatID))
	h.send(chatID, "🛑 Interview stopped.")
}

// validateUserInput отсекает спам до обращения к модели
func validateUserInput(text string) error {
	if len(text) > 10 && strings.Count(text, text[:1]) > len(text)*8/10 {
		return fmt.Errorf("the message has too many repeated characters")
	}
	return nil
}

// handleUserInput обрабатывает ответы пользователя
func (h *Handler) handleUserInput(ctx context.Context, chatID int64, text string) {
	if err := validateUserInput(text); err != nil {
		h.send(chatID, "❌ "+err.Error())
		return
	}

	var replies []string
	err := h.sessions.Do(sessionKey(chatID), func(s *interview.Session) error {
		out, err := s.SubmitAnswer(ctx, text)
		if err != nil {
			return err
		}
		replies = out.Replies
		return nil
	})

	if err != nil {
		h.send(chatID, userMessage(err))
		return
	}
	h.sendAll(chatID, replies)
}

// userMessage переводит ошибку сессии в ответ пользователю
func userMessage(err error) string {
	var evalErr *evaluator.Error
	switch {
	case errors.As(err, &evalErr):
		return "⚠️ " + prompts.RetryMessage
	case errors.Is(err, interview.ErrBusy):
		return "⏳ Still evaluating your previous answer, one moment..."
	case errors.Is(err, interview.ErrSessionNotFound):
		return "Send /start to begin the interview."
	case errors.Is(err, interview.ErrNotAwaitingAnswer):
		return "The interview is finished. Use /summary to see your report or /start for a new one."
	case errors.Is(err, interview.ErrEmptyAnswer):
		return "Please type an answer."
	case errors.Is(err, interview.ErrAnswerTooLong):
		return "❌ That answer is too long (max 4000 characters)."
	default:
		log.Printf("[ERROR] Unexpected interview error: %v", err)
		return "❌ Something went wrong. Please try again."
	}
}

func (h *Handler) send(chatID int64, text string) {
	if err := h.bot.SendMessage(chatID, text); err != nil {
		log.Printf("[ERROR] Chat %d: failed to send message: %v", chatID, err)
	}
}

func (h *Handler) sendAll(chatID int64, texts []string) {
	for _, text := range texts {
		h.send(chatID, text)
	}
}
