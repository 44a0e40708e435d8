package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"excel-interviewer/internal/config"
	"excel-interviewer/internal/console"
	"excel-interviewer/internal/evaluator"
	"excel-interviewer/internal/httpapi"
	"excel-interviewer/internal/interview"
	"excel-interviewer/internal/llm"
	"excel-interviewer/internal/metrics"
	"excel-interviewer/internal/questions"
	"excel-interviewer/internal/storage"
	"excel-interviewer/internal/summary"
	"excel-interviewer/internal/telegram"
)

func main() {
	// Загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ .env файл не найден, используются переменные окружения")
	}

	app := config.LoadAppConfig()

	// В консольном режиме терминал занят чатом, поэтому лог уходит в файл
	if app.Mode == config.ModeConsole {
		f, err := tea.LogToFile(app.LogFile, "interview")
		if err != nil {
			log.Fatalf("Ошибка открытия лог-файла: %v", err)
		}
		defer f.Close()
	} else {
		fmt.Println("🚀 Запуск Excel Interviewer...")
	}

	if err := app.LLM.ValidateConfig(); err != nil {
		log.Fatalf("Ошибка конфигурации модели: %v", err)
	}

	// Загружаем конфигурацию интервью и банк вопросов
	cfg, err := config.Load(app.ConfigPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации интервью: %v", err)
	}

	bank, err := questions.LoadBank(cfg.QuestionBank)
	if err != nil {
		log.Fatalf("Ошибка загрузки банка вопросов: %v", err)
	}

	mix, err := questions.MixFromCounts(cfg.GetMix())
	if err != nil {
		log.Fatalf("Ошибка конфигурации интервью: %v", err)
	}

	// Инициализируем сервисы
	stats := metrics.NewMetrics()

	completer, err := llm.New(&app.LLM)
	if err != nil {
		log.Fatalf("Ошибка инициализации модели: %v", err)
	}

	eval, err := evaluator.New(llm.Instrument(completer, "evaluation", stats), cfg.GetPersona())
	if err != nil {
		log.Fatalf("Ошибка инициализации оценщика: %v", err)
	}
	summarizer := summary.New(llm.Instrument(completer, "summary", stats))

	opts := []interview.Option{
		interview.WithPersona(cfg.GetPersona()),
		interview.WithRecorder(stats),
	}

	var store *storage.Store
	if app.ReportsDir != "" {
		store = storage.NewStore(app.ReportsDir)
		opts = append(opts, interview.WithArchive(store))
	}

	service := interview.NewService(questions.NewProvider(bank, mix, cfg.Seed), eval, summarizer, opts...)

	if app.Mode != config.ModeConsole {
		printConfig(app, cfg, bank, store)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch app.Mode {
	case config.ModeConsole:
		err = console.Run(ctx, service)
	case config.ModeTelegram:
		err = runTelegram(ctx, app.Telegram, service)
	case config.ModeHTTP:
		err = runHTTP(ctx, app.Server, service, stats, store)
	default:
		log.Fatalf("Неизвестный INTERVIEW_MODE %q (console, telegram, http)", app.Mode)
	}

	log.Printf("[INFO] Metrics on exit: %+v", stats.GetSnapshot())
	if err != nil && ctx.Err() == nil {
		log.Fatalf("Ошибка работы: %v", err)
	}
}

func runTelegram(ctx context.Context, cfg config.TelegramConfig, service *interview.Service) error {
	if cfg.Token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN не установлен")
	}

	bot := telegram.New(cfg.Token)
	handler := telegram.NewHandler(bot, service, cfg)
	handler.StartSessionCleanup(ctx)

	fmt.Println("\n🤖 Telegram бот запущен!")
	fmt.Println("⏳ Ожидание сообщений...")
	fmt.Println("📱 Найдите бота в Telegram и отправьте /start")

	return bot.StartPolling(ctx, handler.HandleUpdate)
}

func runHTTP(ctx context.Context, cfg config.ServerConfig, service *interview.Service, stats *metrics.Metrics, store *storage.Store) error {
	sessions := interview.NewRegistry(cfg.SessionTimeout)
	sessions.StartCleanup(ctx, max(cfg.SessionTimeout/4, time.Minute))

	var reports httpapi.ReportStore
	if store != nil {
		reports = store
	}
	handler := httpapi.NewInterviewHandler(service, sessions, stats, reports)

	fmt.Printf("\n🌐 HTTP API на порту %d\n", cfg.Port)
	return httpapi.Run(ctx, cfg, handler)
}

func printConfig(app *config.AppConfig, cfg *config.Config, bank *questions.Bank, store *storage.Store) {
	fmt.Println("\n📋 Конфигурация:")
	fmt.Printf("• Режим: %s\n", app.Mode)
	info := app.LLM.GetModelInfo()
	fmt.Printf("• Модель: %v (%v), base URL %v, timeout %v\n", info["model"], info["provider"], info["base_url"], info["timeout"])
	fmt.Printf("• Вопросов в интервью: %d (easy %d, medium %d, hard %d)\n", cfg.GetTotalQuestions(),
		cfg.InterviewConfig.Easy, cfg.InterviewConfig.Medium, cfg.InterviewConfig.Hard)
	fmt.Printf("• Банк вопросов: %d (%s)\n", bank.Total(), cfg.QuestionBank)

	if store != nil {
		fmt.Printf("• Отчеты: %s 💾\n", store.Dir())
	} else {
		fmt.Println("• Отчеты: не сохраняются ⚠️")
	}
}
