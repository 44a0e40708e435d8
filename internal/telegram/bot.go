package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"regexp"
	"strings"
	"time"
)

const apiBaseURL = "https://api.telegram.org"

// pollTimeout - long polling таймаут getUpdates в секундах
const pollTimeout = 30

// New создает новый Telegram бот
func New(token string) *Bot {
	return NewWithBaseURL(token, apiBaseURL)
}

// NewWithBaseURL создает бота для другого адреса API (тесты, локальный Bot API сервер)
func NewWithBaseURL(token, baseURL string) *Bot {
	return &Bot{
		token:   token,
		baseURL: fmt.Sprintf("%s/bot%s", strings.TrimRight(baseURL, "/"), token),
		client: &http.Client{
			Timeout: (pollTimeout + 10) * time.Second,
		},
	}
}

// GetUpdates получает обновления от Telegram
func (b *Bot) GetUpdates(ctx context.Context, offset int) ([]Update, error) {
	url := fmt.Sprintf("%s/getUpdates?offset=%d&timeout=%d", b.baseURL, offset, pollTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create getUpdates request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("getUpdates request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var response GetUpdatesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	if !response.OK {
		return nil, fmt.Errorf("telegram API error: %s", response.Description)
	}

	return response.Result, nil
}

// SendMessage отправляет сообщение в legacy Markdown. Если Telegram не смог
// разобрать разметку (ответы модели бывают с лишними символами), исходный текст уходит без разметки.
func (b *Bot) SendMessage(chatID int64, text string) error {
	err := b.send(SendMessageRequest{ChatID: chatID, Text: legacyMarkdown(text), ParseMode: "Markdown"})
	if err != nil && strings.Contains(err.Error(), "can't parse entities") {
		return b.send(SendMessageRequest{ChatID: chatID, Text: text})
	}
	return err
}

var (
	boldPattern    = regexp.MustCompile(`\*\*(.+?)\*\*`)
	headingPattern = regexp.MustCompile(`(?m)^#{1,6}[ \t]+(.+)$`)
)

// legacyMarkdown переводит **жирный** и заголовки # в *жирный*, который понимает parse_mode Markdown
func legacyMarkdown(text string) string {
	text = headingPattern.ReplaceAllStringFunc(text, func(line string) string {
		title := headingPattern.FindStringSubmatch(line)[1]
		return "*" + strings.ReplaceAll(strings.TrimSpace(title), "*", "") + "*"
	})
	return boldPattern.ReplaceAllString(text, "*$1*")
}

func (b *Bot) send(request SendMessageRequest) error {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := b.client.Post(b.baseURL+"/sendMessage", "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var response SendMessageResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if !response.OK {
		return fmt.Errorf("telegram API error on sendMessage: %s", response.Description)
	}

	return nil
}

// StartPolling получает обновления до отмены ctx. Каждое обновление
// обрабатывается в своей горутине; порядок внутри чата держит Registry.
func (b *Bot) StartPolling(ctx context.Context, handler func(context.Context, Update)) error {
	offset := 0

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		updates, err := b.GetUpdates(ctx, offset)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[ERROR] Failed to get updates: %v", err)
			sleep(ctx, 5*time.Second)
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			go handler(ctx, update)
		}

		if len(updates) == 0 {
			sleep(ctx, time.Second)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
