package llm

import (
	"context"
	"log"
	"time"

	"excel-interviewer/internal/config"
)

// New создает клиента модели по конфигурации
func New(cfg *config.LLMConfig) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg), nil
	case config.ProviderHTTP:
		return NewChatClient(cfg), nil
	default:
		client, err := NewLangChainClient(cfg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// CallRecorder учитывает вызовы модели
type CallRecorder interface {
	IncrementAPICall(success bool)
}

// Instrumented логирует каждый вызов модели и передает результат в CallRecorder
type Instrumented struct {
	next     Completer
	name     string
	recorder CallRecorder
}

func Instrument(next Completer, name string, recorder CallRecorder) *Instrumented {
	return &Instrumented{next: next, name: name, recorder: recorder}
}

func (i *Instrumented) Complete(ctx context.Context, messages []Message) (string, error) {
	log.Printf("[INFO] Calling %s model with %d messages", i.name, len(messages))
	start := time.Now()

	response, err := i.next.Complete(ctx, messages)
	if i.recorder != nil {
		i.recorder.IncrementAPICall(err == nil)
	}

	if err != nil {
		log.Printf("[ERROR] %s model call failed after %v: %v", i.name, time.Since(start).Round(time.Millisecond), err)
		return "", err
	}

	log.Printf("[INFO] %s model responded in %v (%d chars)", i.name, time.Since(start).Round(time.Millisecond), len(response))
	return response, nil
}
