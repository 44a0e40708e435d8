package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	messages []llms.MessageContent
	options  llms.CallOptions
	resp     *llms.ContentResponse
	err      error
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.messages = messages
	for _, opt := range options {
		opt(&f.options)
	}
	return f.resp, f.err
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChainClientComplete(t *testing.T) {
	model := &fakeModel{resp: &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: `{"is_correct": true}`}},
	}}
	client := NewLangChainClientFromModel(model, 1024, 0.1)

	got, err := client.Complete(context.Background(), []Message{
		SystemMessage("grade"),
		UserMessage("=SUM(A1:A3)"),
		AssistantMessage("previous"),
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != `{"is_correct": true}` {
		t.Errorf("Complete() = %q", got)
	}

	wantRoles := []llms.ChatMessageType{llms.ChatMessageTypeSystem, llms.ChatMessageTypeHuman, llms.ChatMessageTypeAI}
	if len(model.messages) != len(wantRoles) {
		t.Fatalf("sent %d messages, want %d", len(model.messages), len(wantRoles))
	}
	for i, role := range wantRoles {
		if model.messages[i].Role != role {
			t.Errorf("message %d role = %s, want %s", i, model.messages[i].Role, role)
		}
	}
	if model.options.MaxTokens != 1024 || model.options.Temperature != 0.1 {
		t.Errorf("options = %+v", model.options)
	}
}

func TestLangChainClientErrors(t *testing.T) {
	tests := []struct {
		name     string
		model    *fakeModel
		wantKind Kind
	}{
		{"deadline", &fakeModel{err: context.DeadlineExceeded}, KindTimeout},
		{"canceled", &fakeModel{err: context.Canceled}, KindCanceled},
		{"transport", &fakeModel{err: errors.New("connection reset")}, KindNetwork},
		{"no choices", &fakeModel{resp: &llms.ContentResponse{}}, KindEmpty},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLangChainClientFromModel(tt.model, 10, 0).Complete(context.Background(), []Message{UserMessage("x")})
			if !IsKind(err, tt.wantKind) {
				t.Errorf("Complete() error = %v, want kind %s", err, tt.wantKind)
			}
		})
	}
}
