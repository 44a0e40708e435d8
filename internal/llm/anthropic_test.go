package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"excel-interviewer/internal/config"
)

func TestAnthropicClientComplete(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "{\"is_correct\": false}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	cfg := newTestConfig(srv.URL)
	cfg.Provider = config.ProviderAnthropic
	client := NewAnthropicClient(cfg)

	got, err := client.Complete(context.Background(), []Message{
		SystemMessage("You are an Excel interviewer"),
		UserMessage("answer"),
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if got != `{"is_correct": false}` {
		t.Errorf("Complete() = %q", got)
	}

	if _, ok := body["system"]; !ok {
		t.Error("system prompt was not sent as a top-level field")
	}
	msgs, _ := body["messages"].([]interface{})
	if len(msgs) != 1 {
		t.Errorf("sent %d messages, want 1", len(msgs))
	}
}

func TestAnthropicClientNoRetryOnError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
	}))
	defer srv.Close()

	cfg := newTestConfig(srv.URL)
	cfg.Provider = config.ProviderAnthropic

	_, err := NewAnthropicClient(cfg).Complete(context.Background(), []Message{UserMessage("x")})
	if !IsKind(err, KindStatus) {
		t.Errorf("Complete() error = %v, want status", err)
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("server called %d times, want exactly 1", n)
	}
}
