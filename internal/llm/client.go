package llm

import "context"

// Роли сообщений в чате с моделью
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message - одно сообщение диалога
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer отправляет диалог модели и возвращает текст ответа.
// Один вызов Complete - ровно один HTTP запрос, без повторов.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

func SystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
