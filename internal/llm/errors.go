package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind классифицирует сбой обращения к модели
type Kind string

const (
	KindNetwork   Kind = "network"
	KindTimeout   Kind = "timeout"
	KindCanceled  Kind = "canceled"
	KindAuth      Kind = "auth"
	KindStatus    Kind = "status"
	KindMalformed Kind = "malformed"
	KindEmpty     Kind = "empty"
)

// Error возвращается всеми реализациями Completer
type Error struct {
	Provider string
	Kind     Kind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s error (status %d): %v", e.Provider, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind сообщает, относится ли err к указанному типу сбоя
func IsKind(err error, kind Kind) bool {
	var llmErr *Error
	return errors.As(err, &llmErr) && llmErr.Kind == kind
}

// classify оборачивает транспортную ошибку в *Error
func classify(provider string, err error) *Error {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	kind := KindNetwork
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.Is(err, context.Canceled):
		kind = KindCanceled
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}

	return &Error{Provider: provider, Kind: kind, Err: err}
}

// statusKind выбирает Kind по HTTP статусу ответа
func statusKind(status int) Kind {
	if status == 401 || status == 403 {
		return KindAuth
	}
	return KindStatus
}
