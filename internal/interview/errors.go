package interview

import "errors"

var (
	ErrAlreadyStarted     = errors.New("interview already started")
	ErrNotAwaitingAnswer  = errors.New("interview is not waiting for an answer")
	ErrEmptyAnswer        = errors.New("answer is empty")
	ErrAnswerTooLong      = errors.New("answer is too long (max 4000 characters)")
	ErrSummaryUnavailable = errors.New("summary is not available")
	ErrSessionNotFound    = errors.New("session not found")
	ErrBusy               = errors.New("previous answer is still being evaluated")
)
