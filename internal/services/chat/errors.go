// File: internal/services/chat/errors.go
package chat

import (
	"errors"
	"fmt"
)

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeStorage    ErrorType = "STORAGE"
)

// Sentinels for errors.Is. A *ChatError matches the sentinel of its Type.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	ErrStorage         = errors.New("storage failure")
)

type ChatError struct {
	Type      ErrorType
	Operation string
	Message   string
	ChatID    uint
	Cause     error
}

func (e *ChatError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("chat %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("chat %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ChatError) Unwrap() error { return e.Cause }

func (e *ChatError) Is(target error) bool {
	switch target {
	case ErrInvalidArgument:
		return e.Type == ErrTypeValidation
	case ErrNotFound:
		return e.Type == ErrTypeNotFound
	case ErrStorage:
		return e.Type == ErrTypeStorage
	}
	return false
}

func NewValidationError(operation, msg string) *ChatError {
	return &ChatError{Type: ErrTypeValidation, Operation: operation, Message: msg}
}

func NewConfigError(msg string) *ChatError {
	return &ChatError{Type: ErrTypeConfig, Operation: "config", Message: msg}
}

func NewNotFoundError(operation string, chatID uint) *ChatError {
	return &ChatError{Type: ErrTypeNotFound, Operation: operation, Message: "chat not found", ChatID: chatID}
}

func NewStorageError(operation, msg string, cause error) *ChatError {
	return &ChatError{Type: ErrTypeStorage, Operation: operation, Message: msg, Cause: cause}
}

// AsChatError extracts a *ChatError from err's chain.
func AsChatError(err error) (*ChatError, bool) {
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
