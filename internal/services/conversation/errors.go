// File: internal/services/conversation/errors.go
package conversation

import "fmt"

type ErrorType string

const (
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeNotFound   ErrorType = "NOT_FOUND"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeStorage    ErrorType = "STORAGE"
)

type ConversationError struct {
	Type           ErrorType
	Operation      string
	Message        string
	ConversationID string
	Cause          error
}

func (e *ConversationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Conversation %s error in %s: %s (caused by: %v)",
			e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("Conversation %s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *ConversationError) Unwrap() error {
	return e.Cause
}

func newError(t ErrorType, operation, id, msg string, cause error) *ConversationError {
	return &ConversationError{Type: t, Operation: operation, ConversationID: id, Message: msg, Cause: cause}
}
