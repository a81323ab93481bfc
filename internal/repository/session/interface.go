package session

import (
	"context"
	"errors"

	"github.com/iyunix/go-gemchat/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionRepository persists conversations and their turns.
type SessionRepository interface {
	Create(ctx context.Context, id string, initial ...domain.Message) (*domain.Session, error)
	FindByID(ctx context.Context, id string) (*domain.Session, error)
	Messages(ctx context.Context, id string) ([]domain.Message, error)
	// Append stores the turns in one transaction and touches the session.
	Append(ctx context.Context, id string, messages ...domain.Message) error
	Delete(ctx context.Context, id string) error
}

// Logger defines the logging interface used by the repositories
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
