package chat

import (
	"context"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// UpdateFunc receives the current list and whether anything was stored yet,
// and returns the list to persist.
type UpdateFunc func(records []domain.ChatRecord, found bool) ([]domain.ChatRecord, error)

// ChatRepository persists the flat chat list.
type ChatRepository interface {
	// Load returns the stored list. found is false when nothing has been stored.
	Load(ctx context.Context) (records []domain.ChatRecord, found bool, err error)
	Save(ctx context.Context, records []domain.ChatRecord) error
	// Update runs a read-modify-write cycle that no other Save or Update can interleave with.
	Update(ctx context.Context, fn UpdateFunc) error
}

// Logger defines the logging interface used by the repositories
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}
