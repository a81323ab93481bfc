// File: internal/services/ai/interface.go
package ai

import (
	"context"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// CompletionProvider answers a conversation with the next assistant turn.
type CompletionProvider interface {
	GetChatCompletion(ctx context.Context, model string, history []domain.Message) (string, error)
}

// ModelLister enumerates the models the API key can reach.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}
