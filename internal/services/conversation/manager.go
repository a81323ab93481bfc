// File: internal/services/conversation/manager.go
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/google/uuid"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository/session"
	"github.com/iyunix/go-gemchat/internal/services/ai"
)

const (
	maxConversationIDLength = 64
	defaultCacheSize        = 128
)

// Logger defines the logging interface used by the conversation manager
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

type Config struct {
	Model        string
	SystemPrompt string
	CacheSize    int
}

// Reply is the assistant's answer within a conversation.
type Reply struct {
	ConversationID string
	Text           string
}

// Manager owns per-conversation history. Each conversation is keyed by its ID
// and sends to the same conversation are serialized.
type Manager struct {
	config   Config
	sessions session.SessionRepository
	provider ai.CompletionProvider
	logger   Logger
	locks    *keyedMutex
	now      func() time.Time
	newID    func() string

	cacheMu sync.Mutex
	cache   *lru.Cache
}

func NewManager(config Config, sessions session.SessionRepository, provider ai.CompletionProvider, logger Logger) (*Manager, error) {
	if sessions == nil {
		return nil, newError(ErrTypeValidation, "constructor", "", "session repository is required", nil)
	}
	if provider == nil {
		return nil, newError(ErrTypeValidation, "constructor", "", "completion provider is required", nil)
	}
	if logger == nil {
		return nil, newError(ErrTypeValidation, "constructor", "", "logger is required", nil)
	}
	if config.CacheSize <= 0 {
		config.CacheSize = defaultCacheSize
	}

	return &Manager{
		config:   config,
		sessions: sessions,
		provider: provider,
		logger:   logger,
		locks:    newKeyedMutex(),
		now:      time.Now,
		newID:    uuid.NewString,
		cache:    lru.New(config.CacheSize),
	}, nil
}

// Send appends prompt to the conversation and returns the model's answer.
// An empty conversationID starts a new conversation. When the model call
// fails nothing is stored, so the user may simply retry. A new conversation
// is only persisted together with its first answered turn.
func (m *Manager) Send(ctx context.Context, conversationID, prompt string) (*Reply, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, newError(ErrTypeValidation, "send", conversationID, "prompt cannot be empty", nil)
	}
	if conversationID == "" {
		conversationID = m.newID()
	}
	if err := validateID(conversationID); err != nil {
		return nil, newError(ErrTypeValidation, "send", conversationID, err.Error(), nil)
	}

	unlock := m.locks.Lock(conversationID)
	defer unlock()

	history, isNew, err := m.loadOrStart(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	userMsg := domain.Message{Role: domain.RoleUser, Content: prompt, CreatedAt: m.now()}
	turn := make([]domain.Message, 0, len(history)+2)
	turn = append(turn, history...)
	turn = append(turn, userMsg)

	text, err := m.provider.GetChatCompletion(ctx, m.config.Model, turn)
	if err != nil {
		m.logger.Error("completion failed", "conversation_id", conversationID, "new", isNew, "error", err)
		return nil, newError(ErrTypeProvider, "send", conversationID, "language model request failed", err)
	}

	assistantMsg := domain.Message{Role: domain.RoleAssistant, Content: text, CreatedAt: m.now()}
	full := append(turn, assistantMsg)
	if isNew {
		if _, err := m.sessions.Create(ctx, conversationID, full...); err != nil {
			return nil, newError(ErrTypeStorage, "send", conversationID, "could not start conversation", err)
		}
		m.logger.Info("conversation started", "conversation_id", conversationID)
	} else if err := m.sessions.Append(ctx, conversationID, userMsg, assistantMsg); err != nil {
		m.forget(conversationID)
		return nil, newError(ErrTypeStorage, "send", conversationID, "could not save conversation", err)
	}
	m.remember(conversationID, full)

	m.logger.Info("conversation turn completed",
		"conversation_id", conversationID,
		"turns", len(full),
		"reply_length", len(text),
	)
	return &Reply{ConversationID: conversationID, Text: text}, nil
}

// History returns the visible turns of a conversation, without the system prompt.
func (m *Manager) History(ctx context.Context, conversationID string) ([]domain.Message, error) {
	if err := validateID(conversationID); err != nil {
		return nil, newError(ErrTypeValidation, "history", conversationID, err.Error(), nil)
	}

	unlock := m.locks.Lock(conversationID)
	defer unlock()

	msgs, err := m.load(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	visible := make([]domain.Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.Role != domain.RoleSystem {
			visible = append(visible, msg)
		}
	}
	return visible, nil
}

// Reset deletes a conversation and its history.
func (m *Manager) Reset(ctx context.Context, conversationID string) error {
	if err := validateID(conversationID); err != nil {
		return newError(ErrTypeValidation, "reset", conversationID, err.Error(), nil)
	}

	unlock := m.locks.Lock(conversationID)
	defer unlock()

	m.forget(conversationID)
	if err := m.sessions.Delete(ctx, conversationID); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return newError(ErrTypeNotFound, "reset", conversationID, "conversation not found", err)
		}
		return newError(ErrTypeStorage, "reset", conversationID, "could not delete conversation", err)
	}
	m.logger.Info("conversation reset", "conversation_id", conversationID)
	return nil
}

// load reads an existing conversation; callers must hold its lock.
func (m *Manager) load(ctx context.Context, id string) ([]domain.Message, error) {
	if cached, ok := m.recall(id); ok {
		return cached, nil
	}

	if _, err := m.sessions.FindByID(ctx, id); err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, newError(ErrTypeNotFound, "load", id, "conversation not found", err)
		}
		return nil, newError(ErrTypeStorage, "load", id, "could not load conversation", err)
	}

	msgs, err := m.sessions.Messages(ctx, id)
	if err != nil {
		return nil, newError(ErrTypeStorage, "load", id, "could not load conversation", err)
	}
	m.remember(id, msgs)
	return msgs, nil
}

// loadOrStart returns the stored history, or for an unknown conversation the
// in-memory opening messages. Nothing is written here.
func (m *Manager) loadOrStart(ctx context.Context, id string) ([]domain.Message, bool, error) {
	msgs, err := m.load(ctx, id)
	if err == nil {
		return msgs, false, nil
	}
	var convErr *ConversationError
	if !errors.As(err, &convErr) || convErr.Type != ErrTypeNotFound {
		return nil, false, err
	}

	var initial []domain.Message
	if m.config.SystemPrompt != "" {
		initial = append(initial, domain.Message{Role: domain.RoleSystem, Content: m.config.SystemPrompt, CreatedAt: m.now()})
	}
	return initial, true, nil
}

func (m *Manager) recall(id string) ([]domain.Message, bool) {
	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()

	v, ok := m.cache.Get(id)
	if !ok {
		return nil, false
	}
	msgs := v.([]domain.Message)
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out, true
}

func (m *Manager) remember(id string, msgs []domain.Message) {
	stored := make([]domain.Message, len(msgs))
	copy(stored, msgs)

	m.cacheMu.Lock()
	m.cache.Add(id, stored)
	m.cacheMu.Unlock()
}

func (m *Manager) forget(id string) {
	m.cacheMu.Lock()
	m.cache.Remove(id)
	m.cacheMu.Unlock()
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("conversation ID cannot be empty")
	}
	if len(id) > maxConversationIDLength {
		return errors.New("conversation ID is too long")
	}
	return nil
}
