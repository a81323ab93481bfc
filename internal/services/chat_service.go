// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/repository/chat"
	"github.com/iyunix/go-gemchat/internal/services/history"
)

// ChatService serves the flat chat list and its date-grouped view.
type ChatService struct {
	repo   chat.ChatRepository
	logger Logger
	now    func() time.Time
}

func NewChatService(repo chat.ChatRepository, logger Logger) (*ChatService, error) {
	if repo == nil {
		return nil, NewValidationError("constructor", "chat repository is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &ChatService{repo: repo, logger: logger, now: time.Now}, nil
}

// SetClock replaces the time source; used by tests and tools.
func (s *ChatService) SetClock(now func() time.Time) {
	s.now = now
}

// ExampleChats is the list shown before anything has been stored.
func ExampleChats(now time.Time) []domain.ChatRecord {
	return []domain.ChatRecord{
		domain.NewChatRecord("Chat today", now),
		domain.NewChatRecord("Chat yesterday", now.AddDate(0, 0, -1)),
		domain.NewChatRecord("Chat 5 days ago", now.AddDate(0, 0, -5)),
		domain.NewChatRecord("Chat 20 days ago", now.AddDate(0, 0, -20)),
	}
}

// ListChats returns the stored list, or the example list when the store is empty.
func (s *ChatService) ListChats(ctx context.Context) ([]domain.ChatRecord, error) {
	records, found, err := s.repo.Load(ctx)
	if err != nil {
		s.logger.Error("failed to load chats", "error", err)
		return nil, NewStorageError("list_chats", "could not load chats", err)
	}
	return s.withFallback(records, found), nil
}

// CreateChat appends "Chat #n" stamped with the current time. The example list
// is persisted along with the first new chat.
func (s *ChatService) CreateChat(ctx context.Context) (domain.ChatRecord, error) {
	var created domain.ChatRecord
	err := s.repo.Update(ctx, func(records []domain.ChatRecord, found bool) ([]domain.ChatRecord, error) {
		records = s.withFallback(records, found)
		created = domain.NewChatRecord(fmt.Sprintf("Chat #%d", len(records)+1), s.now())
		return append(records, created), nil
	})
	if err != nil {
		s.logger.Error("failed to create chat", "error", err)
		return domain.ChatRecord{}, NewStorageError("create_chat", "could not create chat", err)
	}

	s.logger.Info("chat created", "title", created.Title, "date", created.Date)
	return created, nil
}

// GetChatHistory groups the chat list into relative date buckets.
func (s *ChatService) GetChatHistory(ctx context.Context) (history.Grouped, error) {
	records, err := s.ListChats(ctx)
	if err != nil {
		return nil, err
	}

	grouped, err := history.Group(s.now(), records)
	if err != nil {
		var perr *history.ParseError
		if errors.As(err, &perr) {
			s.logger.Error("chat store holds an unreadable date", "index", perr.Index, "title", perr.Title, "value", perr.Value)
		}
		return nil, &ChatError{Type: ErrTypeCorruptStore, Operation: "get_chat_history", Message: "chat store contains a malformed date", Cause: err}
	}
	return grouped, nil
}

func (s *ChatService) withFallback(records []domain.ChatRecord, found bool) []domain.ChatRecord {
	if !found {
		return ExampleChats(s.now())
	}
	if records == nil {
		return []domain.ChatRecord{}
	}
	return records
}
