// File: internal/repository/session/gorm_repository.go
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/iyunix/go-gemchat/internal/domain"
)

const maxSessionIDLength = 64

type gormSessionRepository struct {
	db     *gorm.DB
	logger Logger
}

// NewGormSessionRepository migrates the session tables and returns the repository.
func NewGormSessionRepository(db *gorm.DB, logger Logger) (SessionRepository, error) {
	if db == nil {
		return nil, errors.New("session repository: db is required")
	}
	if err := db.AutoMigrate(&domain.Session{}, &domain.Message{}); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return &gormSessionRepository{db: db, logger: logger}, nil
}

func (r *gormSessionRepository) Create(ctx context.Context, id string, initial ...domain.Message) (*domain.Session, error) {
	if err := validateSessionID(id); err != nil {
		return nil, err
	}

	sess := &domain.Session{ID: id}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sess).Error; err != nil {
			return err
		}
		return insertMessages(tx, id, initial)
	})
	if err != nil {
		r.logger.Error("database error creating session", "session_id", id, "error", err)
		return nil, errors.New("database error creating session")
	}

	r.logger.Debug("session created", "session_id", id, "initial_messages", len(initial))
	return sess, nil
}

func (r *gormSessionRepository) FindByID(ctx context.Context, id string) (*domain.Session, error) {
	if err := validateSessionID(id); err != nil {
		return nil, err
	}

	var sess domain.Session
	err := r.db.WithContext(ctx).First(&sess, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		r.logger.Error("database error finding session", "session_id", id, "error", err)
		return nil, errors.New("database error fetching session")
	}
	return &sess, nil
}

func (r *gormSessionRepository) Messages(ctx context.Context, id string) ([]domain.Message, error) {
	if err := validateSessionID(id); err != nil {
		return nil, err
	}

	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Where("session_id = ?", id).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		r.logger.Error("database error loading messages", "session_id", id, "error", err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func (r *gormSessionRepository) Append(ctx context.Context, id string, messages ...domain.Message) error {
	if err := validateSessionID(id); err != nil {
		return err
	}
	if len(messages) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Session{}).Where("id = ?", id).Update("updated_at", time.Now())
		if result.Error != nil {
			r.logger.Error("database error touching session", "session_id", id, "error", result.Error)
			return errors.New("database error updating session")
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		if err := insertMessages(tx, id, messages); err != nil {
			r.logger.Error("database error appending messages", "session_id", id, "error", err)
			return errors.New("database error saving messages")
		}
		return nil
	})
}

func (r *gormSessionRepository) Delete(ctx context.Context, id string) error {
	if err := validateSessionID(id); err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return errors.New("database error deleting messages")
		}
		result := tx.Where("id = ?", id).Delete(&domain.Session{})
		if result.Error != nil {
			return errors.New("database error deleting session")
		}
		if result.RowsAffected == 0 {
			return ErrSessionNotFound
		}
		return nil
	})
}

func insertMessages(tx *gorm.DB, id string, messages []domain.Message) error {
	if len(messages) == 0 {
		return nil
	}
	rows := make([]domain.Message, len(messages))
	for i, m := range messages {
		m.ID = 0
		m.SessionID = id
		rows[i] = m
	}
	return tx.Create(&rows).Error
}

func validateSessionID(id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("invalid session ID")
	}
	if len(id) > maxSessionIDLength {
		return fmt.Errorf("session ID exceeds %d characters", maxSessionIDLength)
	}
	return nil
}
