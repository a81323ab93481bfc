// File: internal/repository/chat/gorm_repository.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/iyunix/go-gemchat/internal/domain"
)

// chatRow is the table shape; ID keeps insertion order.
type chatRow struct {
	ID    uint   `gorm:"primarykey"`
	Title string `gorm:"not null"`
	Date  string `gorm:"not null;size:40"`
}

func (chatRow) TableName() string {
	return "chat_records"
}

type gormChatRepository struct {
	db     *gorm.DB
	logger Logger
	// sqlite allows a single writer; serializing here keeps Update a true
	// read-modify-write instead of relying on busy retries.
	mu sync.Mutex
}

// NewGormChatRepository stores the list in a table and migrates it on creation.
func NewGormChatRepository(db *gorm.DB, logger Logger) (ChatRepository, error) {
	if db == nil {
		return nil, errors.New("chat repository: db is required")
	}
	if err := db.AutoMigrate(&chatRow{}); err != nil {
		return nil, fmt.Errorf("migrate chat records: %w", err)
	}
	return &gormChatRepository{db: db, logger: logger}, nil
}

func (r *gormChatRepository) Load(ctx context.Context) ([]domain.ChatRecord, bool, error) {
	return r.load(r.db.WithContext(ctx))
}

func (r *gormChatRepository) Save(ctx context.Context, records []domain.ChatRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.replace(tx, records)
	})
}

func (r *gormChatRepository) Update(ctx context.Context, fn UpdateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, found, err := r.load(tx)
		if err != nil {
			return err
		}
		next, err := fn(current, found)
		if err != nil {
			return err
		}
		if isAppendOf(current, next) {
			return r.insert(tx, next[len(current):])
		}
		return r.replace(tx, next)
	})
}

func (r *gormChatRepository) load(db *gorm.DB) ([]domain.ChatRecord, bool, error) {
	var rows []chatRow
	if err := db.Order("id ASC").Find(&rows).Error; err != nil {
		r.logger.Error("database error loading chat list", "error", err)
		return nil, false, errors.New("database error loading chats")
	}
	if len(rows) == 0 {
		return nil, false, nil
	}
	records := make([]domain.ChatRecord, len(rows))
	for i, row := range rows {
		records[i] = domain.ChatRecord{Title: row.Title, Date: row.Date}
	}
	return records, true, nil
}

func (r *gormChatRepository) replace(tx *gorm.DB, records []domain.ChatRecord) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&chatRow{}).Error; err != nil {
		r.logger.Error("database error clearing chat list", "error", err)
		return errors.New("database error saving chats")
	}
	return r.insert(tx, records)
}

func (r *gormChatRepository) insert(tx *gorm.DB, records []domain.ChatRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]chatRow, len(records))
	for i, rec := range records {
		rows[i] = chatRow{Title: rec.Title, Date: rec.Date}
	}
	if err := tx.CreateInBatches(rows, 100).Error; err != nil {
		r.logger.Error("database error inserting chats", "count", len(rows), "error", err)
		return errors.New("database error saving chats")
	}
	return nil
}

// isAppendOf reports whether next is current with records added at the end.
func isAppendOf(current, next []domain.ChatRecord) bool {
	if len(next) < len(current) {
		return false
	}
	for i := range current {
		if current[i] != next[i] {
			return false
		}
	}
	return true
}
