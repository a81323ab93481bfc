// File: internal/domain/session.go
package domain

import "time"

// Message roles understood by the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session is one conversation with the language model.
type Session struct {
	ID        string `gorm:"primaryKey;size:64"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single turn inside a session.
type Message struct {
	ID        uint      `json:"-" gorm:"primarykey"`
	SessionID string    `json:"-" gorm:"index;not null;size:64"`
	Role      string    `json:"role" gorm:"not null"`
	Content   string    `json:"content" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
}
