// internal/model/template.go
package model

import (
	"fmt"
	"time"
)

// Channel is the transport a template is bound to. The dispatch engine
// switches exhaustively on it, so adding a channel is a compile-visible
// change rather than a stringly-typed one.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

func ParseChannel(s string) (Channel, error) {
	switch Channel(s) {
	case ChannelEmail, ChannelSMS:
		return Channel(s), nil
	}
	return "", fmt.Errorf("unknown channel %q", s)
}

type Template struct {
	ID        int        `db:"id" json:"id"`
	UserID    int        `db:"user_id" json:"user_id"`
	Title     string     `db:"title" json:"title"`
	Content   string     `db:"content" json:"content"`
	Type      Channel    `db:"type" json:"type"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}
