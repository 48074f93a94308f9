package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single inbox entry, either a top-level message or a reply.
type Message struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	Subject       string     `json:"subject" db:"subject"`
	Body          string     `json:"body" db:"body"`
	SenderEmail   string     `json:"senderEmail" db:"sender_email"`
	ReceiverEmail string     `json:"receiverEmail" db:"receiver_email"`
	ParentID      *uuid.UUID `json:"parentId,omitempty" db:"parent_id"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	IsRead        bool       `json:"isRead" db:"is_read"`

	// CorrelationID is a client-generated token echoed back on send so the
	// client can replace its optimistic entry. Never persisted.
	CorrelationID string `json:"correlationId,omitempty" db:"-"`

	// Sender display fields, resolved from the profile directory at read time.
	SenderName   string `json:"senderName,omitempty" db:"-"`
	SenderAvatar string `json:"senderAvatar,omitempty" db:"-"`

	Replies []*Message `json:"replies,omitempty" db:"-"`
	Parent  *Message   `json:"parent,omitempty" db:"-"`
}

// MessageEvent is the lightweight payload published on the fan-out channel
// after a message is persisted.
type MessageEvent struct {
	ID            uuid.UUID `json:"id"`
	CorrelationID string    `json:"correlationId,omitempty"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	SenderEmail   string    `json:"senderEmail"`
	ReceiverEmail string    `json:"receiverEmail"`
	CreatedAt     time.Time `json:"createdAt"`
}
