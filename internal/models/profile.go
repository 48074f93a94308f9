package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the identity record backing the session collaborator. The inbox
// core only reads email and display fields from it.
type Profile struct {
	ID             uuid.UUID `json:"id" db:"id"`
	Email          string    `json:"email" db:"email"`
	Username       string    `json:"username" db:"username"`
	AvatarURL      string    `json:"avatarUrl" db:"avatar_url"`
	HashedPassword string    `json:"-" db:"password_hash"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
}

// ActivityEntry records a dashboard activity item for a profile.
type ActivityEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProfileID uuid.UUID `json:"profileId" db:"profile_id"`
	Kind      string    `json:"kind" db:"kind"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Activity kinds written by the inbox core.
const (
	ActivityMessageSent     = "message_sent"
	ActivityMessageReceived = "message_received"
)
