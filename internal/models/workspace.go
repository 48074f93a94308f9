package models

import (
	"time"

	"github.com/google/uuid"
)

// Note is a free-form dashboard note owned by a single profile.
type Note struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"ownerId" db:"owner_id"`
	Title     string    `json:"title" db:"title"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Event is a calendar entry owned by a single profile.
type Event struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OwnerID   uuid.UUID `json:"ownerId" db:"owner_id"`
	Title     string    `json:"title" db:"title"`
	StartsAt  time.Time `json:"startsAt" db:"starts_at"`
	EndsAt    time.Time `json:"endsAt" db:"ends_at"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Task is a to-do item owned by a single profile.
type Task struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	OwnerID   uuid.UUID  `json:"ownerId" db:"owner_id"`
	Title     string     `json:"title" db:"title"`
	Done      bool       `json:"done" db:"done"`
	DueAt     *time.Time `json:"dueAt,omitempty" db:"due_at"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
