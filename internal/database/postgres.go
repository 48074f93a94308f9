package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hivedesk/internal/models"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Store defines the persistence operations the rest of the application depends
// on. Actors and handlers accept this interface so tests can run without a
// live PostgreSQL instance.
type Store interface {
	// Connection
	Close(ctx context.Context) error

	// Message methods
	SaveMessage(ctx context.Context, msg *models.Message) error
	GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error)
	GetAllMessages(ctx context.Context) ([]*models.Message, error)
	MarkMessageRead(ctx context.Context, id uuid.UUID) error
	DeleteMessage(ctx context.Context, id uuid.UUID) error

	// Profile methods
	SaveProfile(ctx context.Context, profile *models.Profile) error
	GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfilePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error
	UpdateProfileAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error

	// Activity methods
	SaveActivity(ctx context.Context, entry *models.ActivityEntry) error
	GetActivityByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]*models.ActivityEntry, error)

	// Workspace methods
	SaveNote(ctx context.Context, note *models.Note) error
	GetNotesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Note, error)
	DeleteNote(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	SaveEvent(ctx context.Context, event *models.Event) error
	GetEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
	SaveTask(ctx context.Context, task *models.Task) error
	GetTasksByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error)
	SetTaskDone(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, done bool) error
	DeleteTask(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error
}

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	DB *sqlx.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %v", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Ping the database to verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %v", err)
	}

	slog.Info("connected to PostgreSQL")

	return &PostgresDB{
		DB: db,
	}, nil
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	slog.Info("closing PostgreSQL connection")
	return p.DB.Close()
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			id UUID PRIMARY KEY,
			email VARCHAR(100) UNIQUE NOT NULL,
			username VARCHAR(50) NOT NULL,
			avatar_url VARCHAR(255) NOT NULL DEFAULT '',
			password_hash VARCHAR(100) NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create profiles table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			subject TEXT NOT NULL,
			body TEXT NOT NULL,
			sender_email VARCHAR(100) NOT NULL,
			receiver_email VARCHAR(100) NOT NULL,
			parent_id UUID REFERENCES messages(id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			is_read BOOLEAN DEFAULT FALSE NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_messages_receiver
		ON messages (receiver_email, created_at DESC)
	`)
	if err != nil {
		return fmt.Errorf("failed to create messages index: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS activity (
			id UUID PRIMARY KEY,
			profile_id UUID NOT NULL,
			kind VARCHAR(50) NOT NULL,
			detail TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create activity table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS notes (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create notes table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS events (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			title TEXT NOT NULL,
			starts_at TIMESTAMP WITH TIME ZONE NOT NULL,
			ends_at TIMESTAMP WITH TIME ZONE NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create events table: %v", err)
	}

	_, err = p.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id UUID PRIMARY KEY,
			owner_id UUID NOT NULL,
			title TEXT NOT NULL,
			done BOOLEAN DEFAULT FALSE NOT NULL,
			due_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create tasks table: %v", err)
	}

	return nil
}
