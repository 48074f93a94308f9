package database

import (
	"context"
	"database/sql"
	"fmt"

	"hivedesk/internal/models"

	"github.com/google/uuid"
)

// SaveMessage inserts a new message row.
func (p *PostgresDB) SaveMessage(ctx context.Context, msg *models.Message) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO messages (id, subject, body, sender_email, receiver_email, parent_id, created_at, is_read)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, msg.ID, msg.Subject, msg.Body, msg.SenderEmail, msg.ReceiverEmail, msg.ParentID, msg.CreatedAt, msg.IsRead)
	if err != nil {
		return fmt.Errorf("failed to save message: %v", err)
	}
	return nil
}

// GetMessage fetches a single message by id. Returns (nil, nil) when no row
// matches so callers can distinguish absence from failure.
func (p *PostgresDB) GetMessage(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	var msg models.Message
	err := p.DB.GetContext(ctx, &msg, `SELECT id, subject, body, sender_email, receiver_email, parent_id, created_at, is_read FROM messages WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %v", err)
	}
	return &msg, nil
}

// GetAllMessages loads every message row, used to hydrate actor state on start.
func (p *PostgresDB) GetAllMessages(ctx context.Context) ([]*models.Message, error) {
	var msgs []*models.Message
	err := p.DB.SelectContext(ctx, &msgs, `SELECT id, subject, body, sender_email, receiver_email, parent_id, created_at, is_read FROM messages ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %v", err)
	}
	return msgs, nil
}

// MarkMessageRead flips is_read to true. Idempotent; a second call matches the
// row again and is a no-op.
func (p *PostgresDB) MarkMessageRead(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `UPDATE messages SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark message read: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("message not found")
	}
	return nil
}

// DeleteMessage hard-deletes a message. Replies cascade via the parent_id
// foreign key.
func (p *PostgresDB) DeleteMessage(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %v", err)
	}
	if rows == 0 {
		return fmt.Errorf("message not found")
	}
	return nil
}
