package database

import (
	"context"
	"fmt"

	"hivedesk/internal/models"
	"hivedesk/internal/utils"

	"github.com/google/uuid"
)

// SaveNote creates or updates a note owned by a profile.
func (p *PostgresDB) SaveNote(ctx context.Context, note *models.Note) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO notes (id, owner_id, title, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    body = EXCLUDED.body,
		    updated_at = EXCLUDED.updated_at
	`, note.ID, note.OwnerID, note.Title, note.Body, note.CreatedAt, note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save note: %v", err)
	}
	return nil
}

// GetNotesByOwner lists notes for a profile, most recently updated first.
func (p *PostgresDB) GetNotesByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Note, error) {
	var notes []*models.Note
	err := p.DB.SelectContext(ctx, &notes, `
		SELECT id, owner_id, title, body, created_at, updated_at
		FROM notes WHERE owner_id = $1 ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %v", err)
	}
	return notes, nil
}

// DeleteNote removes a note; the owner check is part of the WHERE clause so a
// caller can never delete another profile's note.
func (p *PostgresDB) DeleteNote(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	return p.deleteOwned(ctx, "notes", id, ownerID)
}

// SaveEvent creates or updates a calendar event.
func (p *PostgresDB) SaveEvent(ctx context.Context, event *models.Event) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO events (id, owner_id, title, starts_at, ends_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    starts_at = EXCLUDED.starts_at,
		    ends_at = EXCLUDED.ends_at
	`, event.ID, event.OwnerID, event.Title, event.StartsAt, event.EndsAt, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save event: %v", err)
	}
	return nil
}

// GetEventsByOwner lists calendar events for a profile in start order.
func (p *PostgresDB) GetEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Event, error) {
	var events []*models.Event
	err := p.DB.SelectContext(ctx, &events, `
		SELECT id, owner_id, title, starts_at, ends_at, created_at
		FROM events WHERE owner_id = $1 ORDER BY starts_at ASC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get events: %v", err)
	}
	return events, nil
}

func (p *PostgresDB) DeleteEvent(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	return p.deleteOwned(ctx, "events", id, ownerID)
}

// SaveTask creates or updates a task.
func (p *PostgresDB) SaveTask(ctx context.Context, task *models.Task) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO tasks (id, owner_id, title, done, due_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    done = EXCLUDED.done,
		    due_at = EXCLUDED.due_at
	`, task.ID, task.OwnerID, task.Title, task.Done, task.DueAt, task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save task: %v", err)
	}
	return nil
}

// GetTasksByOwner lists tasks for a profile, open tasks first.
func (p *PostgresDB) GetTasksByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Task, error) {
	var tasks []*models.Task
	err := p.DB.SelectContext(ctx, &tasks, `
		SELECT id, owner_id, title, done, due_at, created_at
		FROM tasks WHERE owner_id = $1 ORDER BY done ASC, created_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get tasks: %v", err)
	}
	return tasks, nil
}

// SetTaskDone updates a task's completion flag.
func (p *PostgresDB) SetTaskDone(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, done bool) error {
	result, err := p.DB.ExecContext(ctx, `UPDATE tasks SET done = $1 WHERE id = $2 AND owner_id = $3`, done, id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to update task: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %v", err)
	}
	if rows == 0 {
		return utils.NewNotFoundError("task")
	}
	return nil
}

func (p *PostgresDB) DeleteTask(ctx context.Context, id uuid.UUID, ownerID uuid.UUID) error {
	return p.deleteOwned(ctx, "tasks", id, ownerID)
}

func (p *PostgresDB) deleteOwned(ctx context.Context, table string, id uuid.UUID, ownerID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND owner_id = $2`, table), id, ownerID)
	if err != nil {
		return fmt.Errorf("failed to delete from %s: %v", table, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %v", err)
	}
	if rows == 0 {
		return utils.NewNotFoundError("item")
	}
	return nil
}
