package database

import (
	"context"
	"fmt"

	"hivedesk/internal/models"

	"github.com/google/uuid"
)

// SaveActivity appends a dashboard activity entry.
func (p *PostgresDB) SaveActivity(ctx context.Context, entry *models.ActivityEntry) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO activity (id, profile_id, kind, detail, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, entry.ID, entry.ProfileID, entry.Kind, entry.Detail, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save activity entry: %v", err)
	}
	return nil
}

// GetActivityByProfile returns the most recent activity entries for a profile.
func (p *PostgresDB) GetActivityByProfile(ctx context.Context, profileID uuid.UUID, limit int) ([]*models.ActivityEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	var entries []*models.ActivityEntry
	err := p.DB.SelectContext(ctx, &entries, `
		SELECT id, profile_id, kind, detail, created_at
		FROM activity
		WHERE profile_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, profileID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %v", err)
	}
	return entries, nil
}
