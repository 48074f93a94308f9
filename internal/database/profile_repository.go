package database

import (
	"context"
	"database/sql"
	"fmt"

	"hivedesk/internal/models"
	"hivedesk/internal/utils"

	"github.com/google/uuid"
)

// SaveProfile creates or updates a profile row.
func (p *PostgresDB) SaveProfile(ctx context.Context, profile *models.Profile) error {
	_, err := p.DB.ExecContext(ctx, `
		INSERT INTO profiles (id, email, username, avatar_url, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET email = EXCLUDED.email,
		    username = EXCLUDED.username,
		    avatar_url = EXCLUDED.avatar_url,
		    password_hash = EXCLUDED.password_hash
	`, profile.ID, profile.Email, profile.Username, profile.AvatarURL, profile.HashedPassword, profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save profile: %v", err)
	}
	return nil
}

// GetProfileByEmail looks up a profile by its unique email.
func (p *PostgresDB) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	err := p.DB.GetContext(ctx, &profile, `SELECT id, email, username, avatar_url, password_hash, created_at FROM profiles WHERE email = $1`, email)
	if err == sql.ErrNoRows {
		return nil, utils.NewNotFoundError("profile")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile by email: %v", err)
	}
	return &profile, nil
}

// GetProfileByID fetches a profile by id.
func (p *PostgresDB) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	err := p.DB.GetContext(ctx, &profile, `SELECT id, email, username, avatar_url, password_hash, created_at FROM profiles WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return nil, utils.NewNotFoundError("profile")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %v", err)
	}
	return &profile, nil
}

// UpdateProfilePassword replaces the stored password hash.
func (p *PostgresDB) UpdateProfilePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	result, err := p.DB.ExecContext(ctx, `UPDATE profiles SET password_hash = $1 WHERE id = $2`, hashedPassword, id)
	if err != nil {
		return fmt.Errorf("failed to update password: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %v", err)
	}
	if rows == 0 {
		return utils.NewNotFoundError("profile")
	}
	return nil
}

// UpdateProfileAvatar stores the public URL for an uploaded display picture.
func (p *PostgresDB) UpdateProfileAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	result, err := p.DB.ExecContext(ctx, `UPDATE profiles SET avatar_url = $1 WHERE id = $2`, avatarURL, id)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %v", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %v", err)
	}
	if rows == 0 {
		return utils.NewNotFoundError("profile")
	}
	return nil
}
