package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/blogem/microsoft-login/models"
)

// SocialAuthRepository interface defines network identity database operations
type SocialAuthRepository interface {
	GetByProviderUserID(ctx context.Context, pluginID, providerUserID string) (*models.SocialAuthIdentity, error)
	ListByUser(ctx context.Context, userID int64) ([]models.SocialAuthIdentity, error)
	Create(ctx context.Context, identity *models.SocialAuthIdentity) error
	UpdateToken(ctx context.Context, id int64, token string) error
}

type socialAuthRepository struct {
	db *sql.DB
}

// NewSocialAuthRepository creates a new social auth repository
func NewSocialAuthRepository(db *sql.DB) SocialAuthRepository {
	return &socialAuthRepository{db: db}
}

const identityColumns = `id, user_id, plugin_id, provider_user_id, token, additional_data, created_at, changed_at`

// GetByProviderUserID retrieves the identity for an account on a network
func (r *socialAuthRepository) GetByProviderUserID(ctx context.Context, pluginID, providerUserID string) (*models.SocialAuthIdentity, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM social_auth WHERE plugin_id = ? AND provider_user_id = ?`,
		pluginID, providerUserID,
	)

	identity, err := scanIdentity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return identity, err
}

// ListByUser retrieves every identity linked to a user
func (r *socialAuthRepository) ListByUser(ctx context.Context, userID int64) ([]models.SocialAuthIdentity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+identityColumns+` FROM social_auth WHERE user_id = ? ORDER BY plugin_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query identities: %w", err)
	}
	defer rows.Close()

	var identities []models.SocialAuthIdentity
	for rows.Next() {
		identity, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		identities = append(identities, *identity)
	}
	return identities, rows.Err()
}

// Create inserts a new identity and sets its ID
func (r *socialAuthRepository) Create(ctx context.Context, identity *models.SocialAuthIdentity) error {
	var additional sql.NullString
	if len(identity.AdditionalData) > 0 {
		data, err := json.Marshal(identity.AdditionalData)
		if err != nil {
			return fmt.Errorf("failed to encode additional data: %w", err)
		}
		additional = sql.NullString{String: string(data), Valid: true}
	}

	now := time.Now().UTC()
	identity.CreatedAt, identity.ChangedAt = now, now

	result, err := r.db.ExecContext(ctx, `
		INSERT INTO social_auth (user_id, plugin_id, provider_user_id, token, additional_data, created_at, changed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, identity.UserID, identity.PluginID, identity.ProviderUserID, identity.Token, additional, now, now)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get identity ID: %w", err)
	}
	identity.ID = id
	return nil
}

// UpdateToken replaces the stored access token
func (r *socialAuthRepository) UpdateToken(ctx context.Context, id int64, token string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE social_auth SET token = ?, changed_at = ? WHERE id = ?`, token, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update identity token: %w", err)
	}
	return expectOneRow(result)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanIdentity(s scanner) (*models.SocialAuthIdentity, error) {
	var identity models.SocialAuthIdentity
	var additional sql.NullString

	err := s.Scan(
		&identity.ID,
		&identity.UserID,
		&identity.PluginID,
		&identity.ProviderUserID,
		&identity.Token,
		&additional,
		&identity.CreatedAt,
		&identity.ChangedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan identity: %w", err)
	}

	if additional.Valid && additional.String != "" {
		if err := json.Unmarshal([]byte(additional.String), &identity.AdditionalData); err != nil {
			return nil, fmt.Errorf("failed to decode additional data: %w", err)
		}
	}
	return &identity, nil
}
