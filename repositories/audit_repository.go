package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/blogem/microsoft-login/models"
)

// AuditRepository handles authentication event persistence
type AuditRepository interface {
	Create(ctx context.Context, event *models.AuthEvent) error
	ListByIdentity(ctx context.Context, pluginID, externalID string, limit int) ([]models.AuthEvent, error)
}

type sqliteAuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) AuditRepository {
	return &sqliteAuditRepository{db: db}
}

// Create inserts a new authentication event
func (r *sqliteAuditRepository) Create(ctx context.Context, event *models.AuthEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO auth_events (timestamp, plugin_id, outcome, external_id, user_agent, ip_address)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx,
		query,
		event.Timestamp,
		event.PluginID,
		string(event.Outcome),
		event.ExternalID,
		event.UserAgent,
		event.IPAddress,
	)
	if err != nil {
		return fmt.Errorf("failed to create auth event: %w", err)
	}

	event.ID, err = result.LastInsertId()
	return err
}

// ListByIdentity returns the latest events of one external account, newest first
func (r *sqliteAuditRepository) ListByIdentity(ctx context.Context, pluginID, externalID string, limit int) ([]models.AuthEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, plugin_id, outcome, external_id, user_agent, ip_address
		FROM auth_events
		WHERE plugin_id = ? AND external_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, pluginID, externalID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query auth events: %w", err)
	}
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]models.AuthEvent, error) {
	defer rows.Close()

	var events []models.AuthEvent
	for rows.Next() {
		var event models.AuthEvent
		var outcome string
		if err := rows.Scan(&event.ID, &event.Timestamp, &event.PluginID, &outcome,
			&event.ExternalID, &event.UserAgent, &event.IPAddress); err != nil {
			return nil, fmt.Errorf("failed to scan auth event: %w", err)
		}
		event.Outcome = models.AuthOutcome(outcome)
		events = append(events, event)
	}
	return events, rows.Err()
}
