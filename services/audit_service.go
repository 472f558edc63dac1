package services

import (
	"context"
	"log/slog"
	"slices"

	"github.com/blogem/microsoft-login/models"
	"github.com/blogem/microsoft-login/repositories"
)

// AuditService records authentication attempts
type AuditService interface {
	// Record stores the event; failures are logged and never returned.
	Record(ctx context.Context, event *models.AuthEvent)
	// ForIdentities returns the latest events of the given external accounts, newest first.
	ForIdentities(ctx context.Context, identities []models.SocialAuthIdentity, limit int) ([]models.AuthEvent, error)
}

type auditService struct {
	repo repositories.AuditRepository
}

// NewAuditService creates a new audit service
func NewAuditService(repo repositories.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) Record(ctx context.Context, event *models.AuthEvent) {
	if err := s.repo.Create(ctx, event); err != nil {
		slog.Error("Failed to record auth event", "outcome", event.Outcome, "err", err)
	}
}

func (s *auditService) ForIdentities(ctx context.Context, identities []models.SocialAuthIdentity, limit int) ([]models.AuthEvent, error) {
	if limit <= 0 {
		limit = 10
	}

	var events []models.AuthEvent
	for _, identity := range identities {
		found, err := s.repo.ListByIdentity(ctx, identity.PluginID, identity.ProviderUserID, limit)
		if err != nil {
			return nil, err
		}
		events = append(events, found...)
	}

	slices.SortStableFunc(events, func(a, b models.AuthEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	if len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}
