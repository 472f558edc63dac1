package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/microsoft-login/database"
	"github.com/blogem/microsoft-login/models"
	"github.com/blogem/microsoft-login/repositories"
)

func TestAuditService_ForIdentities(t *testing.T) {
	ctx := context.Background()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	svc := NewAuditService(repositories.NewAuditRepository(db))

	base := time.Now().UTC().Add(-time.Hour)
	record := func(offset time.Duration, externalID string, outcome models.AuthOutcome) {
		svc.Record(ctx, &models.AuthEvent{
			Timestamp:  base.Add(offset),
			PluginID:   "microsoft",
			ExternalID: externalID,
			Outcome:    outcome,
		})
	}
	record(1*time.Minute, "ms-42", models.OutcomeSuccess)
	record(2*time.Minute, "ms-other", models.OutcomeSuccess)
	record(3*time.Minute, "entra-9", models.OutcomeProfileError)
	record(4*time.Minute, "ms-42", models.OutcomeSuccess)

	identities := []models.SocialAuthIdentity{
		{PluginID: "microsoft", ProviderUserID: "ms-42"},
		{PluginID: "microsoft", ProviderUserID: "entra-9"},
	}

	events, err := svc.ForIdentities(ctx, identities, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "ms-42", events[0].ExternalID)
	assert.Equal(t, "entra-9", events[1].ExternalID)
	assert.Equal(t, "ms-42", events[2].ExternalID)

	events, err = svc.ForIdentities(ctx, identities, 2)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	events, err = svc.ForIdentities(ctx, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, events)
}
