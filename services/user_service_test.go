package services

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/microsoft-login/database"
	"github.com/blogem/microsoft-login/models"
	"github.com/blogem/microsoft-login/repositories"
)

func setupUserService(t *testing.T) (UserService, *repositories.Repositories) {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repos := repositories.NewRepositories(db)
	return NewUserService(repos.Users, repos.SocialAuth, "/welcome"), repos
}

func newRequest() *models.AuthenticateRequest {
	return &models.AuthenticateRequest{
		PluginID:    "microsoft",
		Name:        "Ada Lovelace",
		Email:       "ada@example.com",
		ExternalID:  "ms-42",
		AccessToken: "access-1",
		IsNew:       true,
		ExtraData:   map[string]interface{}{"profile": map[string]interface{}{"id": "ms-42"}},
	}
}

func TestUserService_NewAccount(t *testing.T) {
	ctx := context.Background()
	svc, repos := setupUserService(t)

	exists, err := svc.CheckIfUserExists(ctx, "microsoft", "ms-42")
	require.NoError(t, err)
	assert.False(t, exists)

	result, err := svc.Authenticate(ctx, newRequest())
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, "/welcome", result.RedirectTo)
	assert.Equal(t, "Ada Lovelace", result.User.Name)

	exists, err = svc.CheckIfUserExists(ctx, "microsoft", "ms-42")
	require.NoError(t, err)
	assert.True(t, exists)

	identity, err := repos.SocialAuth.GetByProviderUserID(ctx, "microsoft", "ms-42")
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, identity.UserID)
	assert.Contains(t, identity.AdditionalData, "profile")

	user, err := svc.GetUser(ctx, result.User.ID)
	require.NoError(t, err)
	assert.NotNil(t, user.LastLoginAt)
}

func TestUserService_ReturningUser(t *testing.T) {
	ctx := context.Background()
	svc, repos := setupUserService(t)

	first, err := svc.Authenticate(ctx, newRequest())
	require.NoError(t, err)

	req := newRequest()
	req.IsNew = false
	req.ExtraData = nil
	req.AccessToken = "access-2"
	req.Destination = "/user/settings"

	second, err := svc.Authenticate(ctx, req)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "/user/settings", second.RedirectTo)

	identity, err := repos.SocialAuth.GetByProviderUserID(ctx, "microsoft", "ms-42")
	require.NoError(t, err)
	assert.Equal(t, "access-2", identity.Token)
}

func TestUserService_LinksExistingEmail(t *testing.T) {
	ctx := context.Background()
	svc, repos := setupUserService(t)

	existing := &models.User{Name: "Ada", Email: "ADA@example.com"}
	require.NoError(t, repos.Users.Create(ctx, existing))

	result, err := svc.Authenticate(ctx, newRequest())
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, existing.ID, result.User.ID)

	identities, err := svc.GetIdentities(ctx, existing.ID)
	require.NoError(t, err)
	require.Len(t, identities, 1)
	assert.Equal(t, "ms-42", identities[0].ProviderUserID)
}

func TestUserService_BlockedUser(t *testing.T) {
	ctx := context.Background()
	svc, repos := setupUserService(t)

	require.NoError(t, repos.Users.Create(ctx, &models.User{Name: "Ada", Email: "ada@example.com", Blocked: true}))

	_, err := svc.Authenticate(ctx, newRequest())
	require.ErrorIs(t, err, ErrUserBlocked)

	exists, err := svc.CheckIfUserExists(ctx, "microsoft", "ms-42")
	require.NoError(t, err)
	assert.False(t, exists, "blocked user must not get an identity")
}

func TestUserService_Validation(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupUserService(t)

	req := newRequest()
	req.Email = ""
	_, err := svc.Authenticate(ctx, req)
	require.ErrorIs(t, err, ErrMissingEmail)

	req = newRequest()
	req.ExternalID = ""
	_, err = svc.Authenticate(ctx, req)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "External ID is required")

	req = newRequest()
	req.Destination = "https://evil.example"
	_, err = svc.Authenticate(ctx, req)
	require.Error(t, err)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Ada", displayName(&models.AuthenticateRequest{Name: " Ada "}))
	assert.Equal(t, "ada", displayName(&models.AuthenticateRequest{Email: "ada@example.com"}))
	assert.Equal(t, "microsoft user", displayName(&models.AuthenticateRequest{PluginID: "microsoft"}))
}
