package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blogem/microsoft-login/models"
	"github.com/blogem/microsoft-login/repositories"
)

// UserService interface defines account provisioning business logic
type UserService interface {
	UserProvisioner
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetIdentities(ctx context.Context, userID int64) ([]models.SocialAuthIdentity, error)
}

// userService implements UserService interface
type userService struct {
	users         repositories.UserRepository
	identities    repositories.SocialAuthRepository
	postLoginPath string
	now           func() time.Time
}

// NewUserService creates a new user service
func NewUserService(users repositories.UserRepository, identities repositories.SocialAuthRepository, postLoginPath string) UserService {
	if postLoginPath == "" {
		postLoginPath = "/user"
	}
	return &userService{
		users:         users,
		identities:    identities,
		postLoginPath: postLoginPath,
		now:           time.Now,
	}
}

// CheckIfUserExists reports whether an identity exists for the external ID
func (s *userService) CheckIfUserExists(ctx context.Context, pluginID, externalID string) (bool, error) {
	_, err := s.identities.GetByProviderUserID(ctx, pluginID, externalID)
	if errors.Is(err, repositories.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Authenticate loads, links or creates the user for the identity and logs them in
func (s *userService) Authenticate(ctx context.Context, req *models.AuthenticateRequest) (*models.AuthenticateResult, error) {
	if errs := req.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", strings.Join(errs, ", "))
	}

	identity, err := s.identities.GetByProviderUserID(ctx, req.PluginID, req.ExternalID)
	switch {
	case err == nil:
		return s.loginExisting(ctx, identity, req)
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}

	user, created, err := s.findOrCreateUser(ctx, req)
	if err != nil {
		return nil, err
	}
	if user.Blocked {
		return nil, ErrUserBlocked
	}

	identity = &models.SocialAuthIdentity{
		UserID:         user.ID,
		PluginID:       req.PluginID,
		ProviderUserID: req.ExternalID,
		Token:          req.AccessToken,
		AdditionalData: req.ExtraData,
	}
	if err := s.identities.Create(ctx, identity); err != nil {
		return nil, err
	}

	return s.finishLogin(ctx, user, created, req)
}

// GetUser retrieves a user by ID
func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, fmt.Errorf("invalid user ID: %d", id)
	}
	return s.users.GetByID(ctx, id)
}

// GetIdentities lists the networks linked to a user
func (s *userService) GetIdentities(ctx context.Context, userID int64) ([]models.SocialAuthIdentity, error) {
	return s.identities.ListByUser(ctx, userID)
}

func (s *userService) loginExisting(ctx context.Context, identity *models.SocialAuthIdentity, req *models.AuthenticateRequest) (*models.AuthenticateResult, error) {
	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %d: %w", identity.UserID, err)
	}
	if user.Blocked {
		return nil, ErrUserBlocked
	}

	if identity.Token != req.AccessToken {
		if err := s.identities.UpdateToken(ctx, identity.ID, req.AccessToken); err != nil {
			return nil, err
		}
	}

	return s.finishLogin(ctx, user, false, req)
}

// findOrCreateUser links to an existing account with the same email or creates a new one
func (s *userService) findOrCreateUser(ctx context.Context, req *models.AuthenticateRequest) (*models.User, bool, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up user by email: %w", err)
	}

	if req.Email == "" {
		return nil, false, ErrMissingEmail
	}

	user = &models.User{
		Name:  displayName(req),
		Email: req.Email,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func (s *userService) finishLogin(ctx context.Context, user *models.User, created bool, req *models.AuthenticateRequest) (*models.AuthenticateResult, error) {
	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, err
	}

	redirect := req.Destination
	if redirect == "" {
		redirect = s.postLoginPath
	}

	return &models.AuthenticateResult{
		User:       user,
		Created:    created,
		RedirectTo: redirect,
	}, nil
}

// displayName falls back to the email's local part when the profile has no name
func displayName(req *models.AuthenticateRequest) string {
	if name := strings.TrimSpace(req.Name); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(req.Email, "@"); ok && local != "" {
		return local
	}
	return req.PluginID + " user"
}
