package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/blogem/microsoft-login/authenticator"
	"github.com/blogem/microsoft-login/authsession"
	"github.com/blogem/microsoft-login/models"
	"github.com/blogem/microsoft-login/network"
)

// UserProvisioner creates or loads the local account for an external identity
type UserProvisioner interface {
	CheckIfUserExists(ctx context.Context, pluginID, externalID string) (bool, error)
	Authenticate(ctx context.Context, req *models.AuthenticateRequest) (*models.AuthenticateResult, error)
}

// CallbackParams are the query parameters the provider redirects back with
type CallbackParams struct {
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// LoginRedirect is where the browser is sent to authenticate
type LoginRedirect struct {
	URL   string
	State string
}

// LoginResult is the outcome of a successful callback
type LoginResult struct {
	*models.AuthenticateResult
	Profile *authenticator.Profile
}

// LoginService interface defines the OAuth2 login flow
type LoginService interface {
	// Begin builds the authorization URL with a fresh state token.
	Begin(ctx context.Context, net network.Network) (*LoginRedirect, error)

	// Complete validates the callback against attempt and logs the user in.
	// The access token is written to attempt as soon as it is obtained.
	Complete(ctx context.Context, net network.Network, params CallbackParams, attempt *authsession.Attempt, destination string) (*LoginResult, error)
}

type loginService struct {
	users UserProvisioner
}

// NewLoginService creates a new login service
func NewLoginService(users UserProvisioner) LoginService {
	return &loginService{users: users}
}

// Begin builds the authorization URL with a fresh state token
func (s *loginService) Begin(ctx context.Context, net network.Network) (*LoginRedirect, error) {
	provider, err := s.sdk(ctx, net)
	if err != nil {
		return nil, err
	}

	state, err := GenerateState()
	if err != nil {
		return nil, fmt.Errorf("%w: generate state: %w", ErrInternal, err)
	}

	return &LoginRedirect{
		URL:   provider.GetAuthURL(state),
		State: state,
	}, nil
}

// Complete validates the callback against attempt and logs the user in
func (s *loginService) Complete(ctx context.Context, net network.Network, params CallbackParams, attempt *authsession.Attempt, destination string) (*LoginResult, error) {
	if params.Error != "" {
		slog.Info("User did not authorize login", "network", net.ID(), "error", params.Error, "description", params.ErrorDescription)
		return nil, fmt.Errorf("%w: %s", ErrUserCancelled, params.Error)
	}

	provider, err := s.sdk(ctx, net)
	if err != nil {
		return nil, err
	}

	if !statesMatch(attempt.State, params.State) {
		slog.Warn("OAuth2 state mismatch", "network", net.ID(), "has_stored_state", attempt.State != "")
		return nil, ErrStateMismatch
	}

	token, err := provider.ExchangeCode(ctx, params.Code)
	if err != nil {
		logProviderError(net.ID(), err)
		return nil, fmt.Errorf("%w: %w", ErrIdentityProvider, err)
	}
	attempt.AccessToken = token.AccessToken

	profile, err := provider.GetResourceOwner(ctx, token)
	if err != nil {
		slog.Error("Failed to load profile", "network", net.ID(), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrProfileFetch, err)
	}

	exists, err := s.users.CheckIfUserExists(ctx, net.ID(), profile.ID)
	if err != nil {
		slog.Error("Failed to look up identity", "network", net.ID(), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	req := &models.AuthenticateRequest{
		PluginID:    net.ID(),
		Name:        profile.Name,
		Email:       profile.Email,
		ExternalID:  profile.ID,
		AccessToken: token.AccessToken,
		IsNew:       !exists,
		Destination: destination,
	}
	if req.IsNew {
		req.ExtraData = collectExtraData(ctx, net, provider, token, profile)
	}

	result, err := s.users.Authenticate(ctx, req)
	if err != nil {
		slog.Error("Failed to authenticate user", "network", net.ID(), "external_id", profile.ID, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrProvisioning, err)
	}

	slog.Info("User logged in", "network", net.ID(), "user_id", result.User.ID, "created", result.Created)
	return &LoginResult{AuthenticateResult: result, Profile: profile}, nil
}

func (s *loginService) sdk(ctx context.Context, net network.Network) (authenticator.Provider, error) {
	provider, err := net.SDK(ctx)
	if err != nil {
		slog.Error("Network client could not be created", "network", net.ID(), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return provider, nil
}

// collectExtraData gathers the raw profile and the configured API endpoints
// for a new account. Failing endpoints are skipped.
func collectExtraData(ctx context.Context, net network.Network, provider authenticator.Provider, token *authenticator.Token, profile *authenticator.Profile) map[string]interface{} {
	extra := map[string]interface{}{}
	if len(profile.Raw) > 0 {
		extra["profile"] = profile.Raw
	}

	for _, endpoint := range net.Endpoints() {
		data, err := provider.RequestEndpoint(ctx, token, http.MethodGet, endpoint.Path)
		if err != nil {
			slog.Error("There was an error when requesting endpoint", "network", net.ID(), "path", endpoint.Path, "err", err)
			continue
		}
		extra[endpoint.Name] = data
	}

	if len(extra) == 0 {
		return nil
	}
	return extra
}

func logProviderError(networkID string, err error) {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		slog.Error("There was an error during authentication",
			"network", networkID,
			"error_code", re.ErrorCode,
			"error_description", re.ErrorDescription,
			"status", status,
		)
		return
	}
	slog.Error("There was an error during authentication", "network", networkID, "err", err)
}

// statesMatch compares the stored and returned state tokens; both must be set
func statesMatch(stored, returned string) bool {
	if stored == "" || returned == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(stored), []byte(returned)) == 1
}

// GenerateState generates a random state value for CSRF protection
func GenerateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
