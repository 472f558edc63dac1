package services

import (
	"errors"

	"github.com/blogem/microsoft-login/models"
)

// Login failure kinds. Every error returned by LoginService wraps one of these.
var (
	ErrConfiguration    = errors.New("network is not configured properly")
	ErrUserCancelled    = errors.New("user cancelled authentication")
	ErrStateMismatch    = errors.New("invalid oauth2 state")
	ErrIdentityProvider = errors.New("identity provider rejected the authorization code")
	ErrProfileFetch     = errors.New("could not load profile")
	ErrProvisioning     = errors.New("user provisioning failed")
	// ErrInternal covers failures of the service itself, such as the session store.
	ErrInternal = errors.New("internal error")
)

// User provisioning errors
var (
	ErrUserBlocked  = errors.New("user account is blocked")
	ErrMissingEmail = errors.New("an email address is required to create an account")
)

// Outcome classifies a login error for the audit log
func Outcome(err error) models.AuthOutcome {
	switch {
	case err == nil:
		return models.OutcomeSuccess
	case errors.Is(err, ErrConfiguration):
		return models.OutcomeConfigurationError
	case errors.Is(err, ErrUserCancelled):
		return models.OutcomeUserCancelled
	case errors.Is(err, ErrStateMismatch):
		return models.OutcomeStateMismatch
	case errors.Is(err, ErrIdentityProvider):
		return models.OutcomeProviderError
	case errors.Is(err, ErrProfileFetch):
		return models.OutcomeProfileError
	case errors.Is(err, ErrProvisioning):
		return models.OutcomeProvisioningError
	default:
		return models.OutcomeInternalError
	}
}
