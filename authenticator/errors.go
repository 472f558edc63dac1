package authenticator

import "errors"

var (
	ErrMissingClientID     = errors.New("client ID is required")
	ErrMissingClientSecret = errors.New("client secret is required")
	ErrMissingRedirectURL  = errors.New("redirect URL is required")
	ErrMissingIssuer       = errors.New("issuer is required")

	ErrMissingCode        = errors.New("authorization code is missing")
	ErrMissingAccessToken = errors.New("access token is missing")
	ErrTokenExchange      = errors.New("token exchange failed")
	ErrNoIDToken          = errors.New("no id_token in token")
	ErrEmptyProfile       = errors.New("provider returned an empty profile")
	ErrRequestFailed      = errors.New("provider request failed")
	ErrDecodeFailed       = errors.New("failed to decode provider response")
)

// IsConfigError reports whether err comes from missing provider configuration
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingClientID) ||
		errors.Is(err, ErrMissingClientSecret) ||
		errors.Is(err, ErrMissingRedirectURL) ||
		errors.Is(err, ErrMissingIssuer)
}
