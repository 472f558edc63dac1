package models

import "time"

// AuthOutcome is the terminal result of a login callback
type AuthOutcome string

const (
	OutcomeSuccess            AuthOutcome = "success"
	OutcomeConfigurationError AuthOutcome = "configuration_error"
	OutcomeUserCancelled      AuthOutcome = "user_cancelled"
	OutcomeStateMismatch      AuthOutcome = "state_mismatch"
	OutcomeProviderError      AuthOutcome = "identity_provider_error"
	OutcomeProfileError       AuthOutcome = "profile_fetch_error"
	OutcomeProvisioningError  AuthOutcome = "provisioning_error"
	OutcomeInternalError      AuthOutcome = "internal_error"
)

// AuthEvent records one login callback
type AuthEvent struct {
	ID         int64
	Timestamp  time.Time
	PluginID   string
	Outcome    AuthOutcome
	ExternalID string
	UserAgent  string
	IPAddress  string
}
