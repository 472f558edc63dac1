package models

import (
	"strings"
	"time"
)

// User is a local account
type User struct {
	ID          int64      `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	Email       string     `json:"email" db:"email"`
	Blocked     bool       `json:"blocked" db:"blocked"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
}

// SocialAuthIdentity links a local user to an account on a network
type SocialAuthIdentity struct {
	ID             int64                  `json:"id" db:"id"`
	UserID         int64                  `json:"user_id" db:"user_id"`
	PluginID       string                 `json:"plugin_id" db:"plugin_id"`
	ProviderUserID string                 `json:"provider_user_id" db:"provider_user_id"`
	Token          string                 `json:"-" db:"token"`
	AdditionalData map[string]interface{} `json:"additional_data,omitempty" db:"additional_data"`
	CreatedAt      time.Time              `json:"created_at" db:"created_at"`
	ChangedAt      time.Time              `json:"changed_at" db:"changed_at"`
}

// AuthenticateRequest is what a network hands over after a successful callback
type AuthenticateRequest struct {
	PluginID    string
	Name        string
	Email       string
	ExternalID  string
	AccessToken string
	// IsNew is set when no identity exists yet for ExternalID.
	IsNew bool
	// ExtraData is only collected for new accounts.
	ExtraData map[string]interface{}
	// Destination is the local path requested before login, if any.
	Destination string
}

// Validate validates the request data
func (r *AuthenticateRequest) Validate() []string {
	var errors []string

	if r.PluginID == "" {
		errors = append(errors, "Plugin ID is required")
	}
	if r.ExternalID == "" {
		errors = append(errors, "External ID is required")
	}
	if r.Email != "" && !isValidEmail(r.Email) {
		errors = append(errors, "Email format is invalid")
	}
	if r.Destination != "" && (!strings.HasPrefix(r.Destination, "/") || strings.HasPrefix(r.Destination, "//")) {
		errors = append(errors, "Destination must be a local path")
	}

	return errors
}

// AuthenticateResult is returned by user provisioning
type AuthenticateResult struct {
	User       *User
	Created    bool
	RedirectTo string
}
