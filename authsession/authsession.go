// Package authsession keeps the short-lived login state in the user's session:
// the OAuth2 state token and access token of the current attempt, the logged
// in user and one pending notice for the login page.
package authsession

import (
	"net/http"

	"gitea.com/go-chi/session"

	"github.com/blogem/microsoft-login/models"
)

// Session keys
const (
	StateKey       = "oauth2state"
	AccessTokenKey = "access_token"

	userIDKey      = "user_id"
	userNameKey    = "user_name"
	destinationKey = "redirect_after_login"
	noticeKey      = "notice"
)

// Values is the subset of a session store used here
type Values interface {
	Set(key, value interface{}) error
	Get(key interface{}) interface{}
	Delete(key interface{}) error
}

// FromRequest returns the session attached by the session middleware
func FromRequest(r *http.Request) Values {
	return session.GetSession(r)
}

// Regenerate issues a new session ID for the request and returns the session
// bound to it. Call it when the privilege level changes, before writing the user.
func Regenerate(w http.ResponseWriter, r *http.Request) (Values, error) {
	if _, err := session.RegenerateSession(w, r); err != nil {
		return nil, err
	}
	return session.GetSession(r), nil
}

// Attempt is the state of one login attempt between redirect and callback
type Attempt struct {
	State       string
	AccessToken string
}

// LoadAttempt reads the current attempt from the session
func LoadAttempt(v Values) Attempt {
	return Attempt{
		State:       getString(v, StateKey),
		AccessToken: getString(v, AccessTokenKey),
	}
}

// Save writes the non-empty fields of the attempt to the session
func (a Attempt) Save(v Values) error {
	if a.State != "" {
		if err := v.Set(StateKey, a.State); err != nil {
			return err
		}
	}
	if a.AccessToken != "" {
		if err := v.Set(AccessTokenKey, a.AccessToken); err != nil {
			return err
		}
	}
	return nil
}

// ClearAttempt removes both transient keys of the attempt
func ClearAttempt(v Values) {
	_ = v.Delete(StateKey)
	_ = v.Delete(AccessTokenKey)
}

// SetNotice stores a notice shown on the next login page render
func SetNotice(v Values, notice models.FlashMessage) {
	_ = v.Set(noticeKey, notice)
}

// PopNotice returns and clears the pending notice
func PopNotice(v Values) *models.FlashMessage {
	notice, ok := v.Get(noticeKey).(models.FlashMessage)
	if !ok {
		return nil
	}
	_ = v.Delete(noticeKey)
	return &notice
}

// SetUser marks the session as logged in
func SetUser(v Values, user *models.User) error {
	if err := v.Set(userIDKey, user.ID); err != nil {
		return err
	}
	return v.Set(userNameKey, user.Name)
}

// UserID returns the logged in user ID
func UserID(v Values) (int64, bool) {
	id, ok := v.Get(userIDKey).(int64)
	return id, ok && id > 0
}

// ClearUser logs the session out
func ClearUser(v Values) {
	_ = v.Delete(userIDKey)
	_ = v.Delete(userNameKey)
}

// SetDestination stores the path to return to after login
func SetDestination(v Values, path string) {
	_ = v.Set(destinationKey, path)
}

// Destination returns the stored destination without clearing it
func Destination(v Values) string {
	return getString(v, destinationKey)
}

// PopDestination returns and clears the stored destination
func PopDestination(v Values) string {
	dest := Destination(v)
	if dest != "" {
		_ = v.Delete(destinationKey)
	}
	return dest
}

func getString(v Values, key string) string {
	s, _ := v.Get(key).(string)
	return s
}
