package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/microsoft-login/authsession"
	"github.com/blogem/microsoft-login/middleware"
	"github.com/blogem/microsoft-login/models"
	"github.com/blogem/microsoft-login/network"
	"github.com/blogem/microsoft-login/services"
)

// AuthController handles login through the registered networks
type AuthController struct {
	networks *network.Registry
	login    services.LoginService
	audit    services.AuditService
}

// NewAuthController creates a new auth controller
func NewAuthController(networks *network.Registry, login services.LoginService, audit services.AuditService) *AuthController {
	return &AuthController{
		networks: networks,
		login:    login,
		audit:    audit,
	}
}

// LoginPage handles GET /user/login
func (ac *AuthController) LoginPage(w http.ResponseWriter, r *http.Request) {
	sess := authsession.FromRequest(r)
	if _, ok := authsession.UserID(sess); ok {
		http.Redirect(w, r, "/user", http.StatusSeeOther)
		return
	}

	renderTemplate(w, "login.html", models.PageData{
		Title:        "Log in",
		CurrentPage:  "login",
		FlashMessage: authsession.PopNotice(sess),
		Data:         ac.networks.All(),
	})
}

// Redirect handles GET /user/login/{provider} and sends the user to the provider
func (ac *AuthController) Redirect(w http.ResponseWriter, r *http.Request) {
	net, ok := ac.network(w, r)
	if !ok {
		return
	}
	sess := authsession.FromRequest(r)

	redirect, err := ac.login.Begin(r.Context(), net)
	if err != nil {
		ac.fail(w, r, sess, net, err)
		return
	}

	// A new attempt replaces whatever the previous one left behind
	authsession.ClearAttempt(sess)
	if err := (authsession.Attempt{State: redirect.State}).Save(sess); err != nil {
		ac.fail(w, r, sess, net, fmt.Errorf("%w: %w", services.ErrInternal, err))
		return
	}

	http.Redirect(w, r, redirect.URL, http.StatusFound)
}

// Callback handles GET /user/login/{provider}/callback
func (ac *AuthController) Callback(w http.ResponseWriter, r *http.Request) {
	net, ok := ac.network(w, r)
	if !ok {
		return
	}
	sess := authsession.FromRequest(r)

	// The state token is single use
	attempt := authsession.LoadAttempt(sess)
	_ = sess.Delete(authsession.StateKey)

	query := r.URL.Query()
	params := services.CallbackParams{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	result, err := ac.login.Complete(r.Context(), net, params, &attempt, authsession.Destination(sess))
	if err != nil {
		ac.fail(w, r, sess, net, err)
		return
	}

	// New session ID once logged in
	sess, err = authsession.Regenerate(w, r)
	if err != nil {
		ac.fail(w, r, authsession.FromRequest(r), net, fmt.Errorf("%w: regenerate session: %w", services.ErrInternal, err))
		return
	}

	attempt.State = ""
	if err := attempt.Save(sess); err != nil {
		ac.fail(w, r, sess, net, fmt.Errorf("%w: %w", services.ErrInternal, err))
		return
	}
	if err := authsession.SetUser(sess, result.User); err != nil {
		ac.fail(w, r, sess, net, fmt.Errorf("%w: %w", services.ErrInternal, err))
		return
	}
	authsession.PopDestination(sess)

	ac.record(r, net, models.OutcomeSuccess, result.Profile.ID)
	http.Redirect(w, r, result.RedirectTo, http.StatusSeeOther)
}

// Logout handles POST /user/logout
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	sess := authsession.FromRequest(r)
	authsession.ClearUser(sess)
	authsession.ClearAttempt(sess)
	authsession.SetNotice(sess, models.FlashMessage{Type: models.FlashInfo, Message: "You have been logged out."})

	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

// network resolves the {provider} route parameter, answering 404 when unknown
func (ac *AuthController) network(w http.ResponseWriter, r *http.Request) (network.Network, bool) {
	net, ok := ac.networks.Get(chi.URLParam(r, "provider"))
	if !ok {
		http.NotFound(w, r)
	}
	return net, ok
}

// fail purges the attempt, queues a notice and returns to the login page
func (ac *AuthController) fail(w http.ResponseWriter, r *http.Request, sess authsession.Values, net network.Network, err error) {
	authsession.ClearAttempt(sess)
	authsession.SetNotice(sess, noticeFor(net, err))

	ac.record(r, net, services.Outcome(err), "")
	http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
}

func (ac *AuthController) record(r *http.Request, net network.Network, outcome models.AuthOutcome, externalID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 5*time.Second)
	defer cancel()

	ac.audit.Record(ctx, &models.AuthEvent{
		PluginID:   net.ID(),
		Outcome:    outcome,
		ExternalID: externalID,
		UserAgent:  r.UserAgent(),
		IPAddress:  getIPAddress(r),
	})
}

// noticeFor maps a login error to the message shown to the user.
// Provider details never reach the page.
func noticeFor(net network.Network, err error) models.FlashMessage {
	name := net.Name()
	switch {
	case errors.Is(err, services.ErrConfiguration):
		return models.FlashMessage{Type: models.FlashError, Message: "Login with " + name + " is not configured properly. Contact site administrator."}
	case errors.Is(err, services.ErrUserCancelled):
		return models.FlashMessage{Type: models.FlashInfo, Message: "You could not be authenticated."}
	case errors.Is(err, services.ErrStateMismatch):
		return models.FlashMessage{Type: models.FlashError, Message: name + " login failed. Invalid OAuth2 state."}
	case errors.Is(err, services.ErrProfileFetch):
		return models.FlashMessage{Type: models.FlashError, Message: name + " login failed, could not load " + name + " profile. Contact site administrator."}
	case errors.Is(err, services.ErrUserBlocked):
		return models.FlashMessage{Type: models.FlashError, Message: "Your account is blocked. Contact site administrator."}
	default:
		return models.FlashMessage{Type: models.FlashError, Message: name + " login failed. Contact site administrator."}
	}
}
