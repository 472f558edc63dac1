package controllers

import (
	"log/slog"
	"net/http"

	"github.com/blogem/microsoft-login/models"
	"github.com/blogem/microsoft-login/services"
	"github.com/blogem/microsoft-login/userctx"
)

const recentEventsLimit = 10

// AccountController handles the logged in user's page
type AccountController struct {
	users services.UserService
	audit services.AuditService
}

// NewAccountController creates a new account controller
func NewAccountController(users services.UserService, audit services.AuditService) *AccountController {
	return &AccountController{users: users, audit: audit}
}

// Show handles GET /user
func (c *AccountController) Show(w http.ResponseWriter, r *http.Request) {
	userID := userctx.GetUserID(r.Context())

	user, err := c.users.GetUser(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to load account", "user_id", userID, "err", err)
		http.Error(w, "Failed to load account", http.StatusInternalServerError)
		return
	}

	identities, err := c.users.GetIdentities(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to load connected accounts", "user_id", userID, "err", err)
		http.Error(w, "Failed to load account", http.StatusInternalServerError)
		return
	}

	events, err := c.audit.ForIdentities(r.Context(), identities, recentEventsLimit)
	if err != nil {
		// the page is still useful without the history
		slog.Error("Failed to load sign-in history", "user_id", userID, "err", err)
	}

	renderTemplate(w, "account.html", models.PageData{
		Title:       user.Name,
		CurrentPage: "account",
		Data: struct {
			User       *models.User
			Identities []models.SocialAuthIdentity
			Events     []models.AuthEvent
		}{user, identities, events},
	})
}
