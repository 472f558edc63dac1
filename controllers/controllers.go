package controllers

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blogem/microsoft-login/middleware"
	"github.com/blogem/microsoft-login/network"
	"github.com/blogem/microsoft-login/services"
)

//go:embed templates/*.html
var templateFiles embed.FS

// renderTemplate creates a template set and renders it with the provided data
func renderTemplate(w http.ResponseWriter, pageTemplate string, data interface{}) error {
	return renderTemplateWithStatus(w, http.StatusOK, pageTemplate, data)
}

// renderTemplateWithStatus creates a template set and renders it with the provided data and status code
func renderTemplateWithStatus(w http.ResponseWriter, statusCode int, pageTemplate string, data interface{}) error {
	tmpl, err := template.ParseFS(templateFiles, "templates/layout.html", "templates/"+pageTemplate)
	if err != nil {
		http.Error(w, "Failed to parse template", http.StatusInternalServerError)
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)

	return tmpl.ExecuteTemplate(w, "layout.html", data)
}

// Controllers holds all controller instances
type Controllers struct {
	Auth    *AuthController
	Account *AccountController
}

// NewControllers creates and initializes all controller instances
func NewControllers(srvs *services.Services, networks *network.Registry) *Controllers {
	return &Controllers{
		Auth:    NewAuthController(networks, srvs.Login, srvs.Audit),
		Account: NewAccountController(srvs.Users, srvs.Audit),
	}
}

// Routes registers the user routes; the session middleware must already be installed
func (c *Controllers) Routes(r chi.Router) {
	r.Route("/user", func(r chi.Router) {
		r.Get("/login", c.Auth.LoginPage)
		r.Get("/login/{provider}", c.Auth.Redirect)
		r.Get("/login/{provider}/callback", c.Auth.Callback)
		r.Post("/logout", c.Auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Get("/", c.Account.Show)
		})
	})
}
