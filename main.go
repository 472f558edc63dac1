package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/blogem/microsoft-login/authenticator"
	"github.com/blogem/microsoft-login/config"
	"github.com/blogem/microsoft-login/controllers"
	"github.com/blogem/microsoft-login/database"
	"github.com/blogem/microsoft-login/network"
	"github.com/blogem/microsoft-login/repositories"
	"github.com/blogem/microsoft-login/services"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "err", err)
		os.Exit(1)
	}

	// Initialize database
	db, err := database.Initialize(cfg.DBPath)
	if err != nil {
		slog.Error("Failed to initialize database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Outbound client shared by every network, honouring the site proxy
	httpClient, err := authenticator.NewHTTPClient(cfg.HTTP.ProxyURL, cfg.HTTP.Timeout)
	if err != nil {
		slog.Error("Failed to build HTTP client", "err", err)
		os.Exit(1)
	}

	networks := network.NewRegistry(
		network.NewMicrosoft(cfg.Microsoft, cfg.CallbackURL(authenticator.MicrosoftProviderName), httpClient),
	)

	repos := repositories.NewRepositories(db)
	srvs := services.NewServices(repos, cfg.PostLoginPath)
	ctrl := controllers.NewControllers(srvs, networks)

	r, err := setupRouter(cfg, ctrl)
	if err != nil {
		slog.Error("Failed to setup router", "err", err)
		os.Exit(1)
	}

	slog.Info("Microsoft login starting", "port", cfg.Port, "base_url", cfg.BaseURL, "db", cfg.DBPath)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		slog.Error("Server stopped", "err", err)
		os.Exit(1)
	}
}

// setupRouter configures all routes
func setupRouter(cfg *config.Config, ctrl *controllers.Controllers) (*chi.Mux, error) {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second)) // token exchange and profile fetch happen inside the callback

	lifetime := int64(cfg.SessionLifetime / time.Second)
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:       "memory",
		ProviderConfig: "",
		CookieName:     "microsoft_login_session",
		Secure:         cfg.UseHTTPS,
		Gclifetime:     lifetime,
		Maxlifetime:    lifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session: %w", err)
	}
	r.Use(sessionHandler)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/user", http.StatusSeeOther)
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, `{"status": "healthy", "service": "microsoft-login"}`)
	})

	ctrl.Routes(r)

	return r, nil
}
