package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the service configuration read from the environment
type Config struct {
	Port            string        `env:"PORT"             envDefault:"8080"`
	BaseURL         string        `env:"BASE_URL"         envDefault:"http://localhost:8080"`
	DBPath          string        `env:"DB_PATH"          envDefault:"microsoft_login.db"`
	UseHTTPS        bool          `env:"USE_HTTPS"        envDefault:"false"`
	SessionLifetime time.Duration `env:"SESSION_LIFETIME" envDefault:"1h"`
	PostLoginPath   string        `env:"POST_LOGIN_PATH"  envDefault:"/user"`

	Microsoft MicrosoftSettings
	HTTP      HTTPSettings
}

// MicrosoftSettings holds the Microsoft network settings
type MicrosoftSettings struct {
	AppID     string `env:"MICROSOFT_APP_ID"`
	AppSecret string `env:"MICROSOFT_APP_SECRET"`
	// Scopes is the raw comma-separated list of extra scopes.
	Scopes string `env:"MICROSOFT_SCOPES"`
	// Endpoints is the raw list of "path|name" Graph endpoints.
	Endpoints string `env:"MICROSOFT_ENDPOINTS"`
	// Tenant selects the OpenID Connect variant when set.
	Tenant string `env:"MICROSOFT_TENANT"`
}

// HTTPSettings holds site-wide outbound HTTP client settings
type HTTPSettings struct {
	ProxyURL string        `env:"HTTP_PROXY_URL"`
	Timeout  time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
}

// Load reads the .env file if present and then parses the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only
func FromEnv() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.Microsoft.AppID = strings.TrimSpace(cfg.Microsoft.AppID)
	cfg.Microsoft.AppSecret = strings.TrimSpace(cfg.Microsoft.AppSecret)
	cfg.Microsoft.Tenant = strings.TrimSpace(cfg.Microsoft.Tenant)
	cfg.HTTP.ProxyURL = strings.TrimSpace(cfg.HTTP.ProxyURL)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if _, err := url.ParseRequestURI(c.BaseURL); err != nil {
		return fmt.Errorf("invalid BASE_URL %q: %w", c.BaseURL, err)
	}
	if c.HTTP.ProxyURL != "" {
		if _, err := url.Parse(c.HTTP.ProxyURL); err != nil {
			return fmt.Errorf("invalid HTTP_PROXY_URL: %w", err)
		}
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME must be positive, got %s", c.SessionLifetime)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %s", c.HTTP.Timeout)
	}
	// "//host" is protocol-relative and would leave the site
	if !strings.HasPrefix(c.PostLoginPath, "/") || strings.HasPrefix(c.PostLoginPath, "//") || strings.HasPrefix(c.PostLoginPath, "/\\") {
		return fmt.Errorf("POST_LOGIN_PATH must be a local path, got %q", c.PostLoginPath)
	}
	return nil
}

// CallbackURL returns the absolute redirect URI for a network
func (c *Config) CallbackURL(networkID string) string {
	return c.BaseURL + "/user/login/" + networkID + "/callback"
}
