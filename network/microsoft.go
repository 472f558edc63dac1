package network

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/blogem/microsoft-login/authenticator"
	"github.com/blogem/microsoft-login/config"
)

// Microsoft is the network for Microsoft accounts and Entra ID tenants
type Microsoft struct {
	settings    config.MicrosoftSettings
	callbackURL string
	httpClient  *http.Client
	opts        []authenticator.Option

	// OpenID discovery is cached once it succeeded
	mu     sync.Mutex
	openID *authenticator.OpenIDProvider
}

// NewMicrosoft creates the Microsoft network.
// Extra provider options are applied to every SDK it builds.
func NewMicrosoft(settings config.MicrosoftSettings, callbackURL string, httpClient *http.Client, opts ...authenticator.Option) *Microsoft {
	return &Microsoft{
		settings:    settings,
		callbackURL: callbackURL,
		httpClient:  httpClient,
		opts:        opts,
	}
}

// ID returns the route identifier
func (m *Microsoft) ID() string {
	return authenticator.MicrosoftProviderName
}

// Name returns the display name
func (m *Microsoft) Name() string {
	return "Microsoft"
}

// Endpoints returns the configured Graph endpoints
func (m *Microsoft) Endpoints() []Endpoint {
	return ParseEndpoints(m.settings.Endpoints)
}

// SDK validates the settings and builds the provider client
func (m *Microsoft) SDK(ctx context.Context) (authenticator.Provider, error) {
	if !m.validateConfig() {
		return nil, ErrNotConfigured
	}

	cfg := authenticator.Config{
		ClientID:     m.settings.AppID,
		ClientSecret: m.settings.AppSecret,
		RedirectURL:  m.callbackURL,
		ExtraScopes:  authenticator.ParseScopes(m.settings.Scopes),
	}

	opts := m.opts
	if m.httpClient != nil {
		opts = append([]authenticator.Option{authenticator.WithHTTPClient(m.httpClient)}, opts...)
	}

	if m.settings.Tenant == "" {
		p, err := authenticator.NewMicrosoftProvider(cfg, opts...)
		if err != nil {
			return nil, m.wrap(err)
		}
		return p, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.openID != nil {
		return m.openID, nil
	}
	p, err := authenticator.NewOpenIDProvider(ctx, authenticator.AzureADConfig(m.settings.Tenant, cfg), opts...)
	if err != nil {
		return nil, m.wrap(err)
	}
	m.openID = p
	return p, nil
}

// validateConfig checks that the app credentials are set
func (m *Microsoft) validateConfig() bool {
	if m.settings.AppID == "" || m.settings.AppSecret == "" {
		slog.Error("Define App ID and App Secret on module settings.", "network", m.ID())
		return false
	}
	return true
}

func (m *Microsoft) wrap(err error) error {
	if authenticator.IsConfigError(err) {
		return fmt.Errorf("%w: %w", ErrNotConfigured, err)
	}
	return fmt.Errorf("failed to initialize %s client: %w", m.Name(), err)
}
