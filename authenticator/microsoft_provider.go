package authenticator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/microsoft"
)

const (
	// MicrosoftProviderName is the identifier for the Microsoft account provider.
	MicrosoftProviderName = "microsoft"
	// GraphURL is the base URL for authenticated Microsoft Graph requests.
	GraphURL = "https://graph.microsoft.com"

	liveProfileURL = "https://apis.live.net/v5.0/me"
)

// MicrosoftDefaultScopes returns the scopes always requested from Microsoft accounts
func MicrosoftDefaultScopes() []string {
	return []string{"wl.basic", "wl.emails"}
}

// MicrosoftProvider implements the Provider interface for Microsoft accounts
type MicrosoftProvider struct {
	config     oauth2.Config
	httpClient *http.Client
	profileURL string
	apiURL     string
}

// NewMicrosoftProvider creates a new Microsoft account provider with the given configuration
func NewMicrosoftProvider(cfg Config, opts ...Option) (*MicrosoftProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	o := applyOptions(opts)
	endpoint := microsoft.LiveConnectEndpoint
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}

	p := &MicrosoftProvider{
		config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     endpoint,
			Scopes:       MergeScopes(MicrosoftDefaultScopes(), cfg.ExtraScopes),
		},
		httpClient: o.httpClient,
		profileURL: liveProfileURL,
		apiURL:     GraphURL,
	}
	if o.profileURL != "" {
		p.profileURL = o.profileURL
	}
	if o.apiURL != "" {
		p.apiURL = o.apiURL
	}

	return p, nil
}

// Name returns the provider identifier
func (p *MicrosoftProvider) Name() string {
	return MicrosoftProviderName
}

// Scopes returns the merged scope list
func (p *MicrosoftProvider) Scopes() []string {
	return append([]string(nil), p.config.Scopes...)
}

// GetAuthURL returns the authorization URL for Microsoft
func (p *MicrosoftProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens
func (p *MicrosoftProvider) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	return exchange(ctx, &p.config, p.httpClient, code)
}

// GetResourceOwner fetches the Microsoft account profile
func (p *MicrosoftProvider) GetResourceOwner(ctx context.Context, token *Token) (*Profile, error) {
	if token == nil || token.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}

	var raw map[string]interface{}
	if err := getJSON(ctx, p.client(ctx, token), http.MethodGet, p.profileURL, &raw); err != nil {
		return nil, err
	}

	profile := &Profile{
		ID:   stringClaim(raw, "id"),
		Name: stringClaim(raw, "name"),
		Raw:  raw,
	}
	if emails, ok := raw["emails"].(map[string]interface{}); ok {
		profile.Email = stringClaim(emails, "preferred")
		if profile.Email == "" {
			profile.Email = stringClaim(emails, "account")
		}
	}

	if profile.ID == "" {
		return nil, ErrEmptyProfile
	}
	return profile, nil
}

// RequestEndpoint performs an authenticated request against Microsoft Graph
func (p *MicrosoftProvider) RequestEndpoint(ctx context.Context, token *Token, method, path string) (map[string]interface{}, error) {
	if token == nil || token.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	if !strings.HasPrefix(path, "/") {
		return nil, errors.New("endpoint path must start with /")
	}

	var out map[string]interface{}
	if err := getJSON(ctx, p.client(ctx, token), method, p.apiURL+path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *MicrosoftProvider) client(ctx context.Context, token *Token) *http.Client {
	return p.config.Client(contextWithHTTPClient(ctx, p.httpClient), token.oauth2Token())
}

func stringClaim(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
