package authenticator

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// Azure AD v2 discovery documents of the multi-tenant aliases advertise this
// templated issuer instead of their own URL.
const azureTemplatedIssuer = "https://login.microsoftonline.com/{tenantid}/v2.0"

// OpenIDProvider implements the Provider interface for OpenID Connect
type OpenIDProvider struct {
	provider   *oidc.Provider
	verifier   *oidc.IDTokenVerifier
	config     oauth2.Config
	httpClient *http.Client
	apiURL     string
}

// OpenIDConfig holds OpenID Connect configuration
type OpenIDConfig struct {
	Config
	Issuer string
	// DiscoveredIssuer is the issuer advertised by discovery when it differs from Issuer.
	DiscoveredIssuer string
}

// OpenIDDefaultScopes returns the scopes always requested from an OpenID Connect provider
func OpenIDDefaultScopes() []string {
	return []string{oidc.ScopeOpenID, "profile", "email"}
}

// AzureADConfig returns the OpenID configuration for a Microsoft Entra ID tenant
func AzureADConfig(tenant string, cfg Config) OpenIDConfig {
	oc := OpenIDConfig{
		Config: cfg,
		Issuer: "https://login.microsoftonline.com/" + tenant + "/v2.0",
	}
	switch strings.ToLower(tenant) {
	case "common", "organizations", "consumers":
		oc.DiscoveredIssuer = azureTemplatedIssuer
	}
	return oc
}

// NewOpenIDProvider creates a new OpenID Connect provider with the given configuration.
// Discovery only runs once the configuration is known to be complete.
func NewOpenIDProvider(ctx context.Context, cfg OpenIDConfig, opts ...Option) (*OpenIDProvider, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.Issuer == "" {
		return nil, ErrMissingIssuer
	}

	o := applyOptions(opts)

	discoveryCtx := ctx
	if o.httpClient != nil {
		discoveryCtx = oidc.ClientContext(discoveryCtx, o.httpClient)
	}
	if cfg.DiscoveredIssuer != "" {
		discoveryCtx = oidc.InsecureIssuerURLContext(discoveryCtx, cfg.DiscoveredIssuer)
	}

	provider, err := oidc.NewProvider(discoveryCtx, cfg.Issuer)
	if err != nil {
		return nil, errors.Join(ErrRequestFailed, err)
	}

	endpoint := provider.Endpoint()
	if o.endpoint != nil {
		endpoint = *o.endpoint
	}

	conf := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     endpoint,
		Scopes:       MergeScopes(OpenIDDefaultScopes(), cfg.ExtraScopes),
	}

	p := &OpenIDProvider{
		provider: provider,
		verifier: provider.Verifier(&oidc.Config{
			ClientID: cfg.ClientID,
			// the token carries the tenant's real issuer, not the templated one
			SkipIssuerCheck: cfg.DiscoveredIssuer != "",
		}),
		config:     conf,
		httpClient: o.httpClient,
		apiURL:     GraphURL,
	}
	if o.apiURL != "" {
		p.apiURL = o.apiURL
	}
	return p, nil
}

// Name returns the provider identifier
func (p *OpenIDProvider) Name() string {
	return MicrosoftProviderName
}

// Scopes returns the merged scope list
func (p *OpenIDProvider) Scopes() []string {
	return append([]string(nil), p.config.Scopes...)
}

// GetAuthURL returns the authorization URL for OpenID Connect
func (p *OpenIDProvider) GetAuthURL(state string) string {
	return p.config.AuthCodeURL(state)
}

// ExchangeCode exchanges an authorization code for tokens
func (p *OpenIDProvider) ExchangeCode(ctx context.Context, code string) (*Token, error) {
	return exchange(ctx, &p.config, p.httpClient, code)
}

// GetClaims extracts user claims from the ID token
func (p *OpenIDProvider) GetClaims(ctx context.Context, token *Token) (Claims, error) {
	if token == nil || token.IDToken == "" {
		return nil, ErrNoIDToken
	}

	if p.httpClient != nil {
		ctx = oidc.ClientContext(ctx, p.httpClient)
	}
	idToken, err := p.verifier.Verify(ctx, token.IDToken)
	if err != nil {
		return nil, err
	}

	var claims Claims
	if err := idToken.Claims(&claims); err != nil {
		return nil, err
	}

	return claims, nil
}

// GetResourceOwner builds the profile from the verified ID token claims
func (p *OpenIDProvider) GetResourceOwner(ctx context.Context, token *Token) (*Profile, error) {
	claims, err := p.GetClaims(ctx, token)
	if err != nil {
		return nil, err
	}

	// oid is stable across applications of the same tenant; sub is per application
	id := stringClaim(claims, "oid")
	if id == "" {
		id = stringClaim(claims, "sub")
	}
	email := stringClaim(claims, "email")
	if email == "" {
		email = stringClaim(claims, "preferred_username")
	}

	if id == "" {
		return nil, ErrEmptyProfile
	}
	return &Profile{
		ID:    id,
		Name:  stringClaim(claims, "name"),
		Email: email,
		Raw:   claims,
	}, nil
}

// RequestEndpoint performs an authenticated request against Microsoft Graph
func (p *OpenIDProvider) RequestEndpoint(ctx context.Context, token *Token, method, path string) (map[string]interface{}, error) {
	if token == nil || token.AccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	if !strings.HasPrefix(path, "/") {
		return nil, errors.New("endpoint path must start with /")
	}

	client := p.config.Client(contextWithHTTPClient(ctx, p.httpClient), token.oauth2Token())
	var out map[string]interface{}
	if err := getJSON(ctx, client, method, p.apiURL+path, &out); err != nil {
		return nil, err
	}
	return out, nil
}
