package authenticator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// Config holds OAuth provider configuration shared by all providers
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// ExtraScopes are requested in addition to the provider defaults.
	ExtraScopes []string
}

func (c Config) validate() error {
	if c.ClientID == "" {
		return ErrMissingClientID
	}
	if c.ClientSecret == "" {
		return ErrMissingClientSecret
	}
	if c.RedirectURL == "" {
		return ErrMissingRedirectURL
	}
	return nil
}

// Token represents an authentication token
type Token struct {
	AccessToken  string
	RefreshToken string
	IDToken      string
	Expiry       int64
}

func (t *Token) oauth2Token() *oauth2.Token {
	return &oauth2.Token{AccessToken: t.AccessToken, TokenType: "Bearer"}
}

// Claims represents user claims from the ID token
type Claims map[string]interface{}

// Profile is the resource owner returned by the provider
type Profile struct {
	ID    string
	Name  string
	Email string
	// Raw is the decoded profile document as returned by the provider.
	Raw map[string]interface{}
}

// Provider interface abstracts OAuth provider operations
type Provider interface {
	// Name returns the provider identifier.
	Name() string

	// Scopes returns the scopes requested by GetAuthURL.
	Scopes() []string

	// GetAuthURL returns the authorization URL carrying the given state.
	GetAuthURL(state string) string

	// ExchangeCode trades an authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*Token, error)

	// GetResourceOwner fetches the authenticated user's profile.
	GetResourceOwner(ctx context.Context, token *Token) (*Profile, error)

	// RequestEndpoint performs an authenticated API request and returns the parsed JSON body.
	RequestEndpoint(ctx context.Context, token *Token, method, path string) (map[string]interface{}, error)
}

// Option configures a provider
type Option func(*options)

type options struct {
	httpClient *http.Client
	endpoint   *oauth2.Endpoint
	profileURL string
	apiURL     string
}

// WithHTTPClient sets the HTTP client used for every outbound request
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithEndpoint overrides the authorize and token endpoints
func WithEndpoint(endpoint oauth2.Endpoint) Option {
	return func(o *options) {
		o.endpoint = &endpoint
	}
}

// WithProfileURL overrides the resource owner endpoint
func WithProfileURL(u string) Option {
	return func(o *options) {
		o.profileURL = u
	}
}

// WithAPIURL overrides the base URL used by RequestEndpoint
func WithAPIURL(u string) Option {
	return func(o *options) {
		o.apiURL = strings.TrimRight(u, "/")
	}
}

func applyOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// contextWithHTTPClient makes oauth2 use the configured client
func contextWithHTTPClient(ctx context.Context, client *http.Client) context.Context {
	if client != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, client)
	}
	return ctx
}

// convertToken converts an oauth2.Token to our Token type
func convertToken(oauth2Token *oauth2.Token) *Token {
	token := &Token{
		AccessToken:  oauth2Token.AccessToken,
		RefreshToken: oauth2Token.RefreshToken,
	}
	if !oauth2Token.Expiry.IsZero() {
		token.Expiry = oauth2Token.Expiry.Unix()
	}

	// Extract ID token if present
	if idToken, ok := oauth2Token.Extra("id_token").(string); ok {
		token.IDToken = idToken
	}

	return token
}

// exchange runs the token request and keeps the provider's error details reachable
func exchange(ctx context.Context, cfg *oauth2.Config, client *http.Client, code string) (*Token, error) {
	if code == "" {
		return nil, ErrMissingCode
	}
	oauth2Token, err := cfg.Exchange(contextWithHTTPClient(ctx, client), code)
	if err != nil {
		return nil, errors.Join(ErrTokenExchange, err)
	}
	if oauth2Token.AccessToken == "" {
		return nil, errors.Join(ErrTokenExchange, errors.New("empty access token"))
	}
	return convertToken(oauth2Token), nil
}

// getJSON performs an authenticated request and decodes the JSON response into out
func getJSON(ctx context.Context, client *http.Client, method, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return errors.Join(ErrRequestFailed, fmt.Errorf("%s %s: %w", method, url, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.Join(ErrRequestFailed, fmt.Errorf("%s %s: status=%d body=%s", method, url, resp.StatusCode, strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Join(ErrDecodeFailed, err)
	}
	return nil
}
