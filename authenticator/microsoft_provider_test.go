package authenticator_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/blogem/microsoft-login/authenticator"
)

var (
	_ authenticator.Provider = (*authenticator.MicrosoftProvider)(nil)
	_ authenticator.Provider = (*authenticator.OpenIDProvider)(nil)
)

func validConfig() authenticator.Config {
	return authenticator.Config{
		ClientID:     "app-id",
		ClientSecret: "app-secret",
		RedirectURL:  "https://example.com/user/login/microsoft/callback",
	}
}

// fakeLive emulates the Live Connect token endpoint, profile endpoint and Graph
func fakeLive(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if r.PostForm.Get("code") != "good-code" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"The provided value for the 'code' parameter is not valid."}`))
			return
		}
		_, _ = w.Write([]byte(`{"access_token":"access-123","token_type":"bearer","expires_in":3600,"refresh_token":"refresh-456"}`))
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"ms-42","name":"Ada Lovelace","emails":{"preferred":"ada@example.com","account":"ada@live.com"}}`))
	})
	mux.HandleFunc("/v1.0/me/drives", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"value":[{"id":"drive-1"}]}`))
	})
	mux.HandleFunc("/empty", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestProvider(t *testing.T, srv *httptest.Server, opts ...authenticator.Option) *authenticator.MicrosoftProvider {
	t.Helper()

	base := []authenticator.Option{
		authenticator.WithEndpoint(oauth2.Endpoint{
			AuthURL:   srv.URL + "/authorize",
			TokenURL:  srv.URL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		}),
		authenticator.WithProfileURL(srv.URL + "/me"),
		authenticator.WithAPIURL(srv.URL),
		authenticator.WithHTTPClient(srv.Client()),
	}
	p, err := authenticator.NewMicrosoftProvider(validConfig(), append(base, opts...)...)
	require.NoError(t, err)
	return p
}

func TestNewMicrosoftProvider(t *testing.T) {
	t.Parallel()

	t.Run("valid config", func(t *testing.T) {
		t.Parallel()
		p, err := authenticator.NewMicrosoftProvider(validConfig())
		require.NoError(t, err)
		assert.Equal(t, authenticator.MicrosoftProviderName, p.Name())
	})

	t.Run("missing client ID", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ClientID = ""
		p, err := authenticator.NewMicrosoftProvider(cfg)
		require.ErrorIs(t, err, authenticator.ErrMissingClientID)
		assert.True(t, authenticator.IsConfigError(err))
		assert.Nil(t, p)
	})

	t.Run("missing client secret", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.ClientSecret = ""
		p, err := authenticator.NewMicrosoftProvider(cfg)
		require.ErrorIs(t, err, authenticator.ErrMissingClientSecret)
		assert.Nil(t, p)
	})
}

func TestMicrosoftProvider_GetAuthURL(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.ExtraScopes = []string{"Files.Read", "wl.basic"}
	p, err := authenticator.NewMicrosoftProvider(cfg)
	require.NoError(t, err)

	raw := p.GetAuthURL("state-abc")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(raw, "https://login.live.com/oauth20_authorize.srf"))
	q := u.Query()
	assert.Equal(t, "state-abc", q.Get("state"))
	assert.Equal(t, "code", q.Get("response_type"))
	assert.Equal(t, "app-id", q.Get("client_id"))
	assert.Equal(t, cfg.RedirectURL, q.Get("redirect_uri"))
	assert.ElementsMatch(t, []string{"wl.basic", "wl.emails", "Files.Read"}, strings.Fields(q.Get("scope")))
	assert.Equal(t, []string{"wl.basic", "wl.emails", "Files.Read"}, p.Scopes())
}

func TestMicrosoftProvider_ExchangeCode(t *testing.T) {
	t.Parallel()
	srv := fakeLive(t)
	p := newTestProvider(t, srv)

	t.Run("success", func(t *testing.T) {
		token, err := p.ExchangeCode(context.Background(), "good-code")
		require.NoError(t, err)
		assert.Equal(t, "access-123", token.AccessToken)
		assert.Equal(t, "refresh-456", token.RefreshToken)
		assert.NotZero(t, token.Expiry)
	})

	t.Run("rejected code keeps provider detail", func(t *testing.T) {
		token, err := p.ExchangeCode(context.Background(), "bad-code")
		require.ErrorIs(t, err, authenticator.ErrTokenExchange)
		assert.Nil(t, token)

		var re *oauth2.RetrieveError
		require.True(t, errors.As(err, &re))
		assert.Equal(t, "invalid_grant", re.ErrorCode)
	})

	t.Run("missing code", func(t *testing.T) {
		_, err := p.ExchangeCode(context.Background(), "")
		require.ErrorIs(t, err, authenticator.ErrMissingCode)
	})
}

func TestMicrosoftProvider_GetResourceOwner(t *testing.T) {
	t.Parallel()
	srv := fakeLive(t)

	t.Run("success", func(t *testing.T) {
		p := newTestProvider(t, srv)
		profile, err := p.GetResourceOwner(context.Background(), &authenticator.Token{AccessToken: "access-123"})
		require.NoError(t, err)
		assert.Equal(t, "ms-42", profile.ID)
		assert.Equal(t, "Ada Lovelace", profile.Name)
		assert.Equal(t, "ada@example.com", profile.Email)
		assert.Equal(t, "ms-42", profile.Raw["id"])
	})

	t.Run("unauthorized", func(t *testing.T) {
		p := newTestProvider(t, srv)
		_, err := p.GetResourceOwner(context.Background(), &authenticator.Token{AccessToken: "wrong"})
		require.ErrorIs(t, err, authenticator.ErrRequestFailed)
	})

	t.Run("empty profile", func(t *testing.T) {
		p := newTestProvider(t, srv, authenticator.WithProfileURL(srv.URL+"/empty"))
		_, err := p.GetResourceOwner(context.Background(), &authenticator.Token{AccessToken: "access-123"})
		require.ErrorIs(t, err, authenticator.ErrEmptyProfile)
	})

	t.Run("missing token", func(t *testing.T) {
		p := newTestProvider(t, srv)
		_, err := p.GetResourceOwner(context.Background(), nil)
		require.ErrorIs(t, err, authenticator.ErrMissingAccessToken)
	})
}

func TestMicrosoftProvider_RequestEndpoint(t *testing.T) {
	t.Parallel()
	srv := fakeLive(t)
	p := newTestProvider(t, srv)
	token := &authenticator.Token{AccessToken: "access-123"}

	data, err := p.RequestEndpoint(context.Background(), token, http.MethodGet, "/v1.0/me/drives")
	require.NoError(t, err)

	encoded, err := json.Marshal(data)
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":[{"id":"drive-1"}]}`, string(encoded))

	_, err = p.RequestEndpoint(context.Background(), token, http.MethodGet, "/v1.0/missing")
	require.ErrorIs(t, err, authenticator.ErrRequestFailed)

	_, err = p.RequestEndpoint(context.Background(), token, http.MethodGet, "relative")
	require.Error(t, err)
}

func TestNewHTTPClient(t *testing.T) {
	t.Parallel()

	client, err := authenticator.NewHTTPClient("http://proxy.local:3128", 0)
	require.NoError(t, err)

	transport, ok := client.Transport.(*http.Transport)
	require.True(t, ok)
	req := httptest.NewRequest(http.MethodGet, "https://login.live.com/", nil)
	proxyURL, err := transport.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, "proxy.local:3128", proxyURL.Host)

	_, err = authenticator.NewHTTPClient("http://[::1", 0)
	assert.Error(t, err)
}
