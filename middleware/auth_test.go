package middleware

import (
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"gitea.com/go-chi/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogem/microsoft-login/authsession"
	"github.com/blogem/microsoft-login/models"
	"github.com/blogem/microsoft-login/userctx"
)

func TestRequireAuth(t *testing.T) {
	r := chi.NewRouter()
	sessionHandler, err := session.Sessioner(session.Options{
		Provider:    "memory",
		CookieName:  "middleware_test",
		Gclifetime:  3600,
		Maxlifetime: 3600,
	})
	require.NoError(t, err)
	r.Use(sessionHandler)

	r.Get("/login-as/{id}", func(w http.ResponseWriter, r *http.Request) {
		var id int64
		fmt.Sscan(chi.URLParam(r, "id"), &id)
		_ = authsession.SetUser(authsession.FromRequest(r), &models.User{ID: id, Name: "Ada"})
	})
	r.Get("/destination", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, authsession.Destination(authsession.FromRequest(r)))
	})
	r.With(RequireAuth).HandleFunc("/user/settings", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, userctx.GetUserID(r.Context()))
	})

	srv := httptest.NewServer(r)
	defer srv.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	read := func(resp *http.Response) string {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return string(body)
	}

	// POST is redirected but not remembered
	resp, err := client.Post(srv.URL+"/user/settings", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, LoginPath, resp.Header.Get("Location"))

	resp, err = client.Get(srv.URL + "/destination")
	require.NoError(t, err)
	assert.Empty(t, read(resp))

	resp, err = client.Get(srv.URL + "/user/settings")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	resp, err = client.Get(srv.URL + "/destination")
	require.NoError(t, err)
	assert.Equal(t, "/user/settings", read(resp))

	resp, err = client.Get(srv.URL + "/login-as/7")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(srv.URL + "/user/settings")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "7", read(resp))
}
