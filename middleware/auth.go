package middleware

import (
	"net/http"

	"github.com/blogem/microsoft-login/authsession"
	"github.com/blogem/microsoft-login/userctx"
)

// LoginPath is the route of the login page
const LoginPath = "/user/login"

// RequireAuth ensures the user is authenticated
// If not authenticated, redirects to the login page and stores the intended destination
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := authsession.FromRequest(r)
		userID, ok := authsession.UserID(sess)

		if !ok {
			// Store the intended destination for redirect after login
			if r.Method == http.MethodGet {
				authsession.SetDestination(sess, r.URL.Path)
			}
			http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			return
		}

		// Add user ID to request context for use in handlers
		next.ServeHTTP(w, r.WithContext(userctx.SetUserID(r.Context(), userID)))
	})
}
