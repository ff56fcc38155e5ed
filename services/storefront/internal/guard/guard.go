package guard

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/limosnd/Marketplace-go-grahpql/pkg/httputil"
)

// LoginPath is where unauthenticated users are sent.
const LoginPath = "/login"

// SessionChecker reports whether a user is signed in.
type SessionChecker interface {
	IsAuthenticated() bool
}

// Decision is the outcome of a gate check.
type Decision struct {
	Allowed  bool   `json:"allowed"`
	Redirect string `json:"redirect,omitempty"`
}

// Gate protects routes that need a signed-in user.
type Gate struct {
	session SessionChecker
}

// New creates a gate reading session.
func New(session SessionChecker) *Gate {
	return &Gate{session: session}
}

// Check decides whether target may be visited. The session is read once and
// the answer is final.
func (g *Gate) Check(target string) Decision {
	if g.session.IsAuthenticated() {
		return Decision{Allowed: true}
	}
	return Decision{Redirect: LoginRedirect(target)}
}

// Middleware lets signed-in requests through and answers the rest with a
// 303 to the login page.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d := g.Check(r.URL.RequestURI())
		if d.Allowed {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Location", d.Redirect)
		httputil.WriteJSON(w, http.StatusSeeOther, httputil.Response{
			Data: map[string]string{"redirect": d.Redirect},
			Error: &httputil.ErrorResponse{
				Code:    "UNAUTHENTICATED",
				Message: "sign in to continue",
			},
		})
	})
}

// LoginRedirect builds the login location that returns to target.
func LoginRedirect(target string) string {
	return LoginPath + "?" + url.Values{"returnUrl": {target}}.Encode()
}

// ReturnURL sanitizes a post-login destination. Only local absolute paths
// are honored; anything else yields "/".
func ReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return raw
}
