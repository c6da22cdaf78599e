package gateway

import (
	"crypto/subtle"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const AdminUser = "admin"

// AdminAuth guards admin routes with HTTP basic auth checked against a
// bcrypt hash. A nil AdminAuth or an empty hash lets every request through.
type AdminAuth struct {
	hash []byte
}

func NewAdminAuth(passwordHash string) *AdminAuth {
	if passwordHash == "" {
		log.Warn().Msg("no admin password hash configured, admin routes are open")
	}
	return &AdminAuth{hash: []byte(passwordHash)}
}

func (a *AdminAuth) Enabled() bool {
	return a != nil && len(a.hash) > 0
}

// Check verifies admin credentials.
func (a *AdminAuth) Check(user, password string) bool {
	if !a.Enabled() {
		return true
	}
	userOK := subtle.ConstantTimeCompare([]byte(user), []byte(AdminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword(a.hash, []byte(password)) == nil
	return userOK && passOK
}

// Require wraps next so it only runs for an authenticated admin.
func (a *AdminAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Enabled() {
			user, password, ok := r.BasicAuth()
			if !ok || !a.Check(user, password) {
				log.Warn().Str("path", r.URL.Path).Str("remote", r.RemoteAddr).Msg("admin authentication failed")
				w.Header().Set("WWW-Authenticate", `Basic realm="quizrunner admin"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
