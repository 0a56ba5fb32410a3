// Package session configures the server-side session manager. Sessions
// live in the same SQLite database as the content so a single file
// backup captures everything.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Lifetime is how long an admin login stays valid. Editing sessions are
// short bursts; a day covers them without keeping stale logins around.
const Lifetime = 24 * time.Hour

// New creates the session manager backing the editing API. SameSite=Lax
// keeps cross-site POSTs from carrying the session cookie; Secure is
// dropped only in development where the site runs over plain HTTP.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev

	return sm
}
