package handler

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/olegiv/folio-go/internal/auth"
	"github.com/olegiv/folio-go/internal/imaging"
	"github.com/olegiv/folio-go/internal/middleware"
	"github.com/olegiv/folio-go/internal/service"
	"github.com/olegiv/folio-go/internal/store"
	"github.com/olegiv/folio-go/internal/testutil"
)

// testApp bundles the wired handlers and an HTTP server for tests.
type testApp struct {
	db     *sql.DB
	server *httptest.Server
	client *http.Client
}

// newTestApp builds the full route tree against a temporary database
// and returns a running test server with a cookie-aware client.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	sm := scs.New()
	sm.Lifetime = time.Hour
	sm.Cookie.Secure = false

	queries := store.New(db)
	content := service.NewContentService(queries)
	uploads := service.NewUploadService(content, imaging.NewProcessor(t.TempDir()), testutil.TestLogger())

	authHandler := NewAuthHandler(db, sm, nil, "Test Portfolio")
	contentHandler := NewContentHandler(db, content, uploads, sm)
	homeHandler := NewHomeHandler(sm, "Test Portfolio")

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)

	r.Get(RouteRoot, homeHandler.Home)
	r.Get(RouteLogin, authHandler.LoginForm)
	r.Post(RouteLogin, authHandler.Login)
	r.Get(RouteLogout, authHandler.Logout)

	r.Get(RouteAPICheckAuth, contentHandler.CheckAuth)
	r.Get(RouteAPIGetContent, contentHandler.GetContent)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(sm))
		r.Post(RouteAPIUpdateContent, contentHandler.UpdateContent)
		r.Post(RouteAPIUploadImage, contentHandler.UploadImage)
	})

	server := httptest.NewServer(r)
	t.Cleanup(server.Close)

	jar := newCookieJar(t)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			// Surface redirects to the tests instead of following them.
			return http.ErrUseLastResponse
		},
	}

	return &testApp{db: db, server: server, client: client}
}

// newCookieJar creates a cookie jar for the test client.
func newCookieJar(t *testing.T) http.CookieJar {
	t.Helper()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar.New: %v", err)
	}
	return jar
}

// createUser inserts a user with a real password hash.
func (a *testApp) createUser(t *testing.T, username, password string) {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	now := time.Now()
	_, err = store.New(a.db).CreateUser(context.Background(), store.CreateUserParams{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

// readBody drains a response body into a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return string(b)
}

// login posts the login form; the client's cookie jar keeps the session.
func (a *testApp) login(t *testing.T, username, password string) *http.Response {
	t.Helper()

	resp, err := a.client.PostForm(a.server.URL+RouteLogin, url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	_ = resp.Body.Close()
	return resp
}
