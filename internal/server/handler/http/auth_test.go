package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/avelazquez/livemarket/internal/middleware"
	"github.com/avelazquez/livemarket/internal/models"
	"github.com/avelazquez/livemarket/internal/service"
	"github.com/avelazquez/livemarket/internal/session"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	loginUser   *models.User
	loginErr    error
	registerErr error
	findUser    *models.User
	findErr     error
}

func (f *fakeAuthService) Register(_ context.Context, username, password, email string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	return &models.User{Username: username, Email: email}, nil
}

func (f *fakeAuthService) Login(_ context.Context, _, _ string) (*models.User, error) {
	return f.loginUser, f.loginErr
}

func (f *fakeAuthService) FindByUsername(_ context.Context, _ string) (*models.User, error) {
	return f.findUser, f.findErr
}

// newTestRouter wires the full router around the fake service and a fresh
// session store.
func newTestRouter(svc *fakeAuthService) (http.Handler, *session.Store) {
	sessions := session.NewStore(time.Hour)
	logger := zap.NewNop()
	authHandler := &AuthHandler{AuthService: svc, Sessions: sessions, Log: logger}
	dataHandler := &DataHandler{AuthService: svc, Sessions: sessions, Log: logger}
	wsStub := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return NewRouter(authHandler, dataHandler, wsStub, sessions, logger), sessions
}

func postForm(router http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sessionCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == middleware.CookieName {
			return c
		}
	}
	return nil
}

func TestLogin_Success(t *testing.T) {
	svc := &fakeAuthService{loginUser: &models.User{Username: "alice", Email: "alice@example.com"}}
	router, sessions := newTestRouter(svc)

	rec := postForm(router, "/login", url.Values{"username": {"alice"}, "password": {"pw"}})

	if rec.Code != http.StatusFound {
		t.Fatalf("expected %d, got %d", http.StatusFound, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/datos" {
		t.Errorf("expected redirect to /datos, got %q", loc)
	}

	cookie := sessionCookieFrom(t, rec)
	if cookie == nil || cookie.Value == "" {
		t.Fatal("expected a session cookie")
	}
	if sessions.Get(cookie.Value) == nil {
		t.Error("expected the cookie token to map to a live session")
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	svc := &fakeAuthService{loginErr: service.ErrInvalidCredentials}
	router, sessions := newTestRouter(svc)

	rec := postForm(router, "/login", url.Values{"username": {"alice"}, "password": {"wrong"}})

	if loc := rec.Header().Get("Location"); loc != "/faillogin" {
		t.Errorf("expected redirect to /faillogin, got %q", loc)
	}
	if sessionCookieFrom(t, rec) != nil {
		t.Error("expected no session cookie on failed login")
	}
	if sessions.Len() != 0 {
		t.Error("expected no session to be created on failed login")
	}
}

func TestLogin_StoreError(t *testing.T) {
	svc := &fakeAuthService{loginErr: errors.New("store unreachable")}
	router, _ := newTestRouter(svc)

	rec := postForm(router, "/login", url.Values{"username": {"alice"}, "password": {"pw"}})

	if loc := rec.Header().Get("Location"); loc != "/faillogin" {
		t.Errorf("expected redirect to /faillogin, got %q", loc)
	}
}

func TestRegister_Success(t *testing.T) {
	router, _ := newTestRouter(&fakeAuthService{})

	rec := postForm(router, "/register", url.Values{
		"username": {"bob"},
		"password": {"pw"},
		"email":    {"bob@example.com"},
	})

	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
}

func TestRegister_Duplicate(t *testing.T) {
	svc := &fakeAuthService{registerErr: service.ErrDuplicateUser}
	router, _ := newTestRouter(svc)

	rec := postForm(router, "/register", url.Values{
		"username": {"bob"},
		"password": {"pw"},
		"email":    {"bob@example.com"},
	})

	if loc := rec.Header().Get("Location"); loc != "/failregister" {
		t.Errorf("expected redirect to /failregister, got %q", loc)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	router, _ := newTestRouter(&fakeAuthService{})

	rec := postForm(router, "/register", url.Values{"username": {"bob"}})

	if loc := rec.Header().Get("Location"); loc != "/failregister" {
		t.Errorf("expected redirect to /failregister, got %q", loc)
	}
}

func TestLoginPage_RedirectsWhenAuthenticated(t *testing.T) {
	router, sessions := newTestRouter(&fakeAuthService{})
	sess := sessions.Create("alice")

	req := httptest.NewRequest("GET", "/login", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/datos" {
		t.Errorf("expected redirect to /datos, got %q", loc)
	}
}

func TestLogout_DestroysSession(t *testing.T) {
	router, sessions := newTestRouter(&fakeAuthService{})
	sess := sessions.Create("alice")

	req := httptest.NewRequest("GET", "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("expected redirect to /, got %q", loc)
	}
	if sessions.Get(sess.Token) != nil {
		t.Error("expected the session to be destroyed")
	}

	// Any protected request with the stale cookie now redirects to /login.
	req = httptest.NewRequest("GET", "/datos", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: sess.Token})
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Errorf("expected redirect to /login after logout, got %q", loc)
	}
}

func TestProtectedRoutesRedirectAnonymous(t *testing.T) {
	router, _ := newTestRouter(&fakeAuthService{})

	for _, path := range []string{"/datos", "/get-data", "/ws"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest("GET", path, nil))

		if rec.Code != http.StatusFound {
			t.Errorf("%s: expected %d, got %d", path, http.StatusFound, rec.Code)
			continue
		}
		if loc := rec.Header().Get("Location"); loc != "/login" {
			t.Errorf("%s: expected redirect to /login, got %q", path, loc)
		}
	}
}

func TestGetData_ReturnsUserAndCounter(t *testing.T) {
	user := &models.User{Username: "alice", Password: "$2a$10$hash", Email: "alice@example.com"}
	svc := &fakeAuthService{findUser: user}
	router, sessions := newTestRouter(svc)
	sess := sessions.Create("alice")

	// Two page views, then read the data endpoint.
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/datos", nil)
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: sess.Token})
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest("GET", "/get-data", nil)
	req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: sess.Token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}

	var payload struct {
		User     map[string]interface{} `json:"user"`
		Contador int                    `json:"contador"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if payload.Contador != 2 {
		t.Errorf("expected contador 2, got %d", payload.Contador)
	}
	if payload.User["username"] != "alice" {
		t.Errorf("expected username alice, got %v", payload.User["username"])
	}
	if _, leaked := payload.User["password"]; leaked {
		t.Error("password hash must not be serialized")
	}
}

func TestInfo_Unauthenticated(t *testing.T) {
	router, _ := newTestRouter(&fakeAuthService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/info", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, rec.Code)
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if _, ok := payload["pid"]; !ok {
		t.Error("expected pid in diagnostics")
	}
	if _, ok := payload["platform"]; !ok {
		t.Error("expected platform in diagnostics")
	}
}

func TestRoot_RedirectsToDatos(t *testing.T) {
	router, _ := newTestRouter(&fakeAuthService{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if loc := rec.Header().Get("Location"); loc != "/datos" {
		t.Errorf("expected redirect to /datos, got %q", loc)
	}
}
