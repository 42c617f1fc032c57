package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/bookshelf-api/bookshelf/internal/apperrors"
	"github.com/bookshelf-api/bookshelf/internal/handlers"
	"github.com/bookshelf-api/bookshelf/internal/hash"
	"github.com/bookshelf-api/bookshelf/internal/logging"
	mwauth "github.com/bookshelf-api/bookshelf/internal/middleware/auth"
	"github.com/bookshelf-api/bookshelf/internal/models"
	"github.com/bookshelf-api/bookshelf/internal/service"
	"github.com/bookshelf-api/bookshelf/internal/token"
	httpserver "github.com/bookshelf-api/bookshelf/internal/transport/http"
)

type fakeBlocklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func (f *fakeBlocklist) Revoke(ctx context.Context, jti string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked[jti] = true
	return nil
}

func (f *fakeBlocklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[jti], nil
}

type sentMail struct {
	Recipients []string
	Subject    string
	HTMLBody   string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeNotifier) Send(ctx context.Context, recipients []string, subject, htmlBody string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{recipients, subject, htmlBody})
	return nil
}

func (f *fakeNotifier) wait(t *testing.T, n int) []sentMail {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		if len(f.sent) >= n {
			out := append([]sentMail(nil), f.sent...)
			f.mu.Unlock()
			return out
		}
		f.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("expected %d mails", n)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) PublishEvent(ctx context.Context, topic, key string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, _ := json.Marshal(event)
	f.events = append(f.events, topic+":"+string(data))
	return nil
}

type testEnv struct {
	e         *echo.Echo
	users     *service.UserService
	codec     *token.Codec
	links     *token.LinkCodec
	blocklist *fakeBlocklist
	notifier  *fakeNotifier
	publisher *fakePublisher
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Book{}, &models.Review{}, &models.Tag{}))

	secret := []byte("handler-test-secret")
	env := &testEnv{
		users:     &service.UserService{DB: db},
		codec:     token.NewCodec(secret, time.Hour, 48*time.Hour),
		links:     token.NewLinkCodec(secret, token.LinkSalt),
		blocklist: &fakeBlocklist{revoked: map[string]bool{}},
		notifier:  &fakeNotifier{},
		publisher: &fakePublisher{},
	}

	books := &service.BookService{DB: db}
	reviews := &service.ReviewService{DB: db}
	tags := &service.TagService{DB: db}

	e := echo.New()
	e.HTTPErrorHandler = apperrors.HTTPErrorHandler(logging.New("error"))
	httpserver.Register(e, &httpserver.Deps{
		Guard: &mwauth.Guard{Codec: env.codec, Blocklist: env.blocklist},
		Users: env.users,
		AuthHandler: &handlers.AuthHandler{
			Users:      env.users,
			Hasher:     hash.NewHasher(4),
			Codec:      env.codec,
			Links:      env.links,
			Blocklist:  env.blocklist,
			Notifier:   env.notifier,
			Publisher:  env.publisher,
			Domain:     "localhost:8000",
			LinkMaxAge: 24 * time.Hour,
		},
		BookHandler:   &handlers.BookHandler{Books: books, Publisher: env.publisher},
		ReviewHandler: &handlers.ReviewHandler{Reviews: reviews, Books: books},
		TagHandler:    &handlers.TagHandler{Tags: tags, Books: books},
		SearchHandler: &handlers.SearchHandler{},
	})
	env.e = e
	return env
}

func (env *testEnv) do(t *testing.T, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	return rec
}

func (env *testEnv) signup(t *testing.T, email, password string) {
	t.Helper()
	body := fmt.Sprintf(`{"username":"jane","email":%q,"first_name":"Jane","last_name":"Doe","password":%q}`, email, password)
	rec := env.do(t, http.MethodPost, "/api/v1/auth/signup", body, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (env *testEnv) login(t *testing.T, email, password string) (access, refresh string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := env.do(t, http.MethodPost, "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	return resp.AccessToken, resp.RefreshToken
}

func (env *testEnv) verify(t *testing.T, email string) {
	t.Helper()
	linkToken, err := env.links.Sign(map[string]string{"email": email})
	require.NoError(t, err)
	rec := env.do(t, http.MethodGet, "/api/v1/auth/verify/"+linkToken, "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestSignupLoginRoundTrip(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "jane@b.com", "secret123")

	// Duplicate signup refused.
	rec := env.do(t, http.MethodPost, "/api/v1/auth/signup",
		`{"username":"jane2","email":"jane@b.com","password":"other"}`, "")
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "user_exists")

	access, refresh := env.login(t, "jane@b.com", "secret123")

	// The identity embedded at login comes back out of the token.
	claims, err := env.codec.Decode(access)
	require.NoError(t, err)
	require.Equal(t, "jane@b.com", claims.User.Email)
	require.False(t, claims.Refresh)

	refreshClaims, err := env.codec.Decode(refresh)
	require.NoError(t, err)
	require.True(t, refreshClaims.Refresh)

	// Signup queued a verification mail.
	mails := env.notifier.wait(t, 1)
	require.Equal(t, []string{"jane@b.com"}, mails[0].Recipients)
	require.Contains(t, mails[0].HTMLBody, "/api/v1/auth/verify/")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "jane@b.com", "secret123")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"jane@b.com","password":"wrong"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_email_or_password")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ghost@b.com","password":"secret123"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresVerifiedAccount(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "jane@b.com", "secret123")
	access, _ := env.login(t, "jane@b.com", "secret123")

	rec := env.do(t, http.MethodGet, "/api/v1/auth/me", "", access)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "account_not_verified")

	env.verify(t, "jane@b.com")

	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", "", access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), "jane@b.com")
}

func TestVerifyRejectsTamperedLink(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "jane@b.com", "secret123")

	rec := env.do(t, http.MethodGet, "/api/v1/auth/verify/not-a-link", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_token")
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "jane@b.com", "secret123")
	env.verify(t, "jane@b.com")
	access, _ := env.login(t, "jane@b.com", "secret123")

	rec := env.do(t, http.MethodGet, "/api/v1/auth/me", "", access)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/v1/auth/logout", "", access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	claims, err := env.codec.Decode(access)
	require.NoError(t, err)
	require.True(t, env.blocklist.revoked[claims.ID])

	// Same token, same jti: rejected from here on.
	rec = env.do(t, http.MethodGet, "/api/v1/auth/me", "", access)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid_token")
}

func TestRefreshEndpointKinds(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "jane@b.com", "secret123")
	access, refresh := env.login(t, "jane@b.com", "secret123")

	// Access token on the refresh endpoint is the wrong kind.
	rec := env.do(t, http.MethodGet, "/api/v1/auth/refresh_token", "", access)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "refresh_token_required")

	rec = env.do(t, http.MethodGet, "/api/v1/auth/refresh_token", "", refresh)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	claims, err := env.codec.Decode(resp.AccessToken)
	require.NoError(t, err)
	require.False(t, claims.Refresh)
	require.Equal(t, "jane@b.com", claims.User.Email)

	// And a refresh token never passes an access-guarded route.
	rec = env.do(t, http.MethodGet, "/api/v1/auth/logout", "", refresh)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "access_token_required")
}

func TestPasswordResetFlow(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "jane@b.com", "oldpassword")

	rec := env.do(t, http.MethodPost, "/api/v1/auth/password-reset-request",
		`{"email":"jane@b.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Unknown emails get the same answer.
	rec = env.do(t, http.MethodPost, "/api/v1/auth/password-reset-request",
		`{"email":"ghost@b.com"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	linkToken, err := env.links.Sign(map[string]string{"email": "jane@b.com"})
	require.NoError(t, err)

	rec = env.do(t, http.MethodPost, "/api/v1/auth/password-reset-confirm/"+linkToken,
		`{"new_password":"newpassword","confirm_new_password":"different"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "password_not_matched")

	rec = env.do(t, http.MethodPost, "/api/v1/auth/password-reset-confirm/"+linkToken,
		`{"new_password":"newpassword","confirm_new_password":"newpassword"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/v1/auth/login",
		`{"email":"jane@b.com","password":"oldpassword"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env.login(t, "jane@b.com", "newpassword")
}

func TestDeleteMe(t *testing.T) {
	env := newEnv(t)
	env.signup(t, "jane@b.com", "secret123")
	access, _ := env.login(t, "jane@b.com", "secret123")

	rec := env.do(t, http.MethodDelete, "/api/v1/auth/me", "", access)
	require.Equal(t, http.StatusNoContent, rec.Code)

	user, err := env.users.FindByEmail(context.Background(), "jane@b.com")
	require.NoError(t, err)
	require.Nil(t, user)
}
