package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/web"
)

type mockAuthService struct {
	registerFunc func(ctx context.Context, name, email, plaintext string) (*model.Session, *model.User, error)
	loginFunc    func(ctx context.Context, email, plaintext string) (*model.Session, error)
	logoutFunc   func(ctx context.Context, sessionID string) error
}

func (m *mockAuthService) Register(ctx context.Context, name, email, plaintext string) (*model.Session, *model.User, error) {
	return m.registerFunc(ctx, name, email, plaintext)
}

func (m *mockAuthService) Login(ctx context.Context, email, plaintext string) (*model.Session, error) {
	return m.loginFunc(ctx, email, plaintext)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.logoutFunc(ctx, sessionID)
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func testRenderer(t *testing.T) *web.Renderer {
	t.Helper()
	r, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return r
}

func newTestAuthHandler(t *testing.T, service *mockAuthService) *AuthHandler {
	t.Helper()
	return NewAuthHandler(service, AuthHandlerConfig{SessionMaxAge: 86400},
		testRenderer(t), authz.NewPolicy(1), metrics.NoopCollector{})
}

func postForm(path string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == middleware.SessionCookieName {
			return cookie
		}
	}
	return nil
}

func TestRegisterSuccess(t *testing.T) {
	service := &mockAuthService{
		registerFunc: func(ctx context.Context, name, email, plaintext string) (*model.Session, *model.User, error) {
			return &model.Session{ID: "new-session", UserID: 1, ExpiresAt: time.Now().Add(time.Hour)},
				&model.User{ID: 1, Name: name, Email: email}, nil
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{}
	form.Set("name", "太郎")
	form.Set("email", "taro@example.com")
	form.Set("password", "secret-password")

	rec := httptest.NewRecorder()
	h.Register(rec, postForm("/register", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/" {
		t.Errorf("Location = %q, want /", got)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "new-session" {
		t.Error("セッションCookieが設定されるべき")
	}
	if cookie != nil && !cookie.HttpOnly {
		t.Error("セッションCookieはHttpOnlyであるべき")
	}
}

func TestRegisterValidationFailure(t *testing.T) {
	service := &mockAuthService{
		registerFunc: func(ctx context.Context, name, email, plaintext string) (*model.Session, *model.User, error) {
			t.Fatal("検証失敗時はサービスを呼び出すべきでない")
			return nil, nil, nil
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{}
	form.Set("name", "太郎")
	form.Set("email", "not-an-email")
	form.Set("password", "short")

	rec := httptest.NewRecorder()
	h.Register(rec, postForm("/register", form))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	body := rec.Body.String()
	// 入力値は保持される（パスワードは除く）
	if !strings.Contains(body, `value="太郎"`) {
		t.Error("名前の入力値が保持されるべき")
	}
	if strings.Contains(body, "short") {
		t.Error("パスワードはフォームに復元すべきでない")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	service := &mockAuthService{
		registerFunc: func(ctx context.Context, name, email, plaintext string) (*model.Session, *model.User, error) {
			return nil, nil, model.NewEmailAlreadyRegisteredError(email)
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{}
	form.Set("name", "太郎")
	form.Set("email", "taro@example.com")
	form.Set("password", "secret-password")

	rec := httptest.NewRecorder()
	h.Register(rec, postForm("/register", form))

	// 登録済みメールはログイン画面へ誘導される
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/login" {
		t.Errorf("Location = %q, want /login", got)
	}
	if sessionCookie(rec) != nil {
		t.Error("登録失敗時はセッションCookieを設定すべきでない")
	}
}

func TestLoginSuccess(t *testing.T) {
	service := &mockAuthService{
		loginFunc: func(ctx context.Context, email, plaintext string) (*model.Session, error) {
			return &model.Session{ID: "login-session", UserID: 2}, nil
		},
	}
	h := newTestAuthHandler(t, service)

	form := url.Values{}
	form.Set("email", "taro@example.com")
	form.Set("password", "secret-password")

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/login", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	cookie := sessionCookie(rec)
	if cookie == nil || cookie.Value != "login-session" {
		t.Error("セッションCookieが設定されるべき")
	}
}

func TestLoginFailureShowsSharedMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *model.AppError
	}{
		{"メール未登録", model.NewUserNotFoundError()},
		{"パスワード不一致", model.NewInvalidCredentialsError()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &mockAuthService{
				loginFunc: func(ctx context.Context, email, plaintext string) (*model.Session, error) {
					return nil, tt.err
				},
			}
			h := newTestAuthHandler(t, service)

			form := url.Values{}
			form.Set("email", "taro@example.com")
			form.Set("password", "whatever-pass")

			rec := httptest.NewRecorder()
			h.Login(rec, postForm("/login", form))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Fatalf("status = %d, want 422", rec.Code)
			}

			// どちらの失敗でも画面の文言は同一
			if !strings.Contains(rec.Body.String(), "メールアドレスまたはパスワードが正しくありません。") {
				t.Error("共通のログイン失敗メッセージが表示されるべき")
			}
			if sessionCookie(rec) != nil {
				t.Error("ログイン失敗時はセッションCookieを設定すべきでない")
			}
		})
	}
}

func TestLogout(t *testing.T) {
	var deletedSession string
	service := &mockAuthService{
		logoutFunc: func(ctx context.Context, sessionID string) error {
			deletedSession = sessionID
			return nil
		},
	}
	h := newTestAuthHandler(t, service)

	req := httptest.NewRequest(http.MethodGet, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "active-session"})
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if deletedSession != "active-session" {
		t.Errorf("破棄されたセッション = %q, want active-session", deletedSession)
	}
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}

	cookie := sessionCookie(rec)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Error("セッションCookieが削除されるべき")
	}
}

func TestShowLoginRedirectsAuthenticated(t *testing.T) {
	h := newTestAuthHandler(t, &mockAuthService{})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req = req.WithContext(middleware.ContextWithIdentity(req.Context(),
		model.Identity{UserID: 3, Name: "x", Email: "x@example.com"}))
	rec := httptest.NewRecorder()

	h.ShowLogin(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("ログイン済みユーザーはホームへリダイレクトされるべき: status = %d", rec.Code)
	}
}
