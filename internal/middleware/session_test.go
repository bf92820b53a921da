package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/blogman/internal/model"
)

type mockSessionFinder struct {
	findByIDFunc func(ctx context.Context, id string) (*model.Session, error)
}

func (m *mockSessionFinder) FindByID(ctx context.Context, id string) (*model.Session, error) {
	return m.findByIDFunc(ctx, id)
}

type mockUserFinder struct {
	findByIDFunc func(ctx context.Context, id int64) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return m.findByIDFunc(ctx, id)
}

var _ SessionFinder = (*mockSessionFinder)(nil)
var _ UserFinder = (*mockUserFinder)(nil)

func identityCaptureHandler(captured *model.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestSessionMiddlewareValidSession(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			if id != "valid-session" {
				return nil, nil
			}
			return &model.Session{ID: id, UserID: 42, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}
	users := &mockUserFinder{
		findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Name: "花子", Email: "hanako@example.com"}, nil
		},
	}

	var captured model.Identity
	handler := NewSessionMiddleware(sessions, users)(identityCaptureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !captured.Authenticated() {
		t.Fatal("有効なセッションでは認証済みになるべき")
	}
	if captured.UserID != 42 {
		t.Errorf("UserID = %d, want 42", captured.UserID)
	}
	if captured.Name != "花子" {
		t.Errorf("Name = %q, want 花子", captured.Name)
	}
}

func TestSessionMiddlewareNoCookie(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			t.Fatal("Cookieなしの場合はセッションを検索すべきでない")
			return nil, nil
		},
	}
	users := &mockUserFinder{
		findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, nil
		},
	}

	var captured model.Identity
	handler := NewSessionMiddleware(sessions, users)(identityCaptureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("匿名リクエストは通過すべき: status = %d", rec.Code)
	}
	if captured.Authenticated() {
		t.Error("匿名リクエストは未認証であるべき")
	}
}

func TestSessionMiddlewareExpiredSession(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, nil // 期限切れはリポジトリがnilを返す
		},
	}
	users := &mockUserFinder{
		findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, nil
		},
	}

	var captured model.Identity
	handler := NewSessionMiddleware(sessions, users)(identityCaptureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "stale-session"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if captured.Authenticated() {
		t.Error("無効なセッションは未認証として扱うべき")
	}

	// 無効なセッションCookieは破棄される
	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == SessionCookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("無効なセッションCookieは破棄されるべき")
	}
}

func TestSessionMiddlewareFindError(t *testing.T) {
	sessions := &mockSessionFinder{
		findByIDFunc: func(ctx context.Context, id string) (*model.Session, error) {
			return nil, errors.New("db connection lost")
		},
	}
	users := &mockUserFinder{
		findByIDFunc: func(ctx context.Context, id int64) (*model.User, error) {
			return nil, nil
		},
	}

	var captured model.Identity
	handler := NewSessionMiddleware(sessions, users)(identityCaptureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "any"})
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// DB障害時も閲覧は継続できる（匿名扱い）
	if rec.Code != http.StatusOK {
		t.Errorf("検索失敗時も匿名として通過すべき: status = %d", rec.Code)
	}
	if captured.Authenticated() {
		t.Error("検索失敗時は未認証として扱うべき")
	}
}

func TestIdentityFromContextEmpty(t *testing.T) {
	identity := IdentityFromContext(context.Background())
	if identity.Authenticated() {
		t.Error("コンテキスト未設定の場合は匿名を返すべき")
	}
}

func TestContextWithIdentity(t *testing.T) {
	want := model.Identity{UserID: 7, Name: "taro", Email: "taro@example.com"}
	ctx := ContextWithIdentity(context.Background(), want)

	got := IdentityFromContext(ctx)
	if got != want {
		t.Errorf("IdentityFromContext = %+v, want %+v", got, want)
	}
}
