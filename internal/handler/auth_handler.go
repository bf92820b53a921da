package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/form"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/web"
)

// passwordMinLength は新規登録時のパスワードの最低文字数。
const passwordMinLength = 8

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Register(ctx context.Context, name, email, plaintext string) (*model.Session, *model.User, error)
	Login(ctx context.Context, email, plaintext string) (*model.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は登録・ログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	base
	service   AuthServiceInterface
	config    AuthHandlerConfig
	collector metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, renderer *web.Renderer, policy authz.Policy, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		base:      base{renderer: renderer, policy: policy},
		service:   service,
		config:    config,
		collector: collector,
	}
}

// ShowRegister は新規登録フォームを表示する。
// GET /register
func (h *AuthHandler) ShowRegister(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r)
	if data.Identity.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data.Title = "新規登録"
	h.renderer.Render(w, http.StatusOK, "register", data)
}

// Register は新規登録フォームを処理する。
// POST /register
// 成功時はセッションCookieを設定してホームへリダイレクトする。
// 登録済みメールの場合は再登録を拒否し、ログインを促す。
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	name := r.PostFormValue("name")
	email := r.PostFormValue("email")
	plaintext := r.PostFormValue("password")

	v := form.NewValidator()
	v.Required("name", name)
	v.Required("email", email)
	v.Email("email", email)
	v.Required("password", plaintext)
	v.MinLength("password", plaintext, passwordMinLength)

	if !v.Valid() {
		data := h.pageData(w, r)
		data.Title = "新規登録"
		data.Errors = v.Errors
		data.Form = map[string]string{"name": name, "email": email}
		h.renderer.Render(w, http.StatusUnprocessableEntity, "register", data)
		return
	}

	session, _, err := h.service.Register(r.Context(), name, email, plaintext)
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) && appErr.Code == model.ErrCodeEmailAlreadyRegistered {
			// 登録済みメール: ログイン画面へ誘導する
			web.SetFlash(w, appErr.Message)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		h.renderError(w, r, err)
		return
	}

	h.collector.RecordRegistration()
	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ShowLogin はログインフォームを表示する。
// GET /login
func (h *AuthHandler) ShowLogin(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r)
	if data.Identity.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	data.Title = "ログイン"
	h.renderer.Render(w, http.StatusOK, "login", data)
}

// Login はログインフォームを処理する。
// POST /login
// 失敗時はメール未登録・パスワード不一致を文言で区別せず、
// フォームを再表示する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	email := r.PostFormValue("email")
	plaintext := r.PostFormValue("password")

	v := form.NewValidator()
	v.Required("email", email)
	v.Required("password", plaintext)

	if !v.Valid() {
		data := h.pageData(w, r)
		data.Title = "ログイン"
		data.Errors = v.Errors
		data.Form = map[string]string{"email": email}
		h.renderer.Render(w, http.StatusUnprocessableEntity, "login", data)
		return
	}

	session, err := h.service.Login(r.Context(), email, plaintext)
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) {
			h.collector.RecordLogin(false)
			// 内部コードはログのみに残し、画面の文言は原因を区別しない
			slog.Warn("login failed", slog.String("code", appErr.Code))

			data := h.pageData(w, r)
			data.Title = "ログイン"
			data.Errors = form.Errors{"email": appErr.Message}
			data.Form = map[string]string{"email": email}
			h.renderer.Render(w, http.StatusUnprocessableEntity, "login", data)
			return
		}
		h.renderError(w, r, err)
		return
	}

	h.collector.RecordLogin(true)
	h.setSessionCookie(w, session.ID)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout はセッションを破棄し、Cookieを削除してホームへリダイレクトする。
// GET /logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil && cookie.Value != "" {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			slog.Error("failed to logout", slog.String("error", err.Error()))
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// setSessionCookie はセッションCookieを設定する（HTTP Only）。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
