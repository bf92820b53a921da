package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/mailer"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/web"
)

// Pinger はヘルスチェックが必要とするDB接続確認のインターフェース。
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder middleware.SessionFinder
	UserFinder    middleware.UserFinder
	RateLimiter   *middleware.RateLimiter
	CSRFConfig    middleware.CSRFConfig
	Logger        *slog.Logger

	// 描画・認可・計測
	Renderer  *web.Renderer
	Policy    authz.Policy
	Collector metrics.MetricsCollector
	Gatherer  prometheus.Gatherer

	// サービス
	AuthService    AuthServiceInterface
	AuthConfig     AuthHandlerConfig
	PostService    PostServiceInterface
	CommentService CommentServiceInterface
	MailSender     mailer.Sender

	// ヘルスチェック
	DB Pinger
}

// NewRouter は全ページのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → SecurityHeaders → Logging → Metrics
//	→ RateLimit(General) → Session → CSRF
//
// /healthと/metricsは運用エンドポイントであり、チェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Renderer, deps.Policy, deps.Collector)
	postHandler := NewPostHandler(deps.PostService, deps.CommentService, deps.Renderer, deps.Policy, deps.Collector)
	pageHandler := NewPageHandler(deps.MailSender, deps.Renderer, deps.Policy, deps.Collector)

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.DB))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.Gatherer))

	// --- アプリケーションページ ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRequestIDMiddleware())
		r.Use(middleware.NewRecoveryMiddleware())
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
		r.Use(middleware.NewMetricsMiddleware(deps.Collector))
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder, deps.UserFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		r.NotFound(postHandler.notFound)

		// 閲覧（認証不要）
		r.Get("/", postHandler.Index)
		r.Get("/post/{id}", postHandler.Show)
		r.Get("/about", pageHandler.About)
		r.Get("/contact", pageHandler.ShowContact)
		r.Post("/contact", pageHandler.Contact)

		// 認証（ログイン・登録のPOSTは専用レート制限を追加）
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.AuthMiddleware())
			r.Get("/register", authHandler.ShowRegister)
			r.Post("/register", authHandler.Register)
			r.Get("/login", authHandler.ShowLogin)
			r.Post("/login", authHandler.Login)
		})
		r.Get("/logout", authHandler.Logout)

		// コメント投稿（認証必須）
		r.With(middleware.NewRequireAuthMiddleware(deps.Policy)).
			Post("/post/{id}", postHandler.AddComment)

		// 記事作成（認証必須）
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAuthMiddleware(deps.Policy))
			r.Get("/new-post", postHandler.ShowNew)
			r.Post("/new-post", postHandler.Create)
		})

		// 記事の編集・削除（管理者のみ）
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRequireAdminMiddleware(deps.Policy, postHandler.forbidden))
			r.Get("/edit-post/{id}", postHandler.ShowEdit)
			r.Post("/edit-post/{id}", postHandler.Update)
			r.Get("/delete/{id}", postHandler.Delete)
		})
	})

	return r
}

// NewHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// GET /health
// DB接続を確認し、正常なら200、異常なら503を返す。
func NewHealthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unhealthy"})
				return
			}
		}

		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
