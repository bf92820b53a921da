package middleware

import (
	"net/http"

	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/web"
)

// NewRequireAuthMiddleware は記事作成・コメント投稿を認証済みユーザーに
// 制限するミドルウェアを返す。認可に失敗した場合はログイン画面に
// リダイレクトし、ログインが必要な旨をフラッシュメッセージで表示する。
func NewRequireAuthMiddleware(policy authz.Policy) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if policy.CreateContent(identity) != authz.Allowed {
				web.SetFlash(w, "この操作にはログインが必要です。")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewRequireAdminMiddleware は記事管理操作を管理者のみに制限する
// ミドルウェアを返す。未認証はログイン画面へリダイレクトし、
// 認証済みだが管理者でない場合は403を返す。
// forbidden には403画面の描画処理を渡す。
func NewRequireAdminMiddleware(policy authz.Policy, forbidden http.HandlerFunc) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := IdentityFromContext(r.Context())
			if !identity.Authenticated() {
				web.SetFlash(w, "この操作にはログインが必要です。")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if policy.ManagePosts(identity) != authz.Allowed {
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
