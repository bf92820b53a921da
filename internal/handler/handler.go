// Package handler はHTTPハンドラーを提供する。
//
// 全ページはサーバー側でHTMLを描画する。フォームのPOSTは
// 成功時にリダイレクト（PRGパターン）、検証失敗時は入力値を
// 保持したまま422でフォームを再表示する。
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/web"
)

// base は各ハンドラーが共有する描画まわりの依存。
type base struct {
	renderer *web.Renderer
	policy   authz.Policy
}

// pageData は全ページ共通の描画データを組み立てる。
// 認証情報・フラッシュメッセージ・CSRFトークンを設定する。
func (b *base) pageData(w http.ResponseWriter, r *http.Request) web.Data {
	identity := middleware.IdentityFromContext(r.Context())
	return web.Data{
		Identity:  identity,
		IsAdmin:   b.policy.ManagePosts(identity) == authz.Allowed,
		Flash:     web.PopFlash(w, r),
		CSRFToken: middleware.CSRFTokenFromRequest(w, r),
	}
}

// renderError はAppErrorをカテゴリに応じたステータスコードで
// エラーページとして描画する。AppError以外は500として扱い、
// 詳細はログにのみ残す。
func (b *base) renderError(w http.ResponseWriter, r *http.Request, err error) {
	data := b.pageData(w, r)

	var appErr *model.AppError
	if !errors.As(err, &appErr) {
		slog.Error("unhandled error", slog.String("error", err.Error()))
		data.Title = "エラー"
		data.Error = &model.AppError{
			Message: "内部エラーが発生しました。",
			Action:  "しばらく待ってから再度お試しください。",
		}
		b.renderer.Render(w, http.StatusInternalServerError, "error", data)
		return
	}

	data.Title = "エラー"
	data.Error = appErr
	b.renderer.Render(w, statusForError(appErr), "error", data)
}

// notFound は404エラーページを描画する。ルーターのNotFoundハンドラー用。
func (b *base) notFound(w http.ResponseWriter, r *http.Request) {
	data := b.pageData(w, r)
	data.Title = "ページが見つかりません"
	data.Error = &model.AppError{
		Message: "お探しのページは見つかりませんでした。",
		Action:  "URLを確認するか、ホームへ戻ってください。",
	}
	b.renderer.Render(w, http.StatusNotFound, "error", data)
}

// forbidden は403エラーページを描画する。RequireAdminミドルウェア用。
func (b *base) forbidden(w http.ResponseWriter, r *http.Request) {
	data := b.pageData(w, r)
	data.Title = "権限がありません"
	data.Error = model.NewForbiddenError()
	b.renderer.Render(w, http.StatusForbidden, "error", data)
}

// statusForError はAppErrorのコードとカテゴリからHTTPステータスを決める。
func statusForError(appErr *model.AppError) int {
	switch appErr.Code {
	case model.ErrCodePostNotFound:
		return http.StatusNotFound
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeMailTransport:
		return http.StatusBadGateway
	}
	switch appErr.Category {
	case "validation":
		return http.StatusUnprocessableEntity
	case "auth":
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// idParam はURLパスの{id}を数値として取り出す。
// 数値でない場合はfalseを返し、呼び出し側は404として扱う。
func idParam(r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
