package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/form"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/post"
	"github.com/hitoshi/blogman/internal/web"
)

// PostServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type PostServiceInterface interface {
	List(ctx context.Context) ([]model.PostWithAuthor, error)
	Get(ctx context.Context, id int64) (*model.PostWithAuthor, error)
	Create(ctx context.Context, authorID int64, in post.Input) (*model.BlogPost, error)
	Update(ctx context.Context, id int64, in post.Input) error
	Delete(ctx context.Context, id int64) error
}

// CommentServiceInterface はコメント投稿に必要なサービスインターフェース。
type CommentServiceInterface interface {
	Add(ctx context.Context, postID, authorID int64, text string) (*model.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]model.CommentWithAuthor, error)
}

// PostHandler は記事の閲覧・管理とコメント投稿のHTTPハンドラー。
type PostHandler struct {
	base
	posts     PostServiceInterface
	comments  CommentServiceInterface
	collector metrics.MetricsCollector
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(posts PostServiceInterface, comments CommentServiceInterface, renderer *web.Renderer, policy authz.Policy, collector metrics.MetricsCollector) *PostHandler {
	return &PostHandler{
		base:      base{renderer: renderer, policy: policy},
		posts:     posts,
		comments:  comments,
		collector: collector,
	}
}

// Index は全記事の一覧を表示する。
// GET /
func (h *PostHandler) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := h.pageData(w, r)
	data.Title = "ホーム"
	data.Posts = posts
	h.renderer.Render(w, http.StatusOK, "index", data)
}

// Show は記事詳細とコメント一覧を表示する。
// GET /post/{id}
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	h.renderShow(w, r, id, http.StatusOK, nil, "")
}

// AddComment は記事へのコメント投稿を処理する。
// POST /post/{id}（RequireAuthミドルウェアの内側）
// 成功時は同じ記事ページへリダイレクトする。
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	text := r.PostFormValue("comment_text")

	v := form.NewValidator()
	v.Required("comment_text", text)
	if !v.Valid() {
		h.renderShow(w, r, id, http.StatusUnprocessableEntity, v.Errors, text)
		return
	}

	identity := h.pageData(w, r).Identity
	if _, err := h.comments.Add(r.Context(), id, identity.UserID, text); err != nil {
		h.renderError(w, r, err)
		return
	}

	h.collector.RecordCommentCreated()
	http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
}

// renderShow は記事詳細ページを描画する。コメント投稿の検証失敗時は
// エラーと入力値を保持したまま再表示する。
func (h *PostHandler) renderShow(w http.ResponseWriter, r *http.Request, id int64, statusCode int, formErrors form.Errors, commentText string) {
	p, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	data := h.pageData(w, r)
	data.Title = p.Title
	data.Post = p
	data.Comments = comments
	data.Errors = formErrors
	data.Form = map[string]string{"comment_text": commentText}
	h.renderer.Render(w, statusCode, "post", data)
}

// ShowNew は記事作成フォームを表示する。
// GET /new-post（RequireAuthミドルウェアの内側）
func (h *PostHandler) ShowNew(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r)
	data.Title = "新規記事"
	data.Form = map[string]string{"action": "/new-post"}
	h.renderer.Render(w, http.StatusOK, "make-post", data)
}

// Create は記事作成フォームを処理する。
// POST /new-post（RequireAuthミドルウェアの内側）
// 成功時は作成された記事ページへリダイレクトする。
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	in, v := postInput(r)
	if !v.Valid() {
		h.renderMakePost(w, r, "新規記事", "/new-post", in, v.Errors)
		return
	}

	identity := h.pageData(w, r).Identity
	created, err := h.posts.Create(r.Context(), identity.UserID, in)
	if err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) && appErr.Code == model.ErrCodeDuplicateTitle {
			h.renderMakePost(w, r, "新規記事", "/new-post", in,
				form.Errors{"title": appErr.Message})
			return
		}
		h.renderError(w, r, err)
		return
	}

	h.collector.RecordPostCreated()
	web.SetFlash(w, "記事を作成しました。")
	http.Redirect(w, r, fmt.Sprintf("/post/%d", created.ID), http.StatusSeeOther)
}

// ShowEdit は記事編集フォームを既存の値で埋めて表示する。
// GET /edit-post/{id}（RequireAdminミドルウェアの内側）
func (h *PostHandler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	p, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	in := post.Input{Title: p.Title, Subtitle: p.Subtitle, ImgURL: p.ImgURL, Body: p.Body}
	h.renderMakePost(w, r, "記事の編集", fmt.Sprintf("/edit-post/%d", id), in, nil)
}

// Update は記事編集フォームを処理する。
// POST /edit-post/{id}（RequireAdminミドルウェアの内側）
// author_idと作成日は変更されない。成功時は記事ページへリダイレクトする。
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	action := fmt.Sprintf("/edit-post/%d", id)

	in, v := postInput(r)
	if !v.Valid() {
		h.renderMakePost(w, r, "記事の編集", action, in, v.Errors)
		return
	}

	if err := h.posts.Update(r.Context(), id, in); err != nil {
		var appErr *model.AppError
		if errors.As(err, &appErr) && appErr.Code == model.ErrCodeDuplicateTitle {
			h.renderMakePost(w, r, "記事の編集", action, in,
				form.Errors{"title": appErr.Message})
			return
		}
		h.renderError(w, r, err)
		return
	}

	web.SetFlash(w, "記事を更新しました。")
	http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
}

// Delete は記事を削除する。コメントも連動して削除される。
// GET /delete/{id}（RequireAdminミドルウェアの内側）
// 成功時はホームへリダイレクトする。
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		h.notFound(w, r)
		return
	}

	if err := h.posts.Delete(r.Context(), id); err != nil {
		h.renderError(w, r, err)
		return
	}

	web.SetFlash(w, "記事を削除しました。")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// renderMakePost は記事作成・編集の共通フォームを描画する。
func (h *PostHandler) renderMakePost(w http.ResponseWriter, r *http.Request, title, action string, in post.Input, formErrors form.Errors) {
	data := h.pageData(w, r)
	data.Title = title
	data.Errors = formErrors
	data.Form = map[string]string{
		"action":   action,
		"title":    in.Title,
		"subtitle": in.Subtitle,
		"img_url":  in.ImgURL,
		"body":     in.Body,
	}
	statusCode := http.StatusOK
	if len(formErrors) > 0 {
		statusCode = http.StatusUnprocessableEntity
	}
	h.renderer.Render(w, statusCode, "make-post", data)
}

// postInput は記事フォームの入力を取り出して検証する。
func postInput(r *http.Request) (post.Input, *form.Validator) {
	in := post.Input{
		Title:    r.PostFormValue("title"),
		Subtitle: r.PostFormValue("subtitle"),
		ImgURL:   r.PostFormValue("img_url"),
		Body:     r.PostFormValue("body"),
	}

	v := form.NewValidator()
	v.Required("title", in.Title)
	v.Required("subtitle", in.Subtitle)
	v.Required("img_url", in.ImgURL)
	v.URL("img_url", in.ImgURL)
	v.Required("body", in.Body)

	return in, v
}
