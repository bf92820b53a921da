package handler

import (
	"net/http"

	"github.com/hitoshi/blogman/internal/authz"
	"github.com/hitoshi/blogman/internal/form"
	"github.com/hitoshi/blogman/internal/mailer"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/web"
)

// PageHandler は固定ページ（about, contact）のHTTPハンドラー。
type PageHandler struct {
	base
	sender    mailer.Sender
	collector metrics.MetricsCollector
}

// NewPageHandler はPageHandlerを生成する。
func NewPageHandler(sender mailer.Sender, renderer *web.Renderer, policy authz.Policy, collector metrics.MetricsCollector) *PageHandler {
	return &PageHandler{
		base:      base{renderer: renderer, policy: policy},
		sender:    sender,
		collector: collector,
	}
}

// About は自己紹介ページを表示する。
// GET /about
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r)
	data.Title = "このブログについて"
	h.renderer.Render(w, http.StatusOK, "about", data)
}

// ShowContact はお問い合わせフォームを表示する。
// GET /contact
func (h *PageHandler) ShowContact(w http.ResponseWriter, r *http.Request) {
	data := h.pageData(w, r)
	data.Title = "お問い合わせ"
	h.renderer.Render(w, http.StatusOK, "contact", data)
}

// Contact はお問い合わせフォームを処理し、メッセージをメールで中継する。
// POST /contact
// 送信失敗時はメッセージを破棄せず、入力値を保持したまま再表示する。
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	msg := mailer.ContactMessage{
		Name:    r.PostFormValue("name"),
		Email:   r.PostFormValue("email"),
		Phone:   r.PostFormValue("phone"),
		Message: r.PostFormValue("message"),
	}

	v := form.NewValidator()
	v.Required("name", msg.Name)
	v.Required("email", msg.Email)
	v.Email("email", msg.Email)
	v.Required("message", msg.Message)

	if !v.Valid() {
		h.renderContact(w, r, http.StatusUnprocessableEntity, msg, v.Errors, "")
		return
	}

	if err := h.sender.Send(r.Context(), msg); err != nil {
		h.collector.RecordMailRelay(false)
		h.renderContact(w, r, http.StatusBadGateway, msg, nil,
			"メッセージの送信に失敗しました。しばらく待ってから、もう一度送信してください。")
		return
	}

	h.collector.RecordMailRelay(true)
	web.SetFlash(w, "メッセージを送信しました。")
	http.Redirect(w, r, "/contact", http.StatusSeeOther)
}

// renderContact はお問い合わせフォームを入力値付きで描画する。
func (h *PageHandler) renderContact(w http.ResponseWriter, r *http.Request, statusCode int, msg mailer.ContactMessage, formErrors form.Errors, flash string) {
	data := h.pageData(w, r)
	data.Title = "お問い合わせ"
	data.Errors = formErrors
	data.Form = map[string]string{
		"name":    msg.Name,
		"email":   msg.Email,
		"phone":   msg.Phone,
		"message": msg.Message,
	}
	if flash != "" {
		data.Flash = flash
	}
	h.renderer.Render(w, statusCode, "contact", data)
}
