// Package web はHTMLテンプレートの描画を提供する。
//
// テンプレートはバイナリに埋め込む。各ページはlayout.htmlと
// 組み合わせてパースし、ページ名で検索する。
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"github.com/hitoshi/blogman/internal/form"
	"github.com/hitoshi/blogman/internal/gravatar"
	"github.com/hitoshi/blogman/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutName = "templates/layout.html"

// Data はテンプレートに渡す描画データ。
// ページごとに必要なフィールドのみを設定する。
type Data struct {
	Title     string
	Identity  model.Identity
	IsAdmin   bool
	Flash     string
	CSRFToken string

	// フォーム再表示用
	Errors form.Errors
	Form   map[string]string

	// ページ固有データ
	Posts    []model.PostWithAuthor
	Post     *model.PostWithAuthor
	Comments []model.CommentWithAuthor
	Error    *model.AppError
}

// Renderer は埋め込みテンプレートを描画する。
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer は全ページテンプレートをレイアウトと組み合わせてパースする。
// パース失敗は設定ミスであり、起動時に検出してエラーを返す。
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		// コメント投稿者のアバターURL
		"gravatar": gravatar.URL,
		// sanitize済みの記事本文をエスケープせずに出力する。
		// 必ずContentSanitizerを通した値にのみ使用すること。
		"safeHTML": func(s string) template.HTML {
			return template.HTML(s)
		},
	}

	pages, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded templates: %w", err)
	}

	templates := map[string]*template.Template{}
	for _, page := range pages {
		if page.Name() == "layout.html" {
			continue
		}
		name := strings.TrimSuffix(page.Name(), ".html")
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			layoutName, path.Join("templates", page.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page.Name(), err)
		}
		templates[name] = t
	}

	return &Renderer{templates: templates}, nil
}

// Render は指定ページをレイアウト付きで描画する。
// 描画はバッファに対して行い、成功した場合のみレスポンスに書き込む。
// 部分的に描画されたHTMLをユーザーに返さないため。
func (r *Renderer) Render(w http.ResponseWriter, statusCode int, page string, data Data) {
	t, ok := r.templates[page]
	if !ok {
		slog.Error("template not found", slog.String("page", page))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		slog.Error("failed to render template",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(statusCode)
	buf.WriteTo(w)
}

// Pages は登録されているページ名の一覧を返す。テスト用。
func (r *Renderer) Pages() []string {
	names := make([]string, 0, len(r.templates))
	for name := range r.templates {
		names = append(names, name)
	}
	return names
}
