package post

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// --- モック定義 ---

type mockPostRepo struct {
	createFn   func(ctx context.Context, post *model.BlogPost) error
	findByIDFn func(ctx context.Context, id int64) (*model.PostWithAuthor, error)
	listFn     func(ctx context.Context) ([]model.PostWithAuthor, error)
	updateFn   func(ctx context.Context, post *model.BlogPost) error
	deleteFn   func(ctx context.Context, id int64) error
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.BlogPost) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepo) FindByID(ctx context.Context, id int64) (*model.PostWithAuthor, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPostRepo) List(ctx context.Context) ([]model.PostWithAuthor, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockPostRepo) Update(ctx context.Context, post *model.BlogPost) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

var _ repository.PostRepository = (*mockPostRepo)(nil)

// passthroughSanitizer はテスト用のサニタイザ。呼び出しの有無を記録する。
type passthroughSanitizer struct {
	called bool
}

func (s *passthroughSanitizer) Sanitize(rawHTML string) string {
	s.called = true
	return rawHTML
}

// --- テスト ---

func TestCreate_SetsAuthorAndTodayDate(t *testing.T) {
	ctx := context.Background()

	var created *model.BlogPost
	repo := &mockPostRepo{
		createFn: func(ctx context.Context, post *model.BlogPost) error {
			post.ID = 10
			created = post
			return nil
		},
	}
	sanitizer := &passthroughSanitizer{}

	svc := NewService(repo, sanitizer)
	fixed := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	p, err := svc.Create(ctx, 7, Input{
		Title:    "Hello",
		Subtitle: "World",
		ImgURL:   "https://example.com/i.png",
		Body:     "<p>body</p>",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if p.AuthorID != 7 {
		t.Errorf("AuthorID = %d, want 7", p.AuthorID)
	}
	if created.Date != "August 29, 2026" {
		t.Errorf("Date = %q, want %q", created.Date, "August 29, 2026")
	}
	if !sanitizer.called {
		t.Error("body must be sanitized before persistence")
	}
}

func TestCreate_DuplicateTitle_ReturnsDomainError(t *testing.T) {
	ctx := context.Background()

	repo := &mockPostRepo{
		createFn: func(ctx context.Context, post *model.BlogPost) error {
			return repository.ErrDuplicateTitle
		},
	}

	svc := NewService(repo, &passthroughSanitizer{})

	_, err := svc.Create(ctx, 1, Input{Title: "Dup"})
	var appErr *model.AppError
	if !errors.As(err, &appErr) || appErr.Code != model.ErrCodeDuplicateTitle {
		t.Fatalf("error = %v, want AppError %s", err, model.ErrCodeDuplicateTitle)
	}
}

func TestUpdate_NeverTouchesAuthorOrDate(t *testing.T) {
	ctx := context.Background()

	var updated *model.BlogPost
	repo := &mockPostRepo{
		updateFn: func(ctx context.Context, post *model.BlogPost) error {
			updated = post
			return nil
		},
	}

	svc := NewService(repo, &passthroughSanitizer{})

	err := svc.Update(ctx, 5, Input{
		Title:    "New title",
		Subtitle: "New subtitle",
		ImgURL:   "https://example.com/new.png",
		Body:     "<p>new</p>",
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	// 更新値にはauthor_id・dateを渡さない（リポジトリのUPDATE文も対象外）
	if updated.AuthorID != 0 {
		t.Errorf("update payload carries AuthorID = %d, want zero", updated.AuthorID)
	}
	if updated.Date != "" {
		t.Errorf("update payload carries Date = %q, want empty", updated.Date)
	}
	if updated.ID != 5 {
		t.Errorf("updated ID = %d, want 5", updated.ID)
	}
}

func TestUpdate_MissingPost_ReturnsNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mockPostRepo{
		updateFn: func(ctx context.Context, post *model.BlogPost) error {
			return repository.ErrNotFound
		},
	}

	svc := NewService(repo, &passthroughSanitizer{})

	err := svc.Update(ctx, 404, Input{Title: "X"})
	var appErr *model.AppError
	if !errors.As(err, &appErr) || appErr.Code != model.ErrCodePostNotFound {
		t.Fatalf("error = %v, want AppError %s", err, model.ErrCodePostNotFound)
	}
}

func TestGet_MissingPost_ReturnsNotFound(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&mockPostRepo{}, &passthroughSanitizer{})

	_, err := svc.Get(ctx, 999)
	var appErr *model.AppError
	if !errors.As(err, &appErr) || appErr.Code != model.ErrCodePostNotFound {
		t.Fatalf("error = %v, want AppError %s", err, model.ErrCodePostNotFound)
	}
}

func TestDelete_RemovesPost(t *testing.T) {
	ctx := context.Background()

	var deletedID int64
	repo := &mockPostRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			deletedID = id
			return nil
		},
	}

	svc := NewService(repo, &passthroughSanitizer{})

	if err := svc.Delete(ctx, 7); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if deletedID != 7 {
		t.Errorf("deleted ID = %d, want 7", deletedID)
	}
}

func TestDelete_MissingPost_ReturnsNotFound(t *testing.T) {
	ctx := context.Background()

	repo := &mockPostRepo{
		deleteFn: func(ctx context.Context, id int64) error {
			return repository.ErrNotFound
		},
	}

	svc := NewService(repo, &passthroughSanitizer{})

	err := svc.Delete(ctx, 999)
	var appErr *model.AppError
	if !errors.As(err, &appErr) || appErr.Code != model.ErrCodePostNotFound {
		t.Fatalf("error = %v, want AppError %s", err, model.ErrCodePostNotFound)
	}
}

// spec §8のラウンドトリップ: 既存記事の値で変更なしの編集を行っても
// 渡る更新値が既存値と一致すること
func TestUpdate_UnchangedFormRoundTrips(t *testing.T) {
	ctx := context.Background()

	existing := model.BlogPost{
		ID:       3,
		AuthorID: 1,
		Title:    "Title",
		Subtitle: "Sub",
		Date:     "August 29, 2026",
		Body:     "<p>body</p>",
		ImgURL:   "https://example.com/i.png",
	}

	var updated *model.BlogPost
	repo := &mockPostRepo{
		updateFn: func(ctx context.Context, post *model.BlogPost) error {
			updated = post
			return nil
		},
	}

	svc := NewService(repo, &passthroughSanitizer{})

	err := svc.Update(ctx, existing.ID, Input{
		Title:    existing.Title,
		Subtitle: existing.Subtitle,
		ImgURL:   existing.ImgURL,
		Body:     existing.Body,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	if updated.Title != existing.Title || updated.Subtitle != existing.Subtitle ||
		updated.ImgURL != existing.ImgURL || updated.Body != existing.Body {
		t.Errorf("round-trip changed fields: %+v", updated)
	}
}
