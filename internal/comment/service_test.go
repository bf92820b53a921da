package comment

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
)

// --- モック定義 ---

type mockCommentRepo struct {
	createFn       func(ctx context.Context, comment *model.Comment) error
	listByPostIDFn func(ctx context.Context, postID int64) ([]model.CommentWithAuthor, error)
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockCommentRepo) ListByPostID(ctx context.Context, postID int64) ([]model.CommentWithAuthor, error) {
	if m.listByPostIDFn != nil {
		return m.listByPostIDFn(ctx, postID)
	}
	return nil, nil
}

type mockPostRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.PostWithAuthor, error)
}

func (m *mockPostRepo) Create(_ context.Context, _ *model.BlogPost) error { return nil }
func (m *mockPostRepo) List(_ context.Context) ([]model.PostWithAuthor, error) {
	return nil, nil
}
func (m *mockPostRepo) Update(_ context.Context, _ *model.BlogPost) error { return nil }
func (m *mockPostRepo) Delete(_ context.Context, _ int64) error           { return nil }

func (m *mockPostRepo) FindByID(ctx context.Context, id int64) (*model.PostWithAuthor, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

var _ repository.CommentRepository = (*mockCommentRepo)(nil)
var _ repository.PostRepository = (*mockPostRepo)(nil)

type passthroughSanitizer struct {
	called bool
}

func (s *passthroughSanitizer) Sanitize(rawHTML string) string {
	s.called = true
	return rawHTML
}

// --- テスト ---

func TestAdd_CreatesCommentLinkedToPostAndAuthor(t *testing.T) {
	ctx := context.Background()

	postRepo := &mockPostRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.PostWithAuthor, error) {
			return &model.PostWithAuthor{BlogPost: model.BlogPost{ID: id}}, nil
		},
	}

	var created *model.Comment
	commentRepo := &mockCommentRepo{
		createFn: func(ctx context.Context, comment *model.Comment) error {
			comment.ID = 1
			created = comment
			return nil
		},
	}
	sanitizer := &passthroughSanitizer{}

	svc := NewService(commentRepo, postRepo, sanitizer)

	c, err := svc.Add(ctx, 7, 3, "<p>nice post</p>")
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if c.PostID != 7 || c.AuthorID != 3 {
		t.Errorf("comment links = post %d author %d, want post 7 author 3", c.PostID, c.AuthorID)
	}
	if created == nil {
		t.Fatal("expected exactly one created row")
	}
	if !sanitizer.called {
		t.Error("comment text must be sanitized before persistence")
	}
}

func TestAdd_MissingPost_NoRowCreated(t *testing.T) {
	ctx := context.Background()

	commentRepo := &mockCommentRepo{
		createFn: func(ctx context.Context, comment *model.Comment) error {
			t.Error("no comment row should be created for a missing post")
			return nil
		},
	}

	svc := NewService(commentRepo, &mockPostRepo{}, &passthroughSanitizer{})

	_, err := svc.Add(ctx, 999, 3, "text")
	var appErr *model.AppError
	if !errors.As(err, &appErr) || appErr.Code != model.ErrCodePostNotFound {
		t.Fatalf("error = %v, want AppError %s", err, model.ErrCodePostNotFound)
	}
}

func TestListByPost_ReturnsComments(t *testing.T) {
	ctx := context.Background()

	commentRepo := &mockCommentRepo{
		listByPostIDFn: func(ctx context.Context, postID int64) ([]model.CommentWithAuthor, error) {
			return []model.CommentWithAuthor{
				{Comment: model.Comment{ID: 1, PostID: postID}, AuthorName: "Alice", AuthorEmail: "alice@x.com"},
			}, nil
		},
	}

	svc := NewService(commentRepo, &mockPostRepo{}, &passthroughSanitizer{})

	comments, err := svc.ListByPost(ctx, 7)
	if err != nil {
		t.Fatalf("ListByPost() error = %v", err)
	}
	if len(comments) != 1 || comments[0].AuthorName != "Alice" {
		t.Errorf("comments = %+v, want one comment by Alice", comments)
	}
}
