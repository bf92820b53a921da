// Package comment は記事コメントのドメインロジックを提供する。
package comment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/security"
)

// Service はコメントのサービス層。
// コメントの編集・削除は提供しない（公開された操作が存在しないため）。
type Service struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	sanitizer   security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	sanitizer security.ContentSanitizerService,
) *Service {
	return &Service{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		sanitizer:   sanitizer,
	}
}

// Add は認証済みユーザーのコメントを指定記事に追加する。
// 記事が存在しない場合はPostNotFoundエラーを返し、行は作成されない。
// テキストは保存前にサニタイズされる。
func (s *Service) Add(ctx context.Context, postID, authorID int64, text string) (*model.Comment, error) {
	p, err := s.postRepo.FindByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPostNotFoundError()
	}

	c := &model.Comment{
		PostID:    postID,
		AuthorID:  authorID,
		Text:      s.sanitizer.Sanitize(text),
		CreatedAt: time.Now(),
	}

	if err := s.commentRepo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("コメントの作成に失敗しました: %w", err)
	}

	slog.Info("comment created",
		slog.Int64("comment_id", c.ID),
		slog.Int64("post_id", postID),
		slog.Int64("author_id", authorID),
	)

	return c, nil
}

// ListByPost は指定記事のコメントを投稿者情報付きで返す。
func (s *Service) ListByPost(ctx context.Context, postID int64) ([]model.CommentWithAuthor, error) {
	comments, err := s.commentRepo.ListByPostID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("コメント一覧の取得に失敗しました: %w", err)
	}
	return comments, nil
}
