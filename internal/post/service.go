// Package post は記事管理のドメインロジックを提供する。
package post

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/blogman/internal/model"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/security"
)

// DateFormat は記事の表示用作成日のフォーマット。
// 元ブログの表記（例: "August 29, 2026"）に合わせる。
const DateFormat = "January 02, 2006"

// Input は記事の作成・編集フォームから受け取る入力。
// 編集時もAuthorIDとDateは含まれない（作成時に確定し不変のため）。
type Input struct {
	Title    string
	Subtitle string
	ImgURL   string
	Body     string
}

// Service は記事管理のサービス層。
type Service struct {
	postRepo  repository.PostRepository
	sanitizer security.ContentSanitizerService

	// now はテストで現在時刻を固定するために差し替え可能にしている。
	now func() time.Time
}

// NewService はServiceを生成する。
func NewService(postRepo repository.PostRepository, sanitizer security.ContentSanitizerService) *Service {
	return &Service{
		postRepo:  postRepo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// List は全記事を著者名付きで返す。
func (s *Service) List(ctx context.Context) ([]model.PostWithAuthor, error) {
	posts, err := s.postRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return posts, nil
}

// Get は指定IDの記事を返す。存在しない場合はPostNotFoundエラーを返す。
func (s *Service) Get(ctx context.Context, id int64) (*model.PostWithAuthor, error) {
	p, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewPostNotFoundError()
	}
	return p, nil
}

// Create は認証済みユーザーの記事を作成する。
// author_idは作成者のID、dateは当日の表示用文字列が必ず設定される。
// 本文は保存前にサニタイズされる。タイトル重複はDuplicateTitleエラーを返す。
func (s *Service) Create(ctx context.Context, authorID int64, in Input) (*model.BlogPost, error) {
	now := s.now()

	p := &model.BlogPost{
		AuthorID:  authorID,
		Title:     in.Title,
		Subtitle:  in.Subtitle,
		Date:      now.Format(DateFormat),
		Body:      s.sanitizer.Sanitize(in.Body),
		ImgURL:    in.ImgURL,
		CreatedAt: now,
	}

	if err := s.postRepo.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return nil, model.NewDuplicateTitleError(in.Title)
		}
		return nil, fmt.Errorf("記事の作成に失敗しました: %w", err)
	}

	slog.Info("post created",
		slog.Int64("post_id", p.ID),
		slog.Int64("author_id", authorID),
	)

	return p, nil
}

// Update は記事のtitle/subtitle/img_url/bodyを更新する。
// author_idとdateは一切変更されない。
// 対象が存在しない場合はPostNotFound、タイトル重複はDuplicateTitleエラーを返す。
func (s *Service) Update(ctx context.Context, id int64, in Input) error {
	p := &model.BlogPost{
		ID:       id,
		Title:    in.Title,
		Subtitle: in.Subtitle,
		ImgURL:   in.ImgURL,
		Body:     s.sanitizer.Sanitize(in.Body),
	}

	if err := s.postRepo.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewPostNotFoundError()
		}
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return model.NewDuplicateTitleError(in.Title)
		}
		return fmt.Errorf("記事の更新に失敗しました: %w", err)
	}

	slog.Info("post updated", slog.Int64("post_id", id))
	return nil
}

// Delete は指定IDの記事を削除する。コメントはストレージ層でCASCADE削除される。
// 対象が存在しない場合はPostNotFoundエラーを返す。
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.postRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewPostNotFoundError()
		}
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}

	slog.Info("post deleted", slog.Int64("post_id", id))
	return nil
}
