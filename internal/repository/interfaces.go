// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/blogman/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// Create はユーザーを作成し、採番されたIDをuser.IDに設定する。
	// メールアドレスが既に登録済みの場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。
	// 照合は保存値との完全一致（大文字小文字を区別する）。
	// 見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// PostRepository は記事データの永続化インターフェース。
type PostRepository interface {
	// Create は記事を作成し、採番されたIDをpost.IDに設定する。
	// タイトルが重複する場合はErrDuplicateTitleを返す。
	Create(ctx context.Context, post *model.BlogPost) error

	// FindByID は指定IDの記事を著者名付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.PostWithAuthor, error)

	// List は全記事を著者名付きでID昇順で返す。
	List(ctx context.Context) ([]model.PostWithAuthor, error)

	// Update は記事のtitle/subtitle/img_url/bodyのみを更新する。
	// author_idとdateは変更しない。タイトルが重複する場合はErrDuplicateTitleを返す。
	// 対象が存在しない場合はErrNotFoundを返す。
	Update(ctx context.Context, post *model.BlogPost) error

	// Delete は指定IDの記事を削除する。コメントはCASCADE削除される。
	// 対象が存在しない場合はErrNotFoundを返す。
	Delete(ctx context.Context, id int64) error
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// Create はコメントを作成し、採番されたIDをcomment.IDに設定する。
	// post_id・author_idの外部キーが存在しない場合はエラーを返す。
	Create(ctx context.Context, comment *model.Comment) error

	// ListByPostID は指定記事のコメントを投稿者情報付きでID昇順で返す。
	ListByPostID(ctx context.Context, postID int64) ([]model.CommentWithAuthor, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID int64) error
	// DeleteExpired は期限切れセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}
