package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/blogman/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した記事リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// Create は記事を作成し、採番されたIDをpost.IDに設定する。
// タイトルの一意性はUNIQUE制約で保証される。
// author_idは存在するユーザーを参照していなければならない（外部キー制約）。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.BlogPost) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		post.AuthorID, post.Title, post.Subtitle, post.Date, post.Body, post.ImgURL, post.CreatedAt,
	).Scan(&post.ID)

	if err != nil {
		if isUniqueViolation(err, "blog_posts_title_key") {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("failed to insert post: %w", err)
	}

	return nil
}

// FindByID は指定IDの記事を著者名付きで取得する。見つからない場合はnilを返す。
func (r *PostgresPostRepo) FindByID(ctx context.Context, id int64) (*model.PostWithAuthor, error) {
	post := &model.PostWithAuthor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url, p.created_at, u.name
		 FROM blog_posts p
		 JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1`,
		id,
	).Scan(&post.ID, &post.AuthorID, &post.Title, &post.Subtitle, &post.Date,
		&post.Body, &post.ImgURL, &post.CreatedAt, &post.AuthorName)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find post by ID: %w", err)
	}

	return post, nil
}

// List は全記事を著者名付きでID昇順で返す。
func (r *PostgresPostRepo) List(ctx context.Context) ([]model.PostWithAuthor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url, p.created_at, u.name
		 FROM blog_posts p
		 JOIN users u ON u.id = p.author_id
		 ORDER BY p.id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	var posts []model.PostWithAuthor
	for rows.Next() {
		var post model.PostWithAuthor
		if err := rows.Scan(&post.ID, &post.AuthorID, &post.Title, &post.Subtitle, &post.Date,
			&post.Body, &post.ImgURL, &post.CreatedAt, &post.AuthorName); err != nil {
			return nil, fmt.Errorf("failed to scan post row: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate post rows: %w", err)
	}

	return posts, nil
}

// Update は記事のtitle/subtitle/img_url/bodyのみを更新する。
// author_idとdateはUPDATE文に含めないことで不変性を保証する。
func (r *PostgresPostRepo) Update(ctx context.Context, post *model.BlogPost) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE blog_posts
		 SET title = $1, subtitle = $2, img_url = $3, body = $4
		 WHERE id = $5`,
		post.Title, post.Subtitle, post.ImgURL, post.Body, post.ID,
	)
	if err != nil {
		if isUniqueViolation(err, "blog_posts_title_key") {
			return ErrDuplicateTitle
		}
		return fmt.Errorf("failed to update post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete は指定IDの記事を削除する。コメントはCASCADE削除される。
func (r *PostgresPostRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM blog_posts WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
