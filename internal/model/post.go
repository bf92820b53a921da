package model

import "time"

// BlogPost はブログ記事を表す。
// AuthorIDとDateは作成時に確定し、編集操作では変更されない。
type BlogPost struct {
	ID        int64
	AuthorID  int64
	Title     string
	Subtitle  string
	Date      string // 表示用の作成日（例: "January 2, 2006"形式）
	Body      string
	ImgURL    string
	CreatedAt time.Time
}

// Comment は記事へのコメントを表す。
// 公開された操作からは編集も削除もされない。
type Comment struct {
	ID        int64
	PostID    int64
	AuthorID  int64
	Text      string
	CreatedAt time.Time
}

// PostWithAuthor は記事と著者名を結合した一覧・詳細表示用の構造体。
type PostWithAuthor struct {
	BlogPost
	AuthorName string
}

// CommentWithAuthor はコメントと投稿者情報を結合した表示用の構造体。
// AuthorEmailはgravatarのアバターURL生成に使用する。
type CommentWithAuthor struct {
	Comment
	AuthorName  string
	AuthorEmail string
}
