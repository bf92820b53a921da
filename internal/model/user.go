// Package model はドメインモデルを定義する。
package model

import "time"

// User はブログの登録ユーザーを表す。
// 登録後にプロフィールを編集・削除する経路は存在しない。
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity はリクエストの呼び出し主を表す。
// ゼロ値は匿名（未認証）を意味する。
type Identity struct {
	UserID int64
	Name   string
	Email  string
}

// Authenticated は認証済みかどうかを返す。
func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// IdentityOf はユーザーからIdentityを生成する。nilの場合は匿名を返す。
func IdentityOf(u *User) Identity {
	if u == nil {
		return Identity{}
	}
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email}
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}
