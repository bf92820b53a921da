// Package authz は操作に対する認可ポリシーを提供する。
//
// 記事の編集・削除は単一の管理者ユーザーのみに許可される。
// 記事作成とコメント投稿は認証済みユーザー全員に許可される。
package authz

import "github.com/hitoshi/blogman/internal/model"

// Decision は認可判定の結果を表す。
type Decision int

const (
	// Forbidden は操作が拒否されたことを示す。
	Forbidden Decision = iota
	// Allowed は操作が許可されたことを示す。
	Allowed
)

// Policy は認可判定を行う。起動時に構築し、ハンドラーへ注入する。
type Policy struct {
	// AdminUserID は記事の編集・削除を許可する唯一のユーザーID。
	// 既定では最初に登録されたユーザー（ID=1）。
	AdminUserID int64
}

// NewPolicy はPolicyを生成する。
func NewPolicy(adminUserID int64) Policy {
	return Policy{AdminUserID: adminUserID}
}

// ManagePosts は記事の編集・削除の認可を判定する。
// 認証済みかつユーザーIDが管理者IDと一致する場合のみAllowed。
// 他の認証済みユーザーを含め、それ以外はすべてForbidden。
func (p Policy) ManagePosts(identity model.Identity) Decision {
	if identity.Authenticated() && identity.UserID == p.AdminUserID {
		return Allowed
	}
	return Forbidden
}

// CreateContent は記事作成・コメント投稿の認可を判定する。
// 認証済みユーザーであればAllowed。匿名はForbidden
// （ハンドラー側ではエラーではなくログイン画面への誘導として扱う）。
func (p Policy) CreateContent(identity model.Identity) Decision {
	if identity.Authenticated() {
		return Allowed
	}
	return Forbidden
}
