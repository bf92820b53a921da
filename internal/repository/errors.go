package repository

import (
	"errors"

	"github.com/lib/pq"
)

// 永続化層の定義済みエラー。サービス層でドメインエラーへ変換する。
var (
	// ErrNotFound は更新・削除対象の行が存在しないことを示す。
	ErrNotFound = errors.New("repository: row not found")
	// ErrDuplicateEmail はusers.emailのUNIQUE制約違反を示す。
	ErrDuplicateEmail = errors.New("repository: email already registered")
	// ErrDuplicateTitle はblog_posts.titleのUNIQUE制約違反を示す。
	ErrDuplicateTitle = errors.New("repository: title already exists")
)

// uniqueViolation はPostgreSQLのUNIQUE制約違反のエラーコード。
const uniqueViolation = "23505"

// isUniqueViolation はerrが指定制約のUNIQUE違反かどうかを判定する。
// 同時リクエストによる重複INSERTはこの制約違反として検出される。
func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == uniqueViolation && pqErr.Constraint == constraint
}
