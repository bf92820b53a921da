// Package gravatar はコメント投稿者のアバターURLを生成する。
package gravatar

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// デフォルトのアバターパラメータ。サイズ100px、retroスタイル、
// レーティングG(全年齢)。
const (
	defaultSize    = 100
	defaultStyle   = "retro"
	defaultRating  = "g"
	gravatarOrigin = "https://www.gravatar.com/avatar"
)

// URL はメールアドレスからGravatarのアバターURLを生成する。
// ハッシュ計算前にアドレスの前後空白を除去し小文字に正規化する。
// MD5はGravatarのアドレス識別子仕様であり、秘匿用途ではない。
func URL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	hash := md5.Sum([]byte(normalized))
	return fmt.Sprintf("%s/%x?s=%d&d=%s&r=%s",
		gravatarOrigin, hash, defaultSize, defaultStyle, defaultRating)
}
