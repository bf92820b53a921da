// Package password はパスワードの塩付きハッシュ化と検証を提供する。
//
// ハッシュ形式は "pbkdf2:sha256:<iterations>$<hexsalt>$<hexkey>"。
// 平文パスワードは保存もログ出力もしない。
package password

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// Iterations はPBKDF2の反復回数。
	Iterations = 600000
	saltLen    = 16
	keyLen     = 32
	prefix     = "pbkdf2:sha256"
)

// Hash は平文パスワードから塩付きハッシュを生成する。
// 呼び出しごとにランダムな塩を使うため、同じ平文でも結果は毎回異なる。
func Hash(plaintext string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key := pbkdf2.Key([]byte(plaintext), salt, Iterations, keyLen, sha256.New)

	return fmt.Sprintf("%s:%d$%s$%s",
		prefix, Iterations,
		hex.EncodeToString(salt),
		hex.EncodeToString(key),
	), nil
}

// Verify は平文パスワードと保存済みハッシュを定数時間で比較する。
// 保存値が不正な形式の場合もfalseを返す（フェイルクローズ）。
func Verify(plaintext, credential string) bool {
	iterations, salt, key, ok := decode(credential)
	if !ok {
		return false
	}

	derived := pbkdf2.Key([]byte(plaintext), salt, iterations, len(key), sha256.New)
	return subtle.ConstantTimeCompare(derived, key) == 1
}

// decode は保存形式のハッシュを反復回数・塩・鍵に分解する。
func decode(credential string) (iterations int, salt, key []byte, ok bool) {
	rest, found := strings.CutPrefix(credential, prefix+":")
	if !found {
		return 0, nil, nil, false
	}

	parts := strings.Split(rest, "$")
	if len(parts) != 3 {
		return 0, nil, nil, false
	}

	iterations, err := strconv.Atoi(parts[0])
	if err != nil || iterations <= 0 {
		return 0, nil, nil, false
	}

	salt, err = hex.DecodeString(parts[1])
	if err != nil || len(salt) == 0 {
		return 0, nil, nil, false
	}

	key, err = hex.DecodeString(parts[2])
	if err != nil || len(key) == 0 {
		return 0, nil, nil, false
	}

	return iterations, salt, key, true
}
