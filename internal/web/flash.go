package web

import (
	"encoding/base64"
	"net/http"
)

// flashCookieName はリダイレクトをまたいで1回だけ表示する
// 通知メッセージを運ぶCookieの名前。
const flashCookieName = "flash"

// SetFlash は次のリクエストで1回だけ表示する通知メッセージを設定する。
// 日本語メッセージをCookieに載せるためbase64でエンコードする。
func SetFlash(w http.ResponseWriter, message string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString([]byte(message)),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// PopFlash は通知メッセージを取り出し、Cookieを破棄する。
// メッセージがない場合は空文字を返す。
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}

	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	decoded, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return ""
	}
	return string(decoded)
}
