// Package form はHTMLフォームの入力検証を提供する。
//
// 検証はサーバー側で必ず実施する。失敗時はフィールド名を
// キーとするエラーメッセージのマップを返し、ハンドラーが
// 入力値を保持したままフォームを再表示できるようにする。
package form

import (
	"net/mail"
	"net/url"
	"strings"
)

// Errors はフィールド名からエラーメッセージへのマップ。
type Errors map[string]string

// Valid は検証エラーがないことを返す。
func (e Errors) Valid() bool {
	return len(e) == 0
}

// Add はフィールドの最初のエラーのみを記録する。
func (e Errors) Add(field, message string) {
	if _, exists := e[field]; !exists {
		e[field] = message
	}
}

// Validator はフォームの検証を蓄積する。
type Validator struct {
	Errors Errors
}

// NewValidator はValidatorを生成する。
func NewValidator() *Validator {
	return &Validator{Errors: Errors{}}
}

// Required は値が空白のみでないことを検証する。
func (v *Validator) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.Errors.Add(field, "このフィールドは必須です。")
	}
}

// Email は値がメールアドレスとして妥当なことを検証する。
// 表示名付きの形式 ("Taro <taro@example.com>") は受け付けない。
func (v *Validator) Email(field, value string) {
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value {
		v.Errors.Add(field, "有効なメールアドレスを入力してください。")
		return
	}
	if !strings.Contains(value, "@") || strings.HasPrefix(value, "@") {
		v.Errors.Add(field, "有効なメールアドレスを入力してください。")
	}
}

// URL は値がhttpまたはhttpsの絶対URLであることを検証する。
func (v *Validator) URL(field, value string) {
	u, err := url.Parse(value)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		v.Errors.Add(field, "http(s)形式のURLを入力してください。")
	}
}

// MinLength は値が最低文字数を満たすことを検証する。
// 文字数はルーン単位で数える。
func (v *Validator) MinLength(field, value string, min int) {
	if len([]rune(strings.TrimSpace(value))) < min {
		v.Errors.Add(field, "入力が短すぎます。")
	}
}

// Valid は全検証を通過したことを返す。
func (v *Validator) Valid() bool {
	return v.Errors.Valid()
}
