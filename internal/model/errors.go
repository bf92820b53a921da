package model

import "fmt"

// AppError は統一エラーフォーマットを表す。
// 画面に表示する原因カテゴリと対処方法を含む。
// Messageに内部識別子やスタック情報を含めてはならない。
type AppError struct {
	Code     string // エラーコード
	Message  string // ユーザー向けメッセージ
	Category string // カテゴリ: auth, validation, content, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUserNotFound           = "USER_NOT_FOUND"
	ErrCodeInvalidCredentials     = "INVALID_CREDENTIALS"
	ErrCodeEmailAlreadyRegistered = "EMAIL_ALREADY_REGISTERED"
	ErrCodeDuplicateTitle         = "DUPLICATE_TITLE"
	ErrCodePostNotFound           = "POST_NOT_FOUND"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeValidation             = "VALIDATION_FAILED"
	ErrCodeMailTransport          = "MAIL_TRANSPORT_FAILED"
)

// credentialMessage はログイン失敗時の共通メッセージ。
// メール未登録とパスワード不一致を文言で区別しない
// （アカウント列挙対策。エラーコードはログ用に区別を残す）。
const credentialMessage = "メールアドレスまたはパスワードが正しくありません。"

// NewUserNotFoundError はメール未登録によるログイン失敗エラーを生成する。
func NewUserNotFoundError() *AppError {
	return &AppError{
		Code:     ErrCodeUserNotFound,
		Message:  credentialMessage,
		Category: "auth",
		Action:   "入力内容を確認するか、新規登録してください。",
	}
}

// NewInvalidCredentialsError はパスワード不一致によるログイン失敗エラーを生成する。
func NewInvalidCredentialsError() *AppError {
	return &AppError{
		Code:     ErrCodeInvalidCredentials,
		Message:  credentialMessage,
		Category: "auth",
		Action:   "入力内容を確認するか、新規登録してください。",
	}
}

// NewEmailAlreadyRegisteredError は登録済みメールでの再登録エラーを生成する。
func NewEmailAlreadyRegisteredError(email string) *AppError {
	return &AppError{
		Code:     ErrCodeEmailAlreadyRegistered,
		Message:  fmt.Sprintf("このメールアドレス「%s」は既に登録されています。", email),
		Category: "auth",
		Action:   "ログインするか、別のメールアドレスで登録してください。",
	}
}

// NewDuplicateTitleError はタイトル重複エラーを生成する。
func NewDuplicateTitleError(title string) *AppError {
	return &AppError{
		Code:     ErrCodeDuplicateTitle,
		Message:  fmt.Sprintf("タイトル「%s」の記事は既に存在します。", title),
		Category: "validation",
		Action:   "別のタイトルを指定してください。",
	}
}

// NewPostNotFoundError は記事未検出エラーを生成する。
func NewPostNotFoundError() *AppError {
	return &AppError{
		Code:     ErrCodePostNotFound,
		Message:  "指定された記事が見つかりません。",
		Category: "content",
		Action:   "記事一覧から記事を選び直してください。",
	}
}

// NewForbiddenError は管理者専用操作に対する拒否エラーを生成する。
func NewForbiddenError() *AppError {
	return &AppError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewValidationError は入力値不正エラーを生成する。
func NewValidationError(reason string) *AppError {
	return &AppError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容に誤りがあります: %s", reason),
		Category: "validation",
		Action:   "フォームの内容を修正して再送信してください。",
	}
}

// NewMailTransportError はお問い合わせメールの送信失敗エラーを生成する。
// メッセージは破棄されず、ユーザーに再送信を促す。
func NewMailTransportError() *AppError {
	return &AppError{
		Code:     ErrCodeMailTransport,
		Message:  "メッセージの送信に失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから、もう一度送信してください。",
	}
}
