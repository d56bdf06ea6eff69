// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// クライアントに返す原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, conflict, upstream, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeUsernameTaken    = "USERNAME_TAKEN"
	ErrCodeInvalidCreds     = "INVALID_CREDENTIALS"
	ErrCodeUnauthenticated  = "UNAUTHENTICATED"
	ErrCodeCaptchaFailed    = "CAPTCHA_FAILED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeBookNotFound     = "BOOK_NOT_FOUND"
	ErrCodeBookTitleTaken   = "BOOK_TITLE_TAKEN"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeCartDuplicate    = "CART_DUPLICATE"
	ErrCodeCartItemNotFound = "CART_ITEM_NOT_FOUND"
	ErrCodeCoverFetchFailed = "COVER_FETCH_FAILED"
	ErrCodeCoverURLBlocked  = "COVER_URL_BLOCKED"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  fmt.Sprintf("入力内容が正しくありません: %s", detail),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUsernameTakenError はユーザー名重複エラーを生成する。
func NewUsernameTakenError() *APIError {
	return &APIError{
		Code:     ErrCodeUsernameTaken,
		Message:  "このユーザー名は既に使用されています。",
		Category: "conflict",
		Action:   "別のユーザー名を指定してください。",
	}
}

// NewInvalidCredentialsError は認証失敗エラーを生成する。
// ユーザー名の存在有無を漏らさないよう、原因を問わず同一メッセージを返す。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCreds,
		Message:  "ユーザー名またはパスワードが正しくありません。",
		Category: "auth",
		Action:   "認証情報を確認して再度お試しください。",
	}
}

// NewUnauthenticatedError は未認証エラーを生成する。
// Cookie欠落・トークン不正・期限切れのいずれでも同一メッセージを返す。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	}
}

// NewCaptchaFailedError はCAPTCHA検証失敗エラーを生成する。
func NewCaptchaFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeCaptchaFailed,
		Message:  "CAPTCHA検証に失敗しました。",
		Category: "upstream",
		Action:   "CAPTCHAを解き直して再度お試しください。",
	}
}

// NewForbiddenError は権限不足エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作を行う権限がありません。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewBookNotFoundError は書籍未検出エラーを生成する。
func NewBookNotFoundError(bookID int64) *APIError {
	return &APIError{
		Code:     ErrCodeBookNotFound,
		Message:  fmt.Sprintf("指定された書籍が見つかりません: %d", bookID),
		Category: "validation",
		Action:   "書籍IDを確認してください。",
	}
}

// NewBookTitleTakenError は書籍タイトル重複エラーを生成する。
func NewBookTitleTakenError(title string) *APIError {
	return &APIError{
		Code:     ErrCodeBookTitleTaken,
		Message:  fmt.Sprintf("同じタイトルの書籍が既に登録されています: %s", title),
		Category: "conflict",
		Action:   "既存の書籍を確認するか、タイトルを変更してください。",
	}
}

// NewUserNotFoundError はユーザー未検出エラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewCartDuplicateError はカート重複エラーを生成する。
func NewCartDuplicateError() *APIError {
	return &APIError{
		Code:     ErrCodeCartDuplicate,
		Message:  "この書籍は既にカートに入っています。",
		Category: "conflict",
		Action:   "カートの内容を確認してください。",
	}
}

// NewCartItemNotFoundError はカートアイテム未検出エラーを生成する。
func NewCartItemNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeCartItemNotFound,
		Message:  "指定された書籍はカートに入っていません。",
		Category: "validation",
		Action:   "カートの内容を確認してください。",
	}
}

// NewCoverFetchFailedError はカバー画像取得失敗エラーを生成する。
func NewCoverFetchFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeCoverFetchFailed,
		Message:  fmt.Sprintf("カバー画像の取得に失敗しました: %s", reason),
		Category: "upstream",
		Action:   "URLが正しいか確認し、しばらく待ってから再度お試しください。",
	}
}

// NewCoverURLBlockedError はカバー画像URLブロックエラーを生成する。
func NewCoverURLBlockedError() *APIError {
	return &APIError{
		Code:     ErrCodeCoverURLBlocked,
		Message:  "セキュリティポリシーにより、指定されたURLへのアクセスがブロックされました。",
		Category: "validation",
		Action:   "公開されているWebサイトのURLを入力してください。",
	}
}
