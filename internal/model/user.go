// Package model はドメインモデルを定義する。
package model

import "time"

// User は書店サービスの利用者を表す。
// PasswordHashにはbcryptダイジェストのみを保持し、平文パスワードは一切保持しない。
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Role はユーザーの権限種別を表す。
type Role string

const (
	// RoleAdmin は管理者権限。カタログの変更操作が可能。
	RoleAdmin Role = "admin"
	// RoleUser は一般ユーザー権限。登録時のデフォルト。
	RoleUser Role = "user"
)

// IsValid はRoleが定義済みの値かどうかを判定する。
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	default:
		return false
	}
}

// PublicUser はAPIレスポンスに含めてよいユーザー情報のビュー。
// パスワードハッシュは含まない。
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// Public はUserからAPIレスポンス用のビューを生成する。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Role:     string(u.Role),
	}
}
