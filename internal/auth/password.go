package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword は平文パスワードからbcryptダイジェストを生成する。
// ダイジェストはアルゴリズムとコストパラメータを自己記述するため、
// 将来コストを変更しても既存ダイジェストの検証は継続できる。
func HashPassword(password string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// CheckPassword は平文パスワードをbcryptダイジェストと照合する。
// 一致した場合のみtrueを返す。
func CheckPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
