// Package auth はパスワードハッシュ、トークン発行・検証、CAPTCHA検証、
// 認証フローのビジネスロジックを提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// トークン検証の失敗種別。
// すべてErrInvalidTokenにマッチするため、クライアント向けには一括で
// 401として扱い、内部ログでのみ種別を区別できる。
var (
	// ErrInvalidToken はトークン検証失敗全般を表す。
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenMalformed はトークンの形式が不正な場合のエラー。
	ErrTokenMalformed = fmt.Errorf("%w: malformed", ErrInvalidToken)
	// ErrTokenExpired は有効期限切れのエラー。
	ErrTokenExpired = fmt.Errorf("%w: expired", ErrInvalidToken)
	// ErrTokenSignature は署名検証失敗のエラー。
	ErrTokenSignature = fmt.Errorf("%w: bad signature", ErrInvalidToken)
	// ErrTokenNoSubject はsubjectクレームが欠落している場合のエラー。
	ErrTokenNoSubject = fmt.Errorf("%w: missing subject", ErrInvalidToken)
)

// Claims はセッショントークンのクレームを表す。
// subjectにユーザー名を保持する。サーバー側には永続化しない。
type Claims struct {
	jwt.RegisteredClaims
}

// TokenIssuer はHS256署名のセッショントークンを発行・検証する。
// 署名鍵は起動時に設定されるプロセス全体の秘密で、以後変更されない。
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer はTokenIssuerを生成する。
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL はトークンの有効期間を返す。CookieのMax-Age算出に使用する。
func (i *TokenIssuer) TTL() time.Duration {
	return i.ttl
}

// Issue は指定subjectの署名付きトークンを発行する。
// 有効期限は発行時刻からTTL経過後。
func (i *TokenIssuer) Issue(subject string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークンを検証しクレームを返す。
// 形式不正・期限切れ・署名不正・subject欠落をそれぞれ別のエラーで返す。
// 期待される失敗はすべてエラー値として返し、panicしない。
func (i *TokenIssuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, ErrTokenSignature
		default:
			return nil, ErrTokenMalformed
		}
	}

	if !token.Valid {
		return nil, ErrTokenMalformed
	}

	if claims.Subject == "" {
		return nil, ErrTokenNoSubject
	}

	return claims, nil
}
