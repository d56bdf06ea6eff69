// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/bookstand/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookieの名前。
// ログインハンドラーでの設定とミドルウェアでの読み取りで共有する。
const SessionCookieName = "autorizado"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// userContextKey はリクエストコンテキストに認証済みユーザーを格納するためのキー。
var userContextKey = contextKey("user")

// UserLoader はトークンから認証済みユーザーを取得するインターフェース。
// auth.Serviceの部分集合として定義する。
type UserLoader interface {
	CurrentUser(ctx context.Context, tokenString string) (*model.User, error)
}

// NewAuthMiddleware はHTTP Only Cookieからセッショントークンを読み取り、
// 検証して認証済みユーザーをリクエストコンテキストに注入するミドルウェアを返す。
// Cookie欠落・トークン不正・ユーザー不存在のいずれも401を返す。
// 失敗理由の内訳はクライアントに返さない（内部ログのみ）。
// ルックアップ結果はリクエスト間でキャッシュせず、毎回検証・再取得する。
func NewAuthMiddleware(loader UserLoader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// 1. Cookieからトークンを取得
			cookie, err := r.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 2. トークンを検証しユーザーをロード
			user, err := loader.CurrentUser(r.Context(), cookie.Value)
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}

			// 3. 認証済みユーザーをコンテキストに注入
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole は指定ロールのユーザーのみを通すミドルウェアを返す。
// NewAuthMiddlewareの後に配置すること。
func RequireRole(role model.Role) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := UserFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
				return
			}
			if user.Role != role {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// UserFromContext はリクエストコンテキストから認証済みユーザーを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userContextKey).(*model.User)
	if !ok || user == nil {
		return nil, fmt.Errorf("user not found in context")
	}
	return user, nil
}

// ContextWithUser はコンテキストに認証済みユーザーを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
