// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/bookstand/internal/middleware"
	"github.com/hitoshi/bookstand/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Register は新規ユーザーを登録する。
	Register(ctx context.Context, username, password string, role model.Role) (*model.User, error)
	// Login は認証情報を検証し、成功時にセッショントークンを発行する。
	Login(ctx context.Context, username, password string, captchaToken *string) (string, *model.User, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler は認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

// loginRequest はログインリクエストのボディ。
// CaptchaTokenがnilの場合、CAPTCHA検証は行われない。
type loginRequest struct {
	Username     string  `json:"username"`
	Password     string  `json:"password"`
	CaptchaToken *string `json:"captchaToken,omitempty"`
}

// loginResponse はログイン結果のレスポンス。
// トークン本体は含めず、Cookie経由でのみ受け渡す。
type loginResponse struct {
	Status   int    `json:"status"`
	Message  string `json:"message"`
	Username string `json:"username,omitempty"`
}

// Register は新規ユーザー登録を処理する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Password, model.Role(req.Role))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user.Public())
}

// Login は認証を処理し、成功時にセッションCookieを設定する。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewValidationError("リクエストボディの解析に失敗しました"))
		return
	}

	token, user, err := h.service.Login(r.Context(), req.Username, req.Password, req.CaptchaToken)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Code {
			case model.ErrCodeInvalidCreds:
				writeLoginResponse(w, http.StatusUnauthorized, loginResponse{
					Status:  http.StatusUnauthorized,
					Message: apiErr.Message,
				})
				return
			case model.ErrCodeCaptchaFailed:
				writeLoginResponse(w, http.StatusForbidden, loginResponse{
					Status:  http.StatusForbidden,
					Message: apiErr.Message,
				})
				return
			}
		}
		handleServiceError(w, err)
		return
	}

	// セッショントークンをHTTP Only Cookieで設定する。レスポンスボディには含めない。
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeLoginResponse(w, http.StatusOK, loginResponse{
		Status:   http.StatusOK,
		Message:  "ログインに成功しました。",
		Username: user.Username,
	})
}

// Logout はセッションCookieをクリアする。
// トークン自体は失効まで有効なため、サーバー側での無効化は行わない。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if user, err := middleware.UserFromContext(r.Context()); err == nil {
		slog.Info("user logged out",
			slog.Int64("user_id", user.ID),
			slog.String("username", user.Username),
		)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeLoginResponse(w, http.StatusOK, loginResponse{
		Status:  http.StatusOK,
		Message: "ログアウトしました。",
	})
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user.Public())
}

// writeLoginResponse はログイン系エンドポイント専用のレスポンスを書き込む。
func writeLoginResponse(w http.ResponseWriter, statusCode int, body loginResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}
