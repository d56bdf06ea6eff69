package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/bookstand/internal/middleware"
	"github.com/hitoshi/bookstand/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn func(ctx context.Context, username, password string, role model.Role) (*model.User, error)
	loginFn    func(ctx context.Context, username, password string, captchaToken *string) (string, *model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, username, password, role)
	}
	return nil, nil
}

func (m *mockAuthService) Login(ctx context.Context, username, password string, captchaToken *string) (string, *model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, username, password, captchaToken)
	}
	return "", nil, nil
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// --- Register ---

func TestAuthHandler_Register_Success(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
			return &model.User{ID: 1, Username: username, Role: model.RoleUser}, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	body := `{"username":"alice","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}

	var got model.PublicUser
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != 1 || got.Username != "alice" || got.Role != string(model.RoleUser) {
		t.Errorf("response = %+v", got)
	}
}

func TestAuthHandler_Register_UsernameTaken(t *testing.T) {
	svc := &mockAuthService{
		registerFn: func(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
			return nil, model.NewUsernameTakenError()
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	body := `{"username":"alice","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var got apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Code != model.ErrCodeUsernameTaken {
		t.Errorf("code = %q, want %q", got.Code, model.ErrCodeUsernameTaken)
	}
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader("{invalid"))
	w := httptest.NewRecorder()

	h.Register(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
}

// --- Login ---

func TestAuthHandler_Login_Success_SetsCookieWithoutTokenInBody(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string, captchaToken *string) (string, *model.User, error) {
			return "signed-session-token", &model.User{ID: 1, Username: "alice", Role: model.RoleUser}, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{
		CookieSecure:  false,
		SessionMaxAge: 1800,
	})

	body := `{"username":"alice","password":"password123"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cookie := findCookie(resp, middleware.SessionCookieName)
	if cookie == nil {
		t.Fatal("expected session cookie to be set")
	}
	if cookie.Value != "signed-session-token" {
		t.Errorf("cookie value = %q, want the issued token", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Error("session cookie should be HttpOnly")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want %v", cookie.SameSite, http.SameSiteLaxMode)
	}
	if cookie.MaxAge != 1800 {
		t.Errorf("MaxAge = %d, want 1800", cookie.MaxAge)
	}

	// トークンがボディに含まれないこと
	var got loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != http.StatusOK {
		t.Errorf("body status = %d, want %d", got.Status, http.StatusOK)
	}
	if got.Username != "alice" {
		t.Errorf("body username = %q, want %q", got.Username, "alice")
	}
	if strings.Contains(got.Message, "signed-session-token") {
		t.Error("token must not appear in the response body")
	}
}

func TestAuthHandler_Login_InvalidCredentials_NoCookie(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string, captchaToken *string) (string, *model.User, error) {
			return "", nil, model.NewInvalidCredentialsError()
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	body := `{"username":"alice","password":"wrong"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}
	if findCookie(resp, middleware.SessionCookieName) != nil {
		t.Error("no session cookie should be set on failed login")
	}

	var got loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Status != http.StatusUnauthorized {
		t.Errorf("body status = %d, want %d", got.Status, http.StatusUnauthorized)
	}
	if got.Username != "" {
		t.Errorf("body username = %q, want empty", got.Username)
	}
}

func TestAuthHandler_Login_CaptchaFailed_Returns403(t *testing.T) {
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string, captchaToken *string) (string, *model.User, error) {
			return "", nil, model.NewCaptchaFailedError()
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	body := `{"username":"alice","password":"password123","captchaToken":"bad"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Login(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusForbidden)
	}
	if findCookie(resp, middleware.SessionCookieName) != nil {
		t.Error("no session cookie should be set on captcha failure")
	}
}

func TestAuthHandler_Login_PassesCaptchaTokenThrough(t *testing.T) {
	var gotToken *string
	svc := &mockAuthService{
		loginFn: func(ctx context.Context, username, password string, captchaToken *string) (string, *model.User, error) {
			gotToken = captchaToken
			return "token", &model.User{ID: 1, Username: "alice"}, nil
		},
	}
	h := NewAuthHandler(svc, AuthHandlerConfig{})

	// captchaToken省略時はnilで渡ること
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
	h.Login(httptest.NewRecorder(), req)
	if gotToken != nil {
		t.Errorf("captchaToken = %v, want nil when omitted", *gotToken)
	}

	// 指定時は値が渡ること
	req = httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"alice","password":"pw","captchaToken":"ct"}`))
	h.Login(httptest.NewRecorder(), req)
	if gotToken == nil || *gotToken != "ct" {
		t.Errorf("captchaToken = %v, want %q", gotToken, "ct")
	}
}

// --- Logout ---

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	ctx := middleware.ContextWithUser(req.Context(), &model.User{ID: 1, Username: "alice"})
	w := httptest.NewRecorder()

	h.Logout(w, req.WithContext(ctx))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	cookie := findCookie(resp, middleware.SessionCookieName)
	if cookie == nil {
		t.Fatal("expected session cookie in response")
	}
	if cookie.MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1 (delete)", cookie.MaxAge)
	}
	if cookie.Value != "" {
		t.Errorf("cookie value = %q, want empty", cookie.Value)
	}
}

// --- Me ---

func TestAuthHandler_Me_ReturnsPublicUser(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	ctx := middleware.ContextWithUser(req.Context(), &model.User{
		ID:           7,
		Username:     "alice",
		PasswordHash: "$2a$10$secret-hash",
		Role:         model.RoleAdmin,
	})
	w := httptest.NewRecorder()

	h.Me(w, req.WithContext(ctx))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	// パスワードハッシュが含まれないこと
	raw := w.Body.String()
	if strings.Contains(raw, "secret-hash") {
		t.Error("password hash must not appear in the response")
	}

	var got model.PublicUser
	if err := json.Unmarshal([]byte(raw), &got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != 7 || got.Username != "alice" || got.Role != string(model.RoleAdmin) {
		t.Errorf("response = %+v", got)
	}
}

func TestAuthHandler_Me_NoUser_ReturnsUnauthorized(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, AuthHandlerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}
