package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hitoshi/bookstand/internal/metrics"
	"github.com/hitoshi/bookstand/internal/model"
	"github.com/hitoshi/bookstand/internal/repository"
)

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo  repository.UserRepository
	captcha   CaptchaVerifier
	tokens    *TokenIssuer
	collector metrics.MetricsCollector
}

// NewService はServiceを生成する。collectorはnil許容。
func NewService(userRepo repository.UserRepository, captcha CaptchaVerifier, tokens *TokenIssuer, collector metrics.MetricsCollector) *Service {
	return &Service{
		userRepo:  userRepo,
		captcha:   captcha,
		tokens:    tokens,
		collector: collector,
	}
}

// Register は新規ユーザーを登録する。
// roleが空の場合はデフォルトのuser権限で登録する。
// 事前チェックと同時登録の競合はストアの一意性制約で検出し、
// どちらの経路でも同じ重複エラーを返す。
func (s *Service) Register(ctx context.Context, username, password string, role model.Role) (*model.User, error) {
	if username == "" {
		return nil, model.NewValidationError("ユーザー名は必須です")
	}
	if len(password) < 8 {
		return nil, model.NewValidationError("パスワードは8文字以上で指定してください")
	}
	if role == "" {
		role = model.RoleUser
	}
	if !role.IsValid() {
		return nil, model.NewValidationError(fmt.Sprintf("無効なロールです: %s", role))
	}

	// 事前チェック。同時登録の競合窓はストア側の制約が塞ぐ。
	existing, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, model.NewUsernameTakenError()
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewUsernameTakenError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Login は認証情報を検証し、成功時にセッショントークンを発行する。
// captchaTokenがnilでない場合はCAPTCHA検証を行う。
// ユーザー不存在とパスワード不一致は列挙攻撃を防ぐため同一のエラーを返す。
func (s *Service) Login(ctx context.Context, username, password string, captchaToken *string) (string, *model.User, error) {
	if captchaToken != nil && !s.captcha.Verify(ctx, *captchaToken) {
		slog.Warn("login rejected: captcha verification failed",
			slog.String("username", username),
		)
		if s.collector != nil {
			s.collector.RecordCaptchaFailure()
			s.collector.RecordLoginFailure("captcha")
		}
		return "", nil, model.NewCaptchaFailedError()
	}

	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		slog.Warn("login rejected: unknown username",
			slog.String("username", username),
		)
		if s.collector != nil {
			s.collector.RecordLoginFailure("unknown_user")
		}
		return "", nil, model.NewInvalidCredentialsError()
	}

	if !CheckPassword(password, user.PasswordHash) {
		slog.Warn("login rejected: password mismatch",
			slog.String("username", username),
		)
		if s.collector != nil {
			s.collector.RecordLoginFailure("password_mismatch")
		}
		return "", nil, model.NewInvalidCredentialsError()
	}

	token, err := s.tokens.Issue(user.Username)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordLoginSuccess()
	}

	slog.Info("user logged in",
		slog.Int64("user_id", user.ID),
		slog.String("username", user.Username),
	)

	return token, user, nil
}

// CurrentUser はセッショントークンから現在のユーザーを取得する。
// 検証失敗の種別は内部ログにのみ残し、呼び出し元には一律の認証エラーを返す。
// トークンが有効でもユーザーが削除済みの場合は認証エラーとなる。
func (s *Service) CurrentUser(ctx context.Context, tokenString string) (*model.User, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		slog.Warn("token verification failed", slog.String("reason", err.Error()))
		return nil, model.NewUnauthenticatedError()
	}

	user, err := s.userRepo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		// トークンは有効だがアカウントが存在しない（発行後に削除された等）
		slog.Warn("token subject no longer exists", slog.String("subject", claims.Subject))
		return nil, model.NewUnauthenticatedError()
	}

	return user, nil
}
