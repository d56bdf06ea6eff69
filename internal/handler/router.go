package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/bookstand/internal/metrics"
	"github.com/hitoshi/bookstand/internal/middleware"
	"github.com/hitoshi/bookstand/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	UserLoader        middleware.UserLoader
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	Collector         metrics.MetricsCollector
	Gatherer          prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 書籍カタログ
	BookService BookServiceInterface

	// カート
	CartService CartServiceInterface

	// カバー画像の配信元ディレクトリ
	CoverDir string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → Logging → (認証グループ: Auth → RateLimit(General))
//
// 公開ルート（登録・ログイン・書籍閲覧・ヘルスチェック・メトリクス・カバー配信）は
// 認証ミドルウェアの外に配置する。ログインには専用のIPベースレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルートに効くミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	bookHandler := NewBookHandler(deps.BookService)
	cartHandler := NewCartHandler(deps.CartService)

	// --- 認証不要のルート ---

	r.Get("/health", handleHealth)

	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.Gatherer))
	}

	// カバー画像の静的配信
	if deps.CoverDir != "" {
		fs := http.StripPrefix("/covers/", http.FileServer(http.Dir(deps.CoverDir)))
		r.Get("/covers/*", fs.ServeHTTP)
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		// ログインはIPベースの専用レート制限を適用
		if deps.RateLimiter != nil {
			r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
		} else {
			r.Post("/login", authHandler.Login)
		}
	})

	// 書籍の閲覧は未認証でも可能
	r.Get("/books", bookHandler.ListBooks)
	r.Get("/books/{id}", bookHandler.GetBook)

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.UserLoader))
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		// セッション管理
		r.Get("/auth/me", authHandler.Me)
		r.Post("/auth/logout", authHandler.Logout)

		// 書籍の変更操作は管理者のみ
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRole(model.RoleAdmin))

			r.Post("/books", bookHandler.CreateBook)
			r.Put("/books/{id}", bookHandler.UpdateBook)
			r.Delete("/books/{id}", bookHandler.DeleteBook)
			r.Post("/books/{id}/cover", bookHandler.SetCover)
		})

		// カート管理
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.ListItems)
			r.Post("/", cartHandler.AddItem)
			r.Delete("/", cartHandler.Clear)
			r.Delete("/{bookID}", cartHandler.RemoveItem)
		})
	})

	return r
}

// handleHealth はヘルスチェックに応答する。
// GET /health
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}
