package handler

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/mindlog/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	TokenVerifier     middleware.TokenVerifier
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder

	// サービス
	AuthService    AuthServiceInterface
	JournalService JournalServiceInterface

	// WebSocketエンドポイント
	RealtimeHandler http.Handler

	// 死活監視用DB接続
	DB *sql.DB

	// Prometheusエクスポジション
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORSMiddleware → RecoveryMiddleware → LoggingMiddleware
//
// 認証が必要なルートにはさらに AuthMiddleware → RateLimitMiddleware を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 全ルート共通のミドルウェア
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.StatusRecorder))

	authHandler := NewAuthHandler(deps.AuthService)
	journalHandler := NewJournalHandler(deps.JournalService)

	// --- 認証不要のルート ---

	// ログイン
	r.Post("/auth/google", authHandler.LoginWithGoogle)

	// 死活監視
	r.Get("/health", newHealthHandler(deps.DB))

	// メトリクス
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// WebSocket接続（ルーム参加は接続後のjoinイベントまたは?uidで行う）
	if deps.RealtimeHandler != nil {
		r.Handle("/ws", deps.RealtimeHandler)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Auth → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewAuthMiddleware(deps.TokenVerifier))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/auth/me", authHandler.Me)

		r.Route("/logs", func(r chi.Router) {
			r.Get("/", journalHandler.ListLogs)
			r.Get("/today", journalHandler.HasLogToday)

			// POST /logs - 記録作成（作成専用レート制限を追加）
			r.With(deps.RateLimiter.LogCreationMiddleware()).Post("/", journalHandler.CreateLog)
		})
	})

	return r
}

// healthResponse は死活監視のAPIレスポンス。
type healthResponse struct {
	Status string `json:"status"`
}

// newHealthHandler はDB疎通を確認する死活監視ハンドラーを返す。
func newHealthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				slog.Error("health check failed", slog.String("error", err.Error()))
				writeJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unhealthy"})
				return
			}
		}
		writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
