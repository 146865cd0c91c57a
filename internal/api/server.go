package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/nao1215/scorefeed/internal/auth"
	"github.com/nao1215/scorefeed/internal/config"
	"github.com/nao1215/scorefeed/internal/model"
	"github.com/nao1215/scorefeed/internal/service"
	"github.com/nao1215/scorefeed/internal/store"
	"github.com/nao1215/scorefeed/pkg/middleware"
)

// shutdownTimeout は停止要求から処理中のリクエストの完了を待つ最大時間。
const shutdownTimeout = 10 * time.Second

// Server はスコア記録APIのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// logger は構造化ロガー。
	logger logrus.FieldLogger
	// store は永続化層。ヘルスチェックでも使う。
	store *store.Store
	// auth はログインとトークン検証を行う。
	auth *auth.Authenticator
	// users はユーザー情報の参照を行う。
	users *service.UserService
	// scores はスコアの登録・削除・フィード取得を行う。
	scores *service.ScoreService
}

// Option はServerの設定を変更する。
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock はトークンの有効期限とプレイ日の検証に使う現在時刻の取得方法を差し替える。
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// NewServer は新しいAPIサーバーを生成する。
func NewServer(cfg *config.Config, st *store.Store, logger logrus.FieldLogger, opts ...Option) *Server {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	router := gin.New()
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS([]string{cfg.FrontendURL}))

	s := &Server{
		router: router,
		port:   cfg.Port,
		logger: logger,
		store:  st,
		auth:   auth.NewAuthenticator(st, cfg.JWTSecret, cfg.TokenTTL, auth.WithClock(o.now)),
		users:  service.NewUserService(st),
		scores: service.NewScoreService(st,
			service.ScoreRange{Min: cfg.ScoreMin, Max: cfg.ScoreMax},
			service.WithClock(o.now),
		),
	}
	s.setupRoutes()

	return s
}

// Handler はルーティング済みのhttp.Handlerを返す。
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run はHTTPサーバーを起動し、ctxがキャンセルされるまでリクエストを処理する。
// キャンセル後は処理中のリクエストの完了を待ってから戻る。
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", s.port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", srv.Addr).Info("HTTPサーバーを起動します")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("HTTPサーバーの起動に失敗: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("HTTPサーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTPサーバーの停止に失敗: %w", err)
	}
	return nil
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	// 認証不要
	s.router.POST("/api/login", s.handleLogin())
	s.router.GET("/health", s.handleHealth())

	// 認証必須
	api := s.router.Group("/api")
	api.Use(middleware.RequireLogin(s.resolveIdentity))
	{
		api.POST("/logout", s.handleLogout())
		api.GET("/users/:id", s.handleGetUser())
		api.GET("/feed", s.handleFeed())
		api.POST("/scores", s.handleCreateScore())
		api.DELETE("/scores/:id", s.handleDeleteScore())
	}
}

// resolveIdentity はトークンを呼び出し元に変換する。
// 認証エラーはミドルウェアが401として扱えるエラーに変換する。
func (s *Server) resolveIdentity(ctx context.Context, token string) (model.Identity, error) {
	identity, err := s.auth.Resolve(ctx, token)
	if errors.Is(err, auth.ErrUnauthenticated) {
		return model.Identity{}, fmt.Errorf("%w: %w", middleware.ErrUnauthenticated, err)
	}
	return identity, err
}

// handleHealth はデータベースへの疎通を含むヘルスチェックのハンドラを返す。
func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.store.Ping(c.Request.Context()); err != nil {
			s.logger.WithError(err).Warn("ヘルスチェックに失敗しました")
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "service": "scorefeed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "scorefeed"})
	}
}
