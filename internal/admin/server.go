package admin

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"rawhttpd/internal/config"
)

// Server は管理APIのHTTPサーバー
type Server struct {
	config     *config.Config
	engine     *gin.Engine
	httpServer *http.Server
	log        zerolog.Logger
}

// Option はServerの追加設定
type Option func(*Handler)

// WithServerAddr はTCPサーバーの実際のアドレスを返す関数を設定する
func WithServerAddr(addr func() net.Addr) Option {
	return func(h *Handler) {
		h.addr = addr
	}
}

// New は新しい管理APIサーバーを作成する
// 埋め込まれたOpenAPIドキュメントが不正な場合はエラーを返す
func New(cfg *config.Config, stats StatusProvider, log zerolog.Logger, opts ...Option) (*Server, error) {
	doc, err := LoadDocument(context.Background())
	if err != nil {
		return nil, err
	}

	h := &Handler{
		config: cfg,
		stats:  stats,
		doc:    doc,
	}
	for _, opt := range opts {
		opt(h)
	}

	log = log.With().Str("component", "admin").Logger()

	engine := gin.New()
	engine.Use(requestLogger(log), gin.Recovery())
	setupRoutes(engine, h)

	return &Server{
		config: cfg,
		engine: engine,
		httpServer: &http.Server{
			Handler:           engine,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}, nil
}

// setupRoutes はHTTPルートを設定する
func setupRoutes(r *gin.Engine, h *Handler) {
	// ヘルスチェックエンドポイント
	r.GET("/health", h.HealthCheck)

	// APIエンドポイント
	api := r.Group("/api")
	api.GET("/status", h.GetStatus)
	api.GET("/openapi.json", h.GetOpenAPI)

	r.NoRoute(h.NotFound)
}

// Handler はテスト用にhttp.Handlerを返す
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start はサーバーを起動し、ctxがキャンセルされるまでブロックする
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.AdminAddress())
	if err != nil {
		return fmt.Errorf("管理APIのリッスンに失敗: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Msg("管理APIを起動しています")
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("管理APIの実行に失敗: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown はサーバーをグレースフルにシャットダウンする
func (s *Server) Shutdown() error {
	// 5秒のタイムアウトを設定
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("管理APIのシャットダウンに失敗: %w", err)
	}

	s.log.Info().Msg("管理APIを停止しました")
	return nil
}

// requestLogger はリクエストごとにアクセスログを出力する
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("管理APIリクエスト")
	}
}
