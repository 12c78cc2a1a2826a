package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/net/netutil"

	"rawhttpd/internal/config"
	"rawhttpd/internal/router"
)

// shutdownTimeout は処理中のワーカーを待つ最大時間
const shutdownTimeout = 5 * time.Second

// Server はTCPリスナーとワーカーを管理する構造体
type Server struct {
	config *config.Config
	router *router.Router
	log    zerolog.Logger
	stats  *Stats

	mu       sync.Mutex
	listener net.Listener
	closing  bool
	ready    chan struct{}
	loopDone chan struct{}

	wg sync.WaitGroup
}

// New は新しいServerインスタンスを作成する
func New(cfg *config.Config, r *router.Router, log zerolog.Logger) *Server {
	return &Server{
		config: cfg,
		router: r,
		log:    log.With().Str("component", "server").Logger(),
		stats:  NewStats(),

		ready:    make(chan struct{}),
		loopDone: make(chan struct{}),
	}
}

// Stats は統計を返す
func (s *Server) Stats() *Stats {
	return s.stats
}

// Ready はリッスンを開始すると閉じられるチャンネルを返す
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr はリッスン中のアドレスを返す（未起動ならnil）
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Listen は設定されたアドレスでリッスンを開始する
func (s *Server) Listen(ctx context.Context) (net.Listener, error) {
	lc := net.ListenConfig{Control: listenControl}
	ln, err := lc.Listen(ctx, "tcp", s.config.ServerAddress())
	if err != nil {
		return nil, fmt.Errorf("リッスンに失敗: %w", err)
	}

	// 同時接続数の上限
	if n := s.config.Server.MaxConnections; n > 0 {
		ln = netutil.LimitListener(ln, n)
	}

	return ln, nil
}

// Serve はlnで接続を受け付け、接続ごとにワーカーを起動する
// Shutdown が呼ばれるとnilを返す
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		ln.Close()
		return nil
	}
	s.listener = ln
	close(s.ready)
	s.mu.Unlock()
	defer close(s.loopDone)

	s.log.Info().Str("addr", ln.Addr().String()).Msg("接続の受け付けを開始しました")

	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.isClosing() {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return fmt.Errorf("リスナーが閉じられました: %w", err)
			}

			// 一時的なエラーは待ってから再試行する
			if backoff == 0 {
				backoff = 5 * time.Millisecond
			} else {
				backoff = min(backoff*2, time.Second)
			}
			s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("接続の受け付けに失敗しました")
			time.Sleep(backoff)
			continue
		}
		backoff = 0

		s.stats.connectionOpened()
		s.wg.Add(1)
		go s.handle(conn)
	}
}

// handle はワーカーを作成して接続を処理させる
// ワーカーが接続の所有権を持つ
func (s *Server) handle(conn net.Conn) {
	defer s.wg.Done()
	defer s.stats.connectionClosed()

	id := uuid.New().String()
	w := newWorker(conn, s.router, s.stats, s.config.Server, s.log.With().
		Str("conn_id", id).
		Str("remote", conn.RemoteAddr().String()).
		Logger())
	w.run()
}

func (s *Server) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

// Start はサーバーを起動する
func (s *Server) Start(ctx context.Context) error {
	ln, err := s.Listen(ctx)
	if err != nil {
		return err
	}

	// シャットダウン用のチャンネル
	shutdownCh := make(chan error, 1)

	// 受け付けループを別ゴルーチンで起動
	go func() {
		if err := s.Serve(ln); err != nil {
			shutdownCh <- fmt.Errorf("サーバーの実行に失敗: %w", err)
		}
	}()

	// シグナルハンドリング
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	// コンテキストかシグナルを待つ
	select {
	case <-ctx.Done():
		s.log.Info().Msg("コンテキストがキャンセルされました")
	case sig := <-sigCh:
		s.log.Info().Str("signal", sig.String()).Msg("シグナルを受信しました")
	case err := <-shutdownCh:
		return err
	}

	return s.Shutdown()
}

// Shutdown はリスナーを閉じ、処理中のワーカーの終了を待つ
func (s *Server) Shutdown() error {
	s.log.Info().Msg("サーバーをシャットダウンしています...")

	s.mu.Lock()
	s.closing = true
	ln := s.listener
	s.mu.Unlock()

	if ln != nil {
		if err := ln.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("リスナーのクローズに失敗: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		// 受け付けループの終了後でないと wg.Add と競合する
		if ln != nil {
			<-s.loopDone
		}
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("ワーカーの終了待ちがタイムアウトしました: %s", shutdownTimeout)
	}

	s.log.Info().Msg("サーバーが正常にシャットダウンされました")
	return nil
}
