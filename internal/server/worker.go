package server

import (
	"context"
	"errors"
	"io"
	"net"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"

	"rawhttpd/internal/config"
	"rawhttpd/internal/http1"
	"rawhttpd/internal/httperr"
	"rawhttpd/internal/router"
)

// worker は1つの接続を最初から最後まで処理する
// 接続は他のワーカーと共有しない
type worker struct {
	ctx    context.Context
	conn   net.Conn
	router *router.Router
	stats  *Stats
	cfg    config.ServerConfig
	log    zerolog.Logger

	req       *http1.Request
	res       *http1.Response
	responded bool
}

// stateFunc は状態を処理し、次の状態を返す（nilで終了）
// Accepted -> parsing -> dispatching -> responding -> closed
type stateFunc func(*worker) stateFunc

func newWorker(conn net.Conn, r *router.Router, stats *Stats, cfg config.ServerConfig, log zerolog.Logger) *worker {
	return &worker{
		ctx:    context.Background(),
		conn:   conn,
		router: r,
		stats:  stats,
		cfg:    cfg,
		log:    log,
	}
}

// run は状態遷移を最後まで実行する
func (w *worker) run() {
	defer w.recoverPanic()

	w.log.Debug().Msg("接続を受け付けました")
	for state := parsing; state != nil; {
		state = state(w)
	}
}

// recoverPanic はワーカー内のパニックを接続内に閉じ込める
func (w *worker) recoverPanic() {
	r := recover()
	if r == nil {
		return
	}

	w.log.Error().
		Interface("panic", r).
		Bytes("stack", debug.Stack()).
		Msg("ワーカーでパニックが発生しました")

	if !w.responded {
		w.res = http1.NewResponse(http1.StatusInternalServerError)
		w.write()
	}
	_ = w.conn.Close()
}

// state funcs

func parsing(w *worker) stateFunc {
	if d := w.cfg.ReadTimeout.Std(); d > 0 {
		_ = w.conn.SetReadDeadline(time.Now().Add(d))
	}

	req, err := http1.ReadRequest(w.conn, w.cfg.MaxRequestBytes)
	if err != nil {
		w.stats.requestMalformed()
		if errors.Is(err, io.EOF) && httperr.KindOf(err) == httperr.KindMalformedRequest {
			w.log.Debug().Msg("リクエストを受信する前に切断されました")
		} else {
			w.log.Warn().Err(err).Msg("リクエストのパースに失敗しました")
		}
		w.res = router.ErrorResponse(err)
		return responding
	}

	w.stats.requestParsed()
	w.req = req
	if req.Truncated {
		w.log.Debug().Int("received", len(req.Body)).Msg("ボディが Content-Length より短いまま受信を終えました")
	}
	return dispatching
}

func dispatching(w *worker) stateFunc {
	res, err := w.router.Dispatch(w.ctx, w.req)
	w.res = res

	ev := w.log.Debug()
	if err != nil {
		kind := httperr.KindOf(err)
		if kind == httperr.KindUnknown || kind.Status() >= 500 {
			ev = w.log.Error()
		}
		ev = ev.Err(err).Str("kind", kind.String())
	}
	ev.Str("method", w.req.Method).
		Str("path", w.req.Path).
		Int("status", res.Status.Code).
		Msg("リクエストを処理しました")

	return responding
}

func responding(w *worker) stateFunc {
	w.write()
	return closed
}

func closed(w *worker) stateFunc {
	if err := w.conn.Close(); err != nil {
		w.log.Debug().Err(err).Msg("接続のクローズに失敗しました")
	}
	return nil
}

// write はレスポンスを書き込む
// 書き込みの失敗は記録するだけで、プロセスには影響させない
func (w *worker) write() {
	w.responded = true

	if d := w.cfg.WriteTimeout.Std(); d > 0 {
		_ = w.conn.SetWriteDeadline(time.Now().Add(d))
	}

	if _, err := w.res.WriteTo(w.conn); err != nil {
		w.stats.writeFailed()
		w.log.Warn().Err(err).Msg("レスポンスの書き込みに失敗しました")
		return
	}
	w.stats.responseWritten(w.res.Status.Code)
}
