// Package app は設定から各コンポーネントを組み立てて起動する
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"rawhttpd/internal/admin"
	"rawhttpd/internal/config"
	"rawhttpd/internal/router"
	"rawhttpd/internal/server"
	"rawhttpd/internal/store"
)

// App は起動に必要なコンポーネントをまとめたもの
type App struct {
	Server *server.Server
	Admin  *admin.Server // 管理APIが無効ならnil
	Files  store.FileStore

	log zerolog.Logger
}

// New は設定からAppを組み立てる
func New(cfg *config.Config, log zerolog.Logger) (*App, error) {
	files, err := store.New(store.Backend(cfg.Files.Backend), cfg.Files.Directory)
	if err != nil {
		return nil, fmt.Errorf("ファイルストアの作成に失敗: %w", err)
	}

	if ds, ok := files.(*store.DirStore); ok {
		if ds.Root() == "" {
			log.Warn().Msg("ルートディレクトリが設定されていないため /files は500を返します")
		} else {
			log.Info().Str("root", ds.Root()).Msg("ファイルのルートディレクトリ")
		}
	}

	srv := server.New(cfg, router.NewDefault(files), log)

	a := &App{
		Server: srv,
		Files:  files,
		log:    log,
	}

	if cfg.Admin.Enabled {
		a.Admin, err = admin.New(cfg, srv.Stats(), log, admin.WithServerAddr(srv.Addr))
		if err != nil {
			return nil, fmt.Errorf("管理APIの作成に失敗: %w", err)
		}
	}

	return a, nil
}

// Run はサーバーを起動し、ctxのキャンセルかシグナルで停止するまでブロックする
func (a *App) Run(ctx context.Context) error {
	adminDone := make(chan struct{})
	ctx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		<-adminDone
	}()

	go func() {
		defer close(adminDone)
		if a.Admin == nil {
			return
		}
		// 管理APIの失敗はTCPサーバーを止めない
		if err := a.Admin.Start(ctx); err != nil {
			a.log.Error().Err(err).Msg("管理APIが停止しました")
		}
	}()

	return a.Server.Start(ctx)
}

// Run は設定からAppを組み立てて起動する
func Run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	a, err := New(cfg, log)
	if err != nil {
		return err
	}
	return a.Run(ctx)
}
