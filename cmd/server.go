// Package main はrawhttpdサーバーコマンドの実装です
package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/gin-gonic/gin"

	"rawhttpd/internal/app"
	"rawhttpd/internal/logging"
)

func main() {
	// コマンドラインオプション
	opts, err := app.ParseOptions("server", os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if opts.Help {
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := opts.Config()
	if err != nil {
		fatalf("設定の読み込みに失敗しました: %v", err)
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		fatalf("ロガーの作成に失敗しました: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)

	// サーバーを起動
	log.Info().
		Str("addr", cfg.ServerAddress()).
		Str("directory", cfg.Files.Directory).
		Msg("rawhttpd サーバーを起動します")
	if err := app.Run(context.Background(), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("サーバーの起動に失敗しました")
	}
}

// fatalf はエラーを赤字で表示して終了する
func fatalf(format string, args ...any) {
	color.New(color.FgRed).Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
