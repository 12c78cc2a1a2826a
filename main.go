package main

import (
	"context"
	"log"
	"os"

	"rawhttpd/internal/app"
	"rawhttpd/internal/logging"
)

func main() {
	// コマンドラインオプション（--directory など）
	opts, err := app.ParseOptions("rawhttpd", os.Args[1:], os.Stderr)
	if err != nil {
		os.Exit(2)
	}
	if opts.Help {
		os.Exit(0)
	}

	// 設定を読み込む
	cfg, err := opts.Config()
	if err != nil {
		log.Fatalf("設定の読み込みに失敗しました: %v", err)
	}

	// ロガーを作成
	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("ロガーの作成に失敗しました: %v", err)
	}

	// コンテキストを作成
	ctx := context.Background()

	// サーバーを起動
	if err := app.Run(ctx, cfg, logger); err != nil {
		logger.Error().Err(err).Msg("サーバーの起動に失敗しました")
		os.Exit(1)
	}
}
