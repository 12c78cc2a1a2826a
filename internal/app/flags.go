package app

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"strconv"

	"github.com/fatih/color"

	"rawhttpd/internal/config"
)

// Options はコマンドラインオプション
type Options struct {
	Directory  string // /files で公開するルートディレクトリ
	Host       string
	Port       int
	ConfigPath string // .yaml / .toml
	AdminAddr  string // 空でなければ管理APIを有効にする
	LogLevel   string
	Help       bool
}

// ParseOptions はコマンドライン引数をパースする
// -help または -h の場合はヘルプを出力し、Help を true にして返す
func ParseOptions(name string, args []string, out io.Writer) (*Options, error) {
	opts := &Options{}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.Directory, "directory", "", "/files で公開するルートディレクトリ")
	fs.StringVar(&opts.Host, "host", "", "サーバーのホスト (デフォルト: 127.0.0.1)")
	fs.IntVar(&opts.Port, "port", 0, "サーバーのポート (デフォルト: 4221)")
	fs.StringVar(&opts.ConfigPath, "config", "", "設定ファイル (.yaml / .toml)")
	fs.StringVar(&opts.AdminAddr, "admin", "", "管理APIを有効にしてこのアドレスで待ち受ける (例: 127.0.0.1:4222)")
	fs.StringVar(&opts.LogLevel, "log-level", "", "ログレベル (trace, debug, info, warn, error)")
	fs.BoolVar(&opts.Help, "help", false, "ヘルプを表示")
	fs.Usage = func() { printHelp(fs) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			opts.Help = true
			return opts, nil
		}
		return nil, err
	}

	if opts.Help {
		printHelp(fs)
	}
	return opts, nil
}

// Config は設定を読み込み、オプションで上書きして検証する
// 優先順位はデフォルト値 < 設定ファイル < 環境変数 < オプション
func (o *Options) Config() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadFile(o.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if err := o.apply(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("設定の検証に失敗: %w", err)
	}
	return cfg, nil
}

// apply はオプションで設定を上書きする
func (o *Options) apply(cfg *config.Config) error {
	if o.Directory != "" {
		cfg.Files.Directory = o.Directory
	}
	if o.Host != "" {
		cfg.Server.Host = o.Host
	}
	if o.Port != 0 {
		cfg.Server.Port = o.Port
	}
	if o.AdminAddr != "" {
		host, port, err := net.SplitHostPort(o.AdminAddr)
		if err != nil {
			return fmt.Errorf("管理APIのアドレスが不正です: %w", err)
		}
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("管理APIのポートが不正です: %q", port)
		}
		cfg.Admin.Enabled = true
		cfg.Admin.Host = host
		cfg.Admin.Port = n
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}
	return nil
}

// printHelp はヘルプを表示する
func printHelp(fs *flag.FlagSet) {
	out := fs.Output()
	bold := color.New(color.Bold)
	heading := color.New(color.FgYellow, color.Bold)

	bold.Fprintln(out, "rawhttpd")
	fmt.Fprintln(out, "HTTP/1.1 のサブセットを話すTCPサーバー")
	fmt.Fprintln(out)
	heading.Fprintln(out, "使用方法:")
	fmt.Fprintf(out, "  %s [オプション]\n", fs.Name())
	fmt.Fprintln(out)
	heading.Fprintln(out, "オプション:")
	fs.PrintDefaults()
	fmt.Fprintln(out)
	heading.Fprintln(out, "エンドポイント:")
	fmt.Fprintln(out, "  GET  /                 200 OK")
	fmt.Fprintln(out, "  GET  /echo/{text}      text をそのまま返す")
	fmt.Fprintln(out, "  GET  /user-agent       User-Agent ヘッダーを返す")
	fmt.Fprintln(out, "  GET  /files/{name}     ファイルを返す")
	fmt.Fprintln(out, "  POST /files/{name}     ファイルを保存する")
}
