// Package store はファイルハンドラが使うファイル保存先を提供する
//
// 責務:
//   - ルートディレクトリ配下のファイルの読み込み・書き込み
//   - ルートディレクトリ外を指すファイル名の拒否
//
// 仕様:
//   - サーバー側でのロックは行わない（同名ファイルへの同時書き込みはOS任せ）
//   - テストや一時利用のためのメモリ実装を持つ
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound はファイルが存在しない、または開けない
	ErrNotFound = errors.New("ファイルが見つかりません")
	// ErrInvalidName はルートディレクトリ外を指すファイル名
	ErrInvalidName = errors.New("不正なファイル名です")
	// ErrNotConfigured はルートディレクトリが設定されていない
	ErrNotConfigured = errors.New("ルートディレクトリが設定されていません")
)

// FileStore はファイルの読み書きを担うインターフェース
type FileStore interface {
	// ReadFile は指定された名前のファイルを読み込む
	ReadFile(ctx context.Context, name string) ([]byte, error)

	// WriteFile は指定された名前のファイルに書き込む（既存ファイルは上書き）
	WriteFile(ctx context.Context, name string, data []byte) error
}

// Backend はFileStoreの実装の種類
type Backend string

const (
	BackendDir    Backend = "dir"    // ディレクトリ
	BackendMemory Backend = "memory" // メモリ
)

// New はバックエンドに応じたFileStoreを作成する
func New(backend Backend, root string) (FileStore, error) {
	switch backend {
	case BackendDir, "":
		return NewDirStore(root), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("未知のバックエンドです: %s", backend)
	}
}

// ValidName はファイル名がルートディレクトリ内に収まるかを返す
func ValidName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	if strings.ContainsAny(name, `/\`) {
		return false
	}
	return filepath.IsLocal(name)
}

// DirStore はルートディレクトリ配下のファイルを扱う
type DirStore struct {
	root string
}

// NewDirStore は新しいDirStoreを作成する
func NewDirStore(root string) *DirStore {
	return &DirStore{root: root}
}

// Root はルートディレクトリを返す
func (s *DirStore) Root() string {
	return s.root
}

func (s *DirStore) resolve(name string) (string, error) {
	if s.root == "" {
		return "", ErrNotConfigured
	}
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.root, name), nil
}

// ReadFile はファイルを読み込む
func (s *DirStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return data, nil
}

// WriteFile はファイルに書き込む
func (s *DirStore) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.resolve(name)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("ファイルの書き込みに失敗: %w", err)
	}
	return nil
}

// IsNotFound はReadFileがファイルを見つけられなかったことを示すエラーかを返す
// 書き込み時のENOENTは含まない
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
