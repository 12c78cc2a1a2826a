package store

import (
	"bytes"
	"context"
	"fmt"
	"sync"
)

// MemoryStore はメモリ上にファイルを保持するFileStore
type MemoryStore struct {
	files map[string][]byte
	mu    sync.RWMutex

	// 書き込みを失敗させる（テスト用）
	failWrites bool
}

// NewMemoryStore は新しいMemoryStoreを作成する
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		files: make(map[string][]byte),
	}
}

// ReadFile はファイルを読み込む
func (s *MemoryStore) ReadFile(ctx context.Context, name string) ([]byte, error) {
	if !ValidName(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return bytes.Clone(data), nil
}

// WriteFile はファイルに書き込む
func (s *MemoryStore) WriteFile(ctx context.Context, name string, data []byte) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failWrites {
		return fmt.Errorf("ファイルの書き込みに失敗: %s", name)
	}
	s.files[name] = bytes.Clone(data)
	return nil
}

// AddFile はファイルを追加する
func (s *MemoryStore) AddFile(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[name] = bytes.Clone(data)
}

// SetFailWrites は書き込みを失敗させるかを設定する
func (s *MemoryStore) SetFailWrites(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failWrites = fail
}
