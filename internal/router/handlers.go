package router

import (
	"context"
	"errors"
	"strconv"

	"rawhttpd/internal/http1"
	"rawhttpd/internal/httperr"
	"rawhttpd/internal/store"
)

// Handlers は組み込みエンドポイントの実装
type Handlers struct {
	files store.FileStore
}

// NewHandlers は新しいHandlersを作成する
func NewHandlers(files store.FileStore) *Handlers {
	return &Handlers{files: files}
}

// NewDefault は組み込みエンドポイントを登録したRouterを作成する
func NewDefault(files store.FileStore) *Router {
	h := NewHandlers(files)

	r := New()
	r.Handle("", "", h.Root)
	r.Handle("echo", "", h.Echo)
	r.Handle("user-agent", "", h.UserAgent)
	r.Handle("files", "GET", h.GetFile)
	r.Handle("files", "POST", h.PostFile)
	return r
}

// textResponse はtext/plainのレスポンスを作成する
func textResponse(body string) *http1.Response {
	res := http1.NewResponse(http1.StatusOK)
	res.Headers.Add("Content-Type", "text/plain")
	res.Headers.Add("Content-Length", strconv.Itoa(len(body)))
	res.Body = []byte(body)
	return res
}

// Root は常に200を返す（ヘッダー・ボディなし）
func (h *Handlers) Root(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	return http1.NewResponse(http1.StatusOK), nil
}

// Echo は2番目のパスセグメントをそのまま返す
func (h *Handlers) Echo(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	msg, ok := req.Segment(1)
	if !ok {
		return nil, httperr.New(httperr.KindRouteNotFound, "echo の対象がありません")
	}

	res := textResponse(msg)

	// ヘッダーのみ付与し、ボディは圧縮しない
	if enc, ok := req.Headers.Get("Accept-Encoding"); ok && enc == "gzip" {
		res.Headers.Add("Content-Encoding", "gzip")
	}

	return res, nil
}

// UserAgent はUser-Agentヘッダーの値を返す
func (h *Handlers) UserAgent(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	ua, ok := req.Headers.Get("User-Agent")
	if !ok {
		return nil, httperr.New(httperr.KindMissingRequiredHeaderOrSegment, "User-Agent ヘッダーがありません")
	}
	return textResponse(ua), nil
}

// GetFile はルートディレクトリ配下のファイルを返す
func (h *Handlers) GetFile(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	name, ok := req.Segment(1)
	if !ok || name == "" {
		return nil, httperr.New(httperr.KindResourceNotFound, "ファイル名がありません")
	}
	if h.files == nil {
		return nil, httperr.New(httperr.KindNotConfigured, "ファイルストアがありません")
	}

	data, err := h.files.ReadFile(ctx, name)
	if err != nil {
		return nil, storeError(err, httperr.KindResourceNotFound, name)
	}

	res := http1.NewResponse(http1.StatusOK)
	res.Headers.Add("Content-Type", "application/octet-stream")
	res.Headers.Add("Content-Length", strconv.Itoa(len(data)))
	res.Body = data
	return res, nil
}

// PostFile はリクエストボディをファイルに書き込む
func (h *Handlers) PostFile(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	name, ok := req.Segment(1)
	if !ok || name == "" {
		return nil, httperr.New(httperr.KindMissingRequiredHeaderOrSegment, "ファイル名がありません")
	}
	if _, ok := req.ContentLength(); !ok {
		return nil, httperr.New(httperr.KindMissingRequiredHeaderOrSegment, "Content-Length ヘッダーがありません")
	}
	if h.files == nil {
		return nil, httperr.New(httperr.KindNotConfigured, "ファイルストアがありません")
	}

	if err := h.files.WriteFile(ctx, name, req.Body); err != nil {
		return nil, storeError(err, httperr.KindStorageWriteFailure, name)
	}

	return http1.NewResponse(http1.StatusCreated), nil
}

// storeError はストアのエラーをhttperr.Errorに変換する
func storeError(err error, fallback httperr.Kind, name string) error {
	switch {
	case errors.Is(err, store.ErrInvalidName):
		return httperr.Wrap(httperr.KindInvalidName, name, err)
	case errors.Is(err, store.ErrNotConfigured):
		return httperr.Wrap(httperr.KindNotConfigured, name, err)
	default:
		return httperr.Wrap(fallback, name, err)
	}
}
