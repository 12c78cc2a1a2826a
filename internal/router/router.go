// Package router はリクエストの先頭パスセグメントとメソッドからハンドラを選ぶ
//
// ルートは固定かつ一階層なので、先頭セグメントの完全一致のみで振り分ける。
// ワイルドカードや木構造は持たない。
package router

import (
	"context"
	"fmt"

	"rawhttpd/internal/http1"
	"rawhttpd/internal/httperr"
)

// Handler はRequestからResponseを作成する
// エラーを返した場合、ステータスはエラーの種類から決まる
type Handler func(ctx context.Context, req *http1.Request) (*http1.Response, error)

// route は1つの先頭セグメントに登録されたハンドラ
type route struct {
	any      Handler            // 全メソッド共通
	byMethod map[string]Handler // メソッド別
}

// Router は先頭セグメントをキーにハンドラを保持する
type Router struct {
	routes map[string]*route
}

// New は空のRouterを作成する
func New() *Router {
	return &Router{
		routes: make(map[string]*route),
	}
}

// Handle はハンドラを登録する
// methodが空文字の場合は全メソッドに対応する
func (r *Router) Handle(key, method string, h Handler) {
	rt, ok := r.routes[key]
	if !ok {
		rt = &route{byMethod: make(map[string]Handler)}
		r.routes[key] = rt
	}

	if method == "" {
		rt.any = h
		return
	}
	rt.byMethod[method] = h
}

// Route はメソッドとパスセグメントに対応するハンドラを返す
// 見つからない場合は404、メソッドが許可されていない場合は405を返すハンドラになる
func (r *Router) Route(method string, segments []string) Handler {
	key := ""
	if len(segments) > 0 {
		key = segments[0]
	}

	rt, ok := r.routes[key]
	if !ok {
		return notFound(key)
	}
	if h, ok := rt.byMethod[method]; ok {
		return h
	}
	if rt.any != nil {
		return rt.any
	}
	return methodNotAllowed(key, method)
}

// Dispatch はリクエストをハンドラに渡し、エラーをレスポンスに変換する
// 返すResponseは常にnilではない
func (r *Router) Dispatch(ctx context.Context, req *http1.Request) (*http1.Response, error) {
	h := r.Route(req.Method, req.Segments)
	res, err := h(ctx, req)
	if err != nil {
		return ErrorResponse(err), err
	}
	if res == nil {
		return http1.NewResponse(http1.StatusInternalServerError), fmt.Errorf("ハンドラがレスポンスを返しませんでした: %s", req.Path)
	}
	return res, nil
}

// ErrorResponse はエラーの種類に応じたヘッダー・ボディなしのResponseを作成する
func ErrorResponse(err error) *http1.Response {
	return http1.NewResponse(http1.StatusFor(httperr.StatusOf(err)))
}

func notFound(key string) Handler {
	return func(ctx context.Context, req *http1.Request) (*http1.Response, error) {
		return nil, httperr.New(httperr.KindRouteNotFound, fmt.Sprintf("/%s", key))
	}
}

func methodNotAllowed(key, method string) Handler {
	return func(ctx context.Context, req *http1.Request) (*http1.Response, error) {
		return nil, httperr.New(httperr.KindMethodNotAllowed, fmt.Sprintf("%s /%s", method, key))
	}
}
