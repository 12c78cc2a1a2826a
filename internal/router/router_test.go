package router

import (
	"context"
	"errors"
	"testing"

	"rawhttpd/internal/http1"
	"rawhttpd/internal/httperr"
	"rawhttpd/internal/store"
)

func parse(t *testing.T, raw string) *http1.Request {
	t.Helper()
	req, err := http1.ParseRequest([]byte(raw))
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	return req
}

func TestRouter_Route(t *testing.T) {
	ctx := context.Background()
	r := NewDefault(store.NewMemoryStore())

	testCases := []struct {
		name       string
		method     string
		segments   []string
		wantStatus int
	}{
		{"ルート", "GET", []string{""}, 200},
		{"ルート（任意のメソッド）", "DELETE", []string{""}, 200},
		{"セグメントなし", "GET", nil, 200},
		{"echo", "GET", []string{"echo", "abc"}, 200},
		{"echo POST", "POST", []string{"echo", "abc"}, 200},
		{"files DELETE", "DELETE", []string{"files", "x"}, 405},
		{"files PUT", "PUT", []string{"files", "x"}, 405},
		{"未知のセグメント", "GET", []string{"nope"}, 404},
		{"大文字小文字を区別する", "GET", []string{"Echo", "abc"}, 404},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			h := r.Route(tc.method, tc.segments)
			req := &http1.Request{Method: tc.method, Segments: tc.segments}
			res, err := h(ctx, req)

			status := 0
			if err != nil {
				status = httperr.StatusOf(err)
			} else {
				status = res.Status.Code
			}
			if status != tc.wantStatus {
				t.Errorf("予期しないステータスコード: got %d, want %d (err=%v)", status, tc.wantStatus, err)
			}
		})
	}
}

func TestRouter_HandleOverrides(t *testing.T) {
	ctx := context.Background()
	r := New()

	called := ""
	r.Handle("x", "", func(ctx context.Context, req *http1.Request) (*http1.Response, error) {
		called = "any"
		return http1.NewResponse(http1.StatusOK), nil
	})
	r.Handle("x", "GET", func(ctx context.Context, req *http1.Request) (*http1.Response, error) {
		called = "get"
		return http1.NewResponse(http1.StatusOK), nil
	})

	_, _ = r.Route("GET", []string{"x"})(ctx, &http1.Request{})
	if called != "get" {
		t.Errorf("メソッド別のハンドラが優先されるべきです: got %s", called)
	}
	_, _ = r.Route("POST", []string{"x"})(ctx, &http1.Request{})
	if called != "any" {
		t.Errorf("全メソッド共通のハンドラが呼ばれるべきです: got %s", called)
	}
}

func TestRouter_Dispatch(t *testing.T) {
	ctx := context.Background()
	r := NewDefault(store.NewMemoryStore())

	res, err := r.Dispatch(ctx, parse(t, "GET /nope HTTP/1.1\r\n\r\n"))
	if !errors.Is(err, httperr.ErrRouteNotFound) {
		t.Errorf("RouteNotFound が期待されました: got %v", err)
	}
	if string(res.Bytes()) != "HTTP/1.1 404 Not Found\r\n\r\n" {
		t.Errorf("got %q", res.Bytes())
	}

	res, err = r.Dispatch(ctx, parse(t, "DELETE /files/x HTTP/1.1\r\n\r\n"))
	if !errors.Is(err, httperr.ErrMethodNotAllowed) {
		t.Errorf("MethodNotAllowed が期待されました: got %v", err)
	}
	if res.Status != http1.StatusMethodNotAllowed {
		t.Errorf("got %v, want 405", res.Status)
	}

	r.Handle("nil", "", func(ctx context.Context, req *http1.Request) (*http1.Response, error) {
		return nil, nil
	})
	res, err = r.Dispatch(ctx, parse(t, "GET /nil HTTP/1.1\r\n\r\n"))
	if err == nil || res.Status != http1.StatusInternalServerError {
		t.Errorf("nilレスポンスは500になるべきです: got %v %v", res.Status, err)
	}
}
