package http1

import (
	"errors"
	"io"
	"net"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"rawhttpd/internal/httperr"
)

func TestParseRequest(t *testing.T) {
	testCases := []struct {
		name          string
		raw           string
		wantMethod    string
		wantPath      string
		wantSegments  []string
		wantHeaders   Headers
		wantBody      string
		wantTruncated bool
	}{
		{
			name:         "ルート",
			raw:          "GET / HTTP/1.1\r\nHost: localhost:4221\r\n\r\n",
			wantMethod:   "GET",
			wantPath:     "/",
			wantSegments: []string{""},
			wantHeaders:  Headers{{"Host", "localhost:4221"}},
		},
		{
			name:         "echo",
			raw:          "GET /echo/abc HTTP/1.1\r\nHost: localhost\r\nUser-Agent: curl/7.64.1\r\n\r\n",
			wantMethod:   "GET",
			wantPath:     "/echo/abc",
			wantSegments: []string{"echo", "abc"},
			wantHeaders:  Headers{{"Host", "localhost"}, {"User-Agent", "curl/7.64.1"}},
		},
		{
			name:         "ヘッダーなし",
			raw:          "GET /user-agent HTTP/1.1\r\n\r\n",
			wantMethod:   "GET",
			wantPath:     "/user-agent",
			wantSegments: []string{"user-agent"},
		},
		{
			name:         "ボディ付きPOST",
			raw:          "POST /files/a.txt HTTP/1.1\r\nContent-Length: 5\r\n\r\nhello",
			wantMethod:   "POST",
			wantPath:     "/files/a.txt",
			wantSegments: []string{"files", "a.txt"},
			wantHeaders:  Headers{{"Content-Length", "5"}},
			wantBody:     "hello",
		},
		{
			name:         "Content-Lengthより長いボディは切り詰める",
			raw:          "POST /files/a HTTP/1.1\r\nContent-Length: 3\r\n\r\nabcdef",
			wantMethod:   "POST",
			wantPath:     "/files/a",
			wantSegments: []string{"files", "a"},
			wantHeaders:  Headers{{"Content-Length", "3"}},
			wantBody:     "abc",
		},
		{
			name:          "届いたボディが足りない",
			raw:           "POST /files/a HTTP/1.1\r\ncontent-length: 10\r\n\r\nabc",
			wantMethod:    "POST",
			wantPath:      "/files/a",
			wantSegments:  []string{"files", "a"},
			wantHeaders:   Headers{{"content-length", "10"}},
			wantBody:      "abc",
			wantTruncated: true,
		},
		{
			name:         "Content-Lengthなしではボディを読まない",
			raw:          "POST /files/a HTTP/1.1\r\n\r\nignored",
			wantMethod:   "POST",
			wantPath:     "/files/a",
			wantSegments: []string{"files", "a"},
		},
		{
			name:         "不正なContent-Length",
			raw:          "POST /files/a HTTP/1.1\r\nContent-Length: -1\r\n\r\nabc",
			wantMethod:   "POST",
			wantPath:     "/files/a",
			wantSegments: []string{"files", "a"},
			wantHeaders:  Headers{{"Content-Length", "-1"}},
		},
		{
			name:         "不正なヘッダー行は読み飛ばす",
			raw:          "GET /user-agent HTTP/1.1\r\nBroken\r\nUser-Agent: foo bar\r\n\r\n",
			wantMethod:   "GET",
			wantPath:     "/user-agent",
			wantSegments: []string{"user-agent"},
			wantHeaders:  Headers{{"User-Agent", "foo bar"}},
		},
		{
			name:         "空行が届かない",
			raw:          "GET / HTTP/1.1\r\nHost: a\r\nUser-Ag",
			wantMethod:   "GET",
			wantPath:     "/",
			wantSegments: []string{""},
			wantHeaders:  Headers{{"Host", "a"}},
		},
		{
			name:         "クエリ文字列は分解しない",
			raw:          "GET /echo/abc?x=1 HTTP/1.1\r\n\r\n",
			wantMethod:   "GET",
			wantPath:     "/echo/abc?x=1",
			wantSegments: []string{"echo", "abc?x=1"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tc.raw))
			if err != nil {
				t.Fatalf("ParseRequest failed: %v", err)
			}

			if req.Method != tc.wantMethod {
				t.Errorf("Method: got %q, want %q", req.Method, tc.wantMethod)
			}
			if req.Path != tc.wantPath {
				t.Errorf("Path: got %q, want %q", req.Path, tc.wantPath)
			}
			if req.Version != "HTTP/1.1" {
				t.Errorf("Version: got %q, want HTTP/1.1", req.Version)
			}
			if strings.Join(req.Segments, "|") != strings.Join(tc.wantSegments, "|") || len(req.Segments) != len(tc.wantSegments) {
				t.Errorf("Segments: got %q, want %q", req.Segments, tc.wantSegments)
			}
			if len(req.Headers) != len(tc.wantHeaders) {
				t.Fatalf("Headers: got %v, want %v", req.Headers, tc.wantHeaders)
			}
			for i, h := range tc.wantHeaders {
				if req.Headers[i] != h {
					t.Errorf("Headers[%d]: got %v, want %v", i, req.Headers[i], h)
				}
			}
			if string(req.Body) != tc.wantBody {
				t.Errorf("Body: got %q, want %q", req.Body, tc.wantBody)
			}
			if req.Truncated != tc.wantTruncated {
				t.Errorf("Truncated: got %v, want %v", req.Truncated, tc.wantTruncated)
			}
		})
	}
}

func TestParseRequest_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"空", ""},
		{"CRLFなし", "GET / HTTP/1.1"},
		{"トークン不足", "GET /\r\n\r\n"},
		{"トークン1つ", "GARBAGE\r\n\r\n"},
		{"スラッシュで始まらない", "GET echo HTTP/1.1\r\n\r\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRequest([]byte(tc.raw))
			if err == nil {
				t.Fatal("エラーが期待されましたが、エラーが発生しませんでした")
			}
			if !errors.Is(err, httperr.ErrMalformedRequest) {
				t.Errorf("MalformedRequest が期待されました: got %v", err)
			}
			if httperr.StatusOf(err) != 500 {
				t.Errorf("ステータス: got %d, want 500", httperr.StatusOf(err))
			}
		})
	}
}

func TestRequestSegment(t *testing.T) {
	req, err := ParseRequest([]byte("GET /echo HTTP/1.1\r\n\r\n"))
	if err != nil {
		t.Fatalf("ParseRequest failed: %v", err)
	}
	if s, ok := req.Segment(0); !ok || s != "echo" {
		t.Errorf("Segment(0): got %q %v", s, ok)
	}
	if _, ok := req.Segment(1); ok {
		t.Error("Segment(1) should not exist")
	}
	if _, ok := req.Segment(-1); ok {
		t.Error("Segment(-1) should not exist")
	}
}

func TestReadRequest_OneByteAtATime(t *testing.T) {
	raw := "POST /files/x HTTP/1.1\r\nContent-Length: 4\r\n\r\nbody"
	req, err := ReadRequest(iotest.OneByteReader(strings.NewReader(raw)), 0)
	if err != nil {
		t.Fatalf("ReadRequest failed: %v", err)
	}
	if string(req.Body) != "body" {
		t.Errorf("Body: got %q, want %q", req.Body, "body")
	}
}

func TestReadRequest_StopsWhenComplete(t *testing.T) {
	// 相手が接続を閉じなくても、リクエストが揃った時点で返ること
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("GET /echo/hi HTTP/1.1\r\nHost: x\r\n\r\n"))
	}()

	done := make(chan *Request, 1)
	errCh := make(chan error, 1)
	go func() {
		req, err := ReadRequest(server, 1024)
		if err != nil {
			errCh <- err
			return
		}
		done <- req
	}()

	select {
	case req := <-done:
		if req.Path != "/echo/hi" {
			t.Errorf("Path: got %q", req.Path)
		}
	case err := <-errCh:
		t.Fatalf("ReadRequest failed: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("ReadRequest がタイムアウトしました")
	}
}

func TestReadRequest_DeadlineReturnsPartialBody(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("POST /files/x HTTP/1.1\r\nContent-Length: 100\r\n\r\nabc"))
	}()

	_ = server.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	req, err := ReadRequest(server, 1024)
	if err != nil {
		t.Fatalf("ReadRequest failed: %v", err)
	}
	if !req.Truncated {
		t.Error("Truncated が期待されました")
	}
	if string(req.Body) != "abc" {
		t.Errorf("Body: got %q, want %q", req.Body, "abc")
	}
}

func TestReadRequest_Empty(t *testing.T) {
	_, err := ReadRequest(strings.NewReader(""), 0)
	if !errors.Is(err, httperr.ErrMalformedRequest) {
		t.Errorf("MalformedRequest が期待されました: got %v", err)
	}
	if !errors.Is(err, io.EOF) {
		t.Errorf("io.EOF を含むことが期待されました: got %v", err)
	}
}

func TestReadRequest_ReadError(t *testing.T) {
	boom := errors.New("boom")
	_, err := ReadRequest(iotest.ErrReader(boom), 0)
	if !errors.Is(err, boom) {
		t.Errorf("読み込みエラーが伝播していません: got %v", err)
	}
	if httperr.KindOf(err) != httperr.KindUnknown {
		t.Errorf("Kind: got %v, want Unknown", httperr.KindOf(err))
	}
}

func TestReadRequest_BufferLimit(t *testing.T) {
	raw := "POST /files/x HTTP/1.1\r\nContent-Length: 100\r\n\r\n" + strings.Repeat("a", 100)
	req, err := ReadRequest(strings.NewReader(raw), 64)
	if err != nil {
		t.Fatalf("ReadRequest failed: %v", err)
	}
	if !req.Truncated {
		t.Error("Truncated が期待されました")
	}
	if len(req.Body) >= 100 {
		t.Errorf("ボディがバッファ上限を超えています: %d", len(req.Body))
	}
}
