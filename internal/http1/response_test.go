package http1

import (
	"bytes"
	"testing"
)

func TestBuild(t *testing.T) {
	testCases := []struct {
		name    string
		status  Status
		headers Headers
		body    string
		expect  string
	}{
		{
			name:   "ヘッダー・ボディなし",
			status: StatusOK,
			expect: "HTTP/1.1 200 OK\r\n\r\n",
		},
		{
			name:   "ヘッダーの順序を保持する",
			status: StatusOK,
			headers: Headers{
				{"Content-Type", "text/plain"},
				{"Content-Length", "3"},
				{"Content-Encoding", "gzip"},
			},
			body:   "abc",
			expect: "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 3\r\nContent-Encoding: gzip\r\n\r\nabc",
		},
		{
			name:   "Content-Lengthを自動付与しない",
			status: StatusNotFound,
			body:   "x",
			expect: "HTTP/1.1 404 Not Found\r\n\r\nx",
		},
		{
			name:   "201",
			status: StatusCreated,
			expect: "HTTP/1.1 201 Created\r\n\r\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := string(Build(tc.status, tc.headers, []byte(tc.body)))
			if got != tc.expect {
				t.Errorf("got %q, want %q", got, tc.expect)
			}
		})
	}
}

func TestResponseWriteTo(t *testing.T) {
	res := NewResponse(StatusMethodNotAllowed)
	res.Headers.Add("Allow", "GET, POST")

	var buf bytes.Buffer
	n, err := res.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}

	expect := "HTTP/1.1 405 Method Not Allowed\r\nAllow: GET, POST\r\n\r\n"
	if buf.String() != expect {
		t.Errorf("got %q, want %q", buf.String(), expect)
	}
	if n != int64(len(expect)) {
		t.Errorf("n: got %d, want %d", n, len(expect))
	}
}

func TestStatusFor(t *testing.T) {
	for _, code := range []int{200, 201, 400, 404, 405, 500} {
		if StatusFor(code).Code != code {
			t.Errorf("StatusFor(%d): got %v", code, StatusFor(code))
		}
	}
	if StatusFor(418) != StatusInternalServerError {
		t.Errorf("未知のコードは500になるべきです: got %v", StatusFor(418))
	}
}

func TestHeadersGet(t *testing.T) {
	h := Headers{{"user-agent", "first"}, {"User-Agent", "second"}}
	v, ok := h.Get("USER-AGENT")
	if !ok || v != "first" {
		t.Errorf("Get: got %q %v, want first true", v, ok)
	}
	if h.Has("Accept-Encoding") {
		t.Error("Has should be false")
	}
}
