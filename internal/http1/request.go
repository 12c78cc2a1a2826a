package http1

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"rawhttpd/internal/httperr"
)

// DefaultMaxRequestBytes は1リクエストで読み込む最大バイト数
const DefaultMaxRequestBytes = 8192

var (
	crlf            = []byte("\r\n")
	headerSeparator = []byte("\r\n\r\n")
)

// Request はパース済みのHTTPリクエスト
// ワーカーが所有し、パース後は変更しない
type Request struct {
	Method    string   // GET, POST など（検証しない）
	Path      string   // リクエストターゲット（常に "/" で始まる）
	Segments  []string // Path を "/" で分割し、先頭の空セグメントを除いたもの
	Version   string   // HTTP/1.1 など（参考情報）
	Headers   Headers  // 受信した順序のヘッダー
	Body      []byte   // Content-Length で切り詰めたボディ
	Truncated bool     // Content-Length より少ないバイトしか届かなかった
}

// Segment はi番目のパスセグメントを返す
func (r *Request) Segment(i int) (string, bool) {
	if i < 0 || i >= len(r.Segments) {
		return "", false
	}
	return r.Segments[i], true
}

// ContentLength はContent-Lengthヘッダーを非負整数として返す
// ヘッダーがない、または不正な値の場合はfalse
func (r *Request) ContentLength() (int, bool) {
	return contentLength(r.Headers)
}

// frame はリクエストライン・ヘッダー部・ボディに分割したバイト列
type frame struct {
	line     []byte // CRLFを除いたリクエストライン
	head     []byte // ヘッダー行（最後の空行を除く）
	body     []byte // 空行より後ろのバイト
	complete bool   // ヘッダー終端の空行を受信済み
}

// splitFrame はバッファをリクエストライン・ヘッダー・ボディに分ける
// リクエストラインの終端がない場合はfalseを返す
func splitFrame(buf []byte) (frame, bool) {
	lineEnd := bytes.Index(buf, crlf)
	if lineEnd < 0 {
		return frame{}, false
	}

	f := frame{line: buf[:lineEnd]}
	rest := buf[lineEnd+len(crlf):]

	switch {
	case bytes.HasPrefix(rest, crlf):
		// ヘッダーなし
		f.body = rest[len(crlf):]
		f.complete = true
	default:
		if idx := bytes.Index(rest, headerSeparator); idx >= 0 {
			f.head = rest[:idx]
			f.body = rest[idx+len(headerSeparator):]
			f.complete = true
		} else if idx := bytes.LastIndex(rest, crlf); idx >= 0 {
			// 空行が届かなかった場合は完結している行だけを使う
			f.head = rest[:idx]
		}
	}

	return f, true
}

// parseHeaderLine はヘッダー行を最初の空白で分割する
// トークンが2つ未満の行はfalseを返す
func parseHeaderLine(line string) (Header, bool) {
	line = strings.TrimSpace(line)
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return Header{}, false
	}

	key := strings.TrimSuffix(line[:i], ":")
	value := strings.TrimSpace(line[i:])
	if key == "" || value == "" {
		return Header{}, false
	}

	return Header{Key: key, Value: value}, true
}

// parseHeaders はヘッダー部をパースする
// 不正な行は読み飛ばし、リクエスト全体は破棄しない
func parseHeaders(head []byte) Headers {
	if len(head) == 0 {
		return nil
	}

	lines := strings.Split(string(head), "\r\n")
	headers := make(Headers, 0, len(lines))
	for _, line := range lines {
		if hdr, ok := parseHeaderLine(line); ok {
			headers = append(headers, hdr)
		}
	}
	return headers
}

func contentLength(h Headers) (int, bool) {
	v, ok := h.Get("Content-Length")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// splitPath はリクエストターゲットをセグメントに分割する
// "/" -> [""], "/echo/abc" -> ["echo", "abc"]
func splitPath(path string) []string {
	return strings.Split(path, "/")[1:]
}

// ParseRequest はバッファをRequestにパースする
func ParseRequest(buf []byte) (*Request, error) {
	f, ok := splitFrame(buf)
	if !ok {
		return nil, httperr.New(httperr.KindMalformedRequest, "リクエストラインの終端がありません")
	}

	fields := strings.Fields(string(f.line))
	if len(fields) < 3 {
		return nil, httperr.New(httperr.KindMalformedRequest,
			fmt.Sprintf("リクエストラインのトークンが不足しています: %q", f.line))
	}
	if !strings.HasPrefix(fields[1], "/") {
		return nil, httperr.New(httperr.KindMalformedRequest,
			fmt.Sprintf("リクエストターゲットが不正です: %q", fields[1]))
	}

	req := &Request{
		Method:   fields[0],
		Path:     fields[1],
		Segments: splitPath(fields[1]),
		Version:  fields[2],
		Headers:  parseHeaders(f.head),
	}

	// Content-Length がない場合はボディなし
	if n, ok := contentLength(req.Headers); ok {
		body := f.body
		if len(body) >= n {
			body = body[:n]
		} else {
			req.Truncated = true
		}
		req.Body = bytes.Clone(body)
	}

	return req, nil
}

// frameComplete はヘッダーとContent-Length分のボディが揃ったかを返す
func frameComplete(buf []byte) bool {
	f, ok := splitFrame(buf)
	if !ok || !f.complete {
		return false
	}
	n, ok := contentLength(parseHeaders(f.head))
	if !ok {
		return true
	}
	return len(f.body) >= n
}

// ReadRequest はrからリクエストを読み込んでパースする
//
// リクエストが揃う、バッファが満杯になる、相手が切断する、読み込み期限を
// 過ぎるのいずれかで読み込みを止め、それまでに届いたバイトをパースする。
func ReadRequest(r io.Reader, maxBytes int) (*Request, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxRequestBytes
	}

	buf := make([]byte, maxBytes)
	n := 0
	for n < len(buf) {
		m, err := r.Read(buf[n:])
		n += m
		if frameComplete(buf[:n]) {
			break
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrDeadlineExceeded) {
				break
			}
			return nil, fmt.Errorf("リクエストの読み込みに失敗: %w", err)
		}
	}

	if n == 0 {
		return nil, httperr.Wrap(httperr.KindMalformedRequest, "リクエストが空です", io.EOF)
	}

	return ParseRequest(buf[:n])
}
