package http1

import (
	"bytes"
	"io"
	"strconv"
)

// Status はステータスコードと理由句
type Status struct {
	Code   int
	Reason string
}

// 使用するステータス
var (
	StatusOK                  = Status{200, "OK"}
	StatusCreated             = Status{201, "Created"}
	StatusBadRequest          = Status{400, "Bad Request"}
	StatusNotFound            = Status{404, "Not Found"}
	StatusMethodNotAllowed    = Status{405, "Method Not Allowed"}
	StatusInternalServerError = Status{500, "Internal Server Error"}
)

var statusByCode = map[int]Status{
	200: StatusOK,
	201: StatusCreated,
	400: StatusBadRequest,
	404: StatusNotFound,
	405: StatusMethodNotAllowed,
	500: StatusInternalServerError,
}

// StatusFor はコードに対応するStatusを返す
// 未知のコードは500として扱う
func StatusFor(code int) Status {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return StatusInternalServerError
}

// String はステータスラインの "200 OK" 部分を返す
func (s Status) String() string {
	return strconv.Itoa(s.Code) + " " + s.Reason
}

// Response はハンドラが作成し、一度だけシリアライズされるレスポンス
type Response struct {
	Status  Status
	Headers Headers
	Body    []byte
}

// NewResponse はヘッダー・ボディなしのResponseを作成する
func NewResponse(status Status) *Response {
	return &Response{Status: status}
}

// Bytes はワイヤーフォーマットに変換する
func (r *Response) Bytes() []byte {
	return Build(r.Status, r.Headers, r.Body)
}

// WriteTo はレスポンスをwに書き込む
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(r.Bytes())
	return int64(n), err
}

// Build はステータスライン・ヘッダー・空行・ボディを連結する
// Content-Length は自動では付与しない。必要なヘッダーは呼び出し側が渡す
func Build(status Status, headers Headers, body []byte) []byte {
	var b bytes.Buffer
	b.Grow(64 + len(headers)*32 + len(body))

	b.WriteString("HTTP/1.1 ")
	b.WriteString(status.String())
	b.WriteString("\r\n")
	for _, h := range headers {
		b.WriteString(h.Key)
		b.WriteString(": ")
		b.WriteString(h.Value)
		b.WriteString("\r\n")
	}
	b.WriteString("\r\n")
	b.Write(body)

	return b.Bytes()
}
