package http1

import "strings"

// Header はヘッダーのキーと値の組
type Header struct {
	Key   string
	Value string
}

// Headers は受信または追加した順に並んだヘッダー
type Headers []Header

// Get はキーを大文字小文字を区別せずに検索し、最初に見つかった値を返す
func (h Headers) Get(key string) (string, bool) {
	for _, hdr := range h {
		if strings.EqualFold(hdr.Key, key) {
			return hdr.Value, true
		}
	}
	return "", false
}

// Has はキーが存在するかを返す
func (h Headers) Has(key string) bool {
	_, ok := h.Get(key)
	return ok
}

// Add は末尾にヘッダーを追加する
func (h *Headers) Add(key, value string) {
	*h = append(*h, Header{Key: key, Value: value})
}
