// Package httperr はリクエスト処理中に発生するエラーの分類を定義する
//
// ハンドラやパーサーはここで定義した Error を返し、ワーカーは Kind から
// レスポンスのステータスコードを決定する。エラーがアクセプトループまで
// 伝播することはない。
package httperr

import (
	"errors"
	"fmt"
)

// Kind はエラーの種類を表す
type Kind int

const (
	KindUnknown                        Kind = iota
	KindMalformedRequest                    // リクエストラインや構造の不正
	KindRouteNotFound                       // 先頭パスセグメントに対応するルートがない
	KindMethodNotAllowed                    // ルートは存在するがメソッドが許可されていない
	KindResourceNotFound                    // ファイルが開けない
	KindStorageWriteFailure                 // ファイルの書き込みに失敗
	KindMissingRequiredHeaderOrSegment      // 必須ヘッダーまたはパスセグメントがない
	KindInvalidName                         // ルートディレクトリ外を指すファイル名
	KindNotConfigured                       // ルートディレクトリが設定されていない
)

// String はKindの名前を返す
func (k Kind) String() string {
	switch k {
	case KindMalformedRequest:
		return "MalformedRequest"
	case KindRouteNotFound:
		return "RouteNotFound"
	case KindMethodNotAllowed:
		return "MethodNotAllowed"
	case KindResourceNotFound:
		return "ResourceNotFound"
	case KindStorageWriteFailure:
		return "StorageWriteFailure"
	case KindMissingRequiredHeaderOrSegment:
		return "MissingRequiredHeaderOrSegment"
	case KindInvalidName:
		return "InvalidName"
	case KindNotConfigured:
		return "NotConfigured"
	default:
		return "Unknown"
	}
}

// Status はKindに対応するHTTPステータスコードを返す
func (k Kind) Status() int {
	switch k {
	case KindRouteNotFound, KindResourceNotFound:
		return 404
	case KindMethodNotAllowed:
		return 405
	case KindMissingRequiredHeaderOrSegment, KindInvalidName:
		return 400
	default:
		return 500
	}
}

// Error はリクエスト処理のエラー
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error は種類・メッセージ・原因をつないだ文字列を返す
func (e *Error) Error() string {
	if e == nil {
		return "no error"
	}
	msg := e.Kind.String()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s (caused by: %v)", msg, e.Err)
	}
	return msg
}

// Unwrap は原因となったエラーを返す
func (e *Error) Unwrap() error {
	return e.Err
}

// Is は同じKindのErrorと一致する
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Err == nil
}

// New は新しいErrorを作成する
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap は原因となるエラーを保持したErrorを作成する
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// errors.Is で比較するための番兵値
var (
	ErrMalformedRequest    = &Error{Kind: KindMalformedRequest}
	ErrRouteNotFound       = &Error{Kind: KindRouteNotFound}
	ErrMethodNotAllowed    = &Error{Kind: KindMethodNotAllowed}
	ErrResourceNotFound    = &Error{Kind: KindResourceNotFound}
	ErrStorageWriteFailure = &Error{Kind: KindStorageWriteFailure}
	ErrMissingRequired     = &Error{Kind: KindMissingRequiredHeaderOrSegment}
	ErrInvalidName         = &Error{Kind: KindInvalidName}
	ErrNotConfigured       = &Error{Kind: KindNotConfigured}
)

// KindOf はエラーチェーンからKindを取り出す
// Errorを含まないエラーはKindUnknownになる
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// StatusOf はエラーに対応するステータスコードを返す
func StatusOf(err error) int {
	return KindOf(err).Status()
}
