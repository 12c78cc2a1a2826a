// Package http1 はHTTP/1.1のワイヤーフォーマットを扱う
//
// 責務:
//   - 生のバイト列からRequestへのパース
//   - ResponseからHTTP/1.1のバイト列へのシリアライズ
//   - 順序を保持したヘッダーの管理
//
// 仕様:
//   - net/httpなどのHTTPライブラリは使用しない
//   - keep-alive、chunked転送、圧縮には対応しない
//   - ヘッダーは受信した順序・大文字小文字のまま保持し、検索のみ大文字小文字を区別しない
package http1
