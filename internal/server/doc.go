// Package server は、TCP接続を受け付けてHTTP/1.1のリクエストを処理します。
//
// このパッケージは、リスナーの管理、接続ごとのワーカーの起動、
// パース・ルーティング・レスポンス書き込みの一連の流れを担当します。
//
// 責務:
//   - TCPリスナーの起動と管理
//   - 接続ごとのワーカー（ゴルーチン）の起動
//   - 1接続1リクエストの処理と切断
//   - 接続・レスポンスの統計
//
// 仕様:
//   - HTTPライブラリは使用せず、http1パッケージで直接読み書きする
//   - keep-aliveには対応しない（レスポンス後に必ず切断）
//   - ワーカー内のエラーやパニックは他の接続やリスナーに影響しない
//   - SIGINT/SIGTERMでリスナーを閉じ、処理中のワーカーを待つ
package server
