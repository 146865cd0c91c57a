// Package service はユーザーとスコアに関する業務ロジックを提供する。
//
// 各操作は呼び出し元のIdentityを引数で受け取り、1回の問い合わせ・検証・
// 更新を行って公開用の射影を返す。HTTPには依存しない。
package service
