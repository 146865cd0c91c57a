// Package model はユーザーとスコアのエンティティ、および公開用の射影を定義する。
//
// DB行は型付き構造体として保持し、JSONに出す形への変換は明示的な
// マッピング関数（View）で行う。パスワードハッシュや失効マーカーは
// 射影に含まれないため、レスポンスに漏れることはない。
package model
