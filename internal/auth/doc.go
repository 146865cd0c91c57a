// Package auth は認証ゲートウェイを提供する。
//
// メールアドレスとパスワードによる認証、JWTの発行と検証、
// ユーザーごとの失効マーカー（jti）によるトークン失効を扱う。
// トークンには発行時点の失効マーカーが含まれ、検証時に現在の値と
// 一致しなければ無効として扱う。
package auth
