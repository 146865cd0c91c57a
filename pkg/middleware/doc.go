// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// Bearerトークンによるログイン必須化、リクエストログ、パニックリカバリ、
// CORS設定を含む。エラー応答はすべて {"errors": [...]} 形式で返す。
package middleware
