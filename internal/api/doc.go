// Package api はスコア記録APIのHTTPサーバーを提供する。
//
// ログイン・ログアウト、ユーザープロフィールの参照、スコアの登録と削除、
// 全ユーザーのフィード取得をJSONで公開する。/api/login と /health 以外の
// エンドポイントはBearerトークンによる認証が必要。
package api
