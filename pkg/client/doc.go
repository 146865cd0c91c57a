// Package client はスコア記録APIのGoクライアントを提供する。
//
// 認証が必要なエンドポイントでは、WithTokenでコンテキストに設定した
// Bearerトークンが送信される。2xx以外の応答は*APIErrorとして返る。
package client
