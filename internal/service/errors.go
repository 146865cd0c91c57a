package service

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound は対象のユーザーまたはスコアが存在しないことを表す。
	ErrNotFound = errors.New("対象が見つかりません")
	// ErrForbidden は呼び出し元が対象の所有者ではないことを表す。
	ErrForbidden = errors.New("操作する権限がありません")
)

// ValidationError は入力値の検証エラー。Messagesはクライアントにそのまま返す。
type ValidationError struct {
	Messages []string
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return "入力値が不正です: " + strings.Join(e.Messages, ", ")
}
