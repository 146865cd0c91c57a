package middleware

import "github.com/gin-gonic/gin"

// ErrorBody はエラー応答のボディを生成する。
func ErrorBody(messages ...string) gin.H {
	if messages == nil {
		messages = []string{}
	}
	return gin.H{"errors": messages}
}
