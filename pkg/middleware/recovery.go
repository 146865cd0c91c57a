package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// InternalErrorMessage は想定外のエラー時にクライアントへ返すメッセージ。
const InternalErrorMessage = "Internal server error"

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時にスタックトレースをログに出力し、500エラーを返す。
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithFields(logrus.Fields{
					"method": c.Request.Method,
					"path":   c.Request.URL.Path,
					"panic":  r,
					"stack":  string(debug.Stack()),
				}).Error("パニックから回復しました")
				c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody(InternalErrorMessage))
			}
		}()
		c.Next()
	}
}
