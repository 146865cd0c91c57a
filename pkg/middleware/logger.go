package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger はリクエストごとにアクセスログを出力するGinミドルウェアを返す。
// ハンドラーがc.Errorで登録したエラーは、5xxならError、それ以外はWarnレベルで出力する。
func RequestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"path":      path,
			"status":    c.Writer.Status(),
			"latency":   time.Since(start).String(),
			"client_ip": c.ClientIP(),
		})

		if len(c.Errors) > 0 {
			entry = entry.WithError(c.Errors.Last().Err)
			if c.Writer.Status() >= http.StatusInternalServerError {
				entry.Error(c.Errors.String())
			} else {
				entry.Warn(c.Errors.String())
			}
			return
		}
		entry.Info("リクエストを処理しました")
	}
}
