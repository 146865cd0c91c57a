package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/scorefeed/internal/service"
	"github.com/nao1215/scorefeed/pkg/middleware"
)

// クライアントに返すエラーメッセージ。
const (
	msgInvalidLogin  = "Invalid email/password combination"
	msgUserNotFound  = "User not found"
	msgScoreNotFound = "Score not found"
	msgMalformedBody = "Request body is malformed"
)

// abortWithError はエラーに応じたステータスとエラー配列を返して処理を中断する。
// notFound はErrNotFoundとErrForbiddenのときに返すメッセージ。
// 想定外のエラーは500とし、c.Errorでリクエストログに記録させる。
func abortWithError(c *gin.Context, err error, notFound string) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, middleware.ErrorBody(verr.Messages...))
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusNotFound, middleware.ErrorBody(notFound))
	default:
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, middleware.ErrorBody(middleware.InternalErrorMessage))
	}
}

// abortMalformed はリクエストボディが解釈できない場合に400で処理を中断する。
func abortMalformed(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
	c.AbortWithStatusJSON(http.StatusBadRequest, middleware.ErrorBody(msgMalformedBody))
}
