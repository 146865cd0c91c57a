package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ErrUnauthenticated はトークンが無い・不正・失効済みであることを表す。
// RequireLoginに渡す解決関数はこのエラーをラップして返すと401になる。
var ErrUnauthenticated = errors.New("認証されていません")

// UnauthenticatedMessage は未認証時にクライアントへ返すメッセージ。
const UnauthenticatedMessage = "You need to sign in or sign up before continuing."

// identityKey は解決済みの呼び出し元をGinコンテキストに保存するキー。
const identityKey = "middleware.identity"

// BearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
func BearerToken(c *gin.Context) (string, bool) {
	token, found := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !found || token == "" {
		return "", false
	}
	return token, true
}

// RequireLogin はBearerトークンを解決関数で呼び出し元に変換するGinミドルウェアを返す。
// 解決できた呼び出し元はCurrentIdentityで取得できる。
// トークンが無いかErrUnauthenticatedの場合は401、それ以外のエラーは500で中断する。
func RequireLogin[T any](resolve func(ctx context.Context, token string) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorBody(UnauthenticatedMessage))
			return
		}

		identity, err := resolve(c.Request.Context(), token)
		if errors.Is(err, ErrUnauthenticated) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorBody(UnauthenticatedMessage))
			return
		}
		if err != nil {
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorBody(InternalErrorMessage))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// CurrentIdentity はRequireLoginが保存した呼び出し元を取得する。
func CurrentIdentity[T any](c *gin.Context) (T, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		var zero T
		return zero, false
	}
	identity, ok := v.(T)
	return identity, ok
}
