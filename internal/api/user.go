package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/scorefeed/internal/auth"
	"github.com/nao1215/scorefeed/internal/model"
	"github.com/nao1215/scorefeed/internal/service"
	"github.com/nao1215/scorefeed/pkg/middleware"
)

// loginRequest はログインのリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginUser はログイン成功時に返すユーザー情報。
type loginUser struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// handleLogin はメールアドレスとパスワードでログインし、トークンを発行するハンドラを返す。
// トークンはレスポンスボディとAuthorizationヘッダーの両方で返す。
func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortMalformed(c, err)
			return
		}

		session, err := s.auth.Authenticate(c.Request.Context(), req.Email, req.Password)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, middleware.ErrorBody(msgInvalidLogin))
			return
		}
		if err != nil {
			abortWithError(c, err, msgInvalidLogin)
			return
		}

		c.Header("Authorization", "Bearer "+session.Token)
		c.JSON(http.StatusOK, gin.H{
			"user": loginUser{
				ID:    session.User.ID,
				Email: session.User.Email,
				Name:  session.User.Name,
				Token: session.Token,
			},
		})
	}
}

// handleLogout は呼び出し元の発行済みトークンをすべて失効させるハンドラを返す。
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := currentIdentity(c)
		if !ok {
			return
		}

		if err := s.auth.Revoke(c.Request.Context(), identity.UserID); err != nil {
			if errors.Is(err, auth.ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, middleware.ErrorBody(middleware.UnauthenticatedMessage))
				return
			}
			abortWithError(c, err, middleware.UnauthenticatedMessage)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
	}
}

// handleGetUser はユーザーの公開情報と所有スコアを返すハンドラを返す。
func (s *Server) handleGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c.Param("id"))
		if !ok {
			abortWithError(c, service.ErrNotFound, msgUserNotFound)
			return
		}

		profile, err := s.users.Profile(c.Request.Context(), id)
		if err != nil {
			abortWithError(c, err, msgUserNotFound)
			return
		}
		c.JSON(http.StatusOK, profile)
	}
}

// currentIdentity はRequireLoginが解決した呼び出し元を取得する。
// 取得できない場合は500で処理を中断する。
func currentIdentity(c *gin.Context) (model.Identity, bool) {
	identity, ok := middleware.CurrentIdentity[model.Identity](c)
	if !ok {
		abortWithError(c, errors.New("呼び出し元が解決されていません"), "")
		return model.Identity{}, false
	}
	return identity, true
}

// parseID はパスパラメータのIDを解釈する。正の整数以外はfalseを返す。
func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
