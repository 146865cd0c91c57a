package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/scorefeed/internal/service"
)

// createScoreRequest はスコア登録のリクエストボディ。
type createScoreRequest struct {
	Score struct {
		TotalScore int    `json:"total_score"`
		PlayedAt   string `json:"played_at"`
	} `json:"score"`
}

// handleFeed は全ユーザーの最近のスコアを返すハンドラを返す。
func (s *Server) handleFeed() gin.HandlerFunc {
	return func(c *gin.Context) {
		scores, err := s.scores.Feed(c.Request.Context())
		if err != nil {
			abortWithError(c, err, "")
			return
		}
		c.JSON(http.StatusOK, gin.H{"scores": scores})
	}
}

// handleCreateScore は呼び出し元のスコアを登録するハンドラを返す。
func (s *Server) handleCreateScore() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := currentIdentity(c)
		if !ok {
			return
		}

		var req createScoreRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			abortMalformed(c, err)
			return
		}

		score, err := s.scores.Create(c.Request.Context(), identity, req.Score.TotalScore, req.Score.PlayedAt)
		if err != nil {
			abortWithError(c, err, msgScoreNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"score": score})
	}
}

// handleDeleteScore は呼び出し元が所有するスコアを削除するハンドラを返す。
// 存在しないスコアと他人のスコアは区別せず404を返す。
func (s *Server) handleDeleteScore() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := currentIdentity(c)
		if !ok {
			return
		}

		id, ok := parseID(c.Param("id"))
		if !ok {
			abortWithError(c, service.ErrNotFound, msgScoreNotFound)
			return
		}

		score, err := s.scores.Delete(c.Request.Context(), identity, id)
		if err != nil {
			abortWithError(c, err, msgScoreNotFound)
			return
		}
		c.JSON(http.StatusOK, gin.H{"score": score})
	}
}
