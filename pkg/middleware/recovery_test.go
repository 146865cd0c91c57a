package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// TestRecovery はRecoveryミドルウェアを検証する。
func TestRecovery(t *testing.T) {
	t.Parallel()

	panics := []struct {
		name  string
		value any
	}{
		{name: "文字列", value: "テスト用パニック"},
		{name: "整数", value: 42},
		{name: "error型", value: http.ErrAbortHandler},
	}
	for _, p := range panics {
		t.Run(p.name+"のパニックで500とエラー配列が返りログが出ること", func(t *testing.T) {
			t.Parallel()

			logger, hook := test.NewNullLogger()
			router := gin.New()
			router.Use(Recovery(logger))
			router.GET("/panic", func(_ *gin.Context) {
				panic(p.value)
			})

			w := doRequest(t, router, http.MethodGet, "/panic", nil)

			if w.Code != http.StatusInternalServerError {
				t.Errorf("ステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
			}
			errs := parseErrors(t, w)
			if len(errs) != 1 || errs[0] != InternalErrorMessage {
				t.Errorf("errors = %v, want [%q]", errs, InternalErrorMessage)
			}

			entry := hook.LastEntry()
			if entry == nil {
				t.Fatal("ログが出力されていない")
			}
			if entry.Level != logrus.ErrorLevel {
				t.Errorf("ログレベル = %v, want %v", entry.Level, logrus.ErrorLevel)
			}
			if entry.Data["path"] != "/panic" {
				t.Errorf("path = %v, want %q", entry.Data["path"], "/panic")
			}
		})
	}

	t.Run("パニック後もサーバーが次のリクエストを処理できること", func(t *testing.T) {
		t.Parallel()

		logger, _ := test.NewNullLogger()
		router := gin.New()
		router.Use(Recovery(logger))
		router.POST("/panic", func(_ *gin.Context) {
			panic("パニック発生")
		})
		router.GET("/ok", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "recovered"})
		})

		if w := doRequest(t, router, http.MethodPost, "/panic", nil); w.Code != http.StatusInternalServerError {
			t.Errorf("1回目のステータスコード = %d, want %d", w.Code, http.StatusInternalServerError)
		}
		if w := doRequest(t, router, http.MethodGet, "/ok", nil); w.Code != http.StatusOK {
			t.Errorf("2回目のステータスコード = %d, want %d", w.Code, http.StatusOK)
		}
	})
}
