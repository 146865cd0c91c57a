package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// doRequest はルーターにリクエストを送り、レスポンスを返すヘルパー関数。
func doRequest(t *testing.T, router http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// parseErrors はエラー応答のerrors配列を取り出すヘルパー関数。
func parseErrors(t *testing.T, w *httptest.ResponseRecorder) []string {
	t.Helper()

	var body struct {
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("レスポンスボディのパースに失敗: %v (body=%s)", err, w.Body.String())
	}
	return body.Errors
}

func TestErrorBody(t *testing.T) {
	t.Parallel()

	t.Run("メッセージがerrors配列になること", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(ErrorBody("a", "b"))
		if err != nil {
			t.Fatal(err)
		}
		if got, want := string(b), `{"errors":["a","b"]}`; got != want {
			t.Errorf("ErrorBody = %s, want %s", got, want)
		}
	})

	t.Run("メッセージが無い場合は空配列になること", func(t *testing.T) {
		t.Parallel()

		b, err := json.Marshal(ErrorBody())
		if err != nil {
			t.Fatal(err)
		}
		if got, want := string(b), `{"errors":[]}`; got != want {
			t.Errorf("ErrorBody = %s, want %s", got, want)
		}
	})
}
