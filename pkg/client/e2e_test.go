package client_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nao1215/scorefeed/internal/api"
	"github.com/nao1215/scorefeed/internal/auth"
	"github.com/nao1215/scorefeed/internal/config"
	"github.com/nao1215/scorefeed/internal/model"
	"github.com/nao1215/scorefeed/internal/store"
	"github.com/nao1215/scorefeed/pkg/client"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// startServer は一時SQLiteを使うAPIサーバーをhttptestで起動し、ユーザーを2人登録する。
func startServer(t *testing.T) (*client.Client, *store.Store) {
	t.Helper()

	ctx := context.Background()
	st, err := store.Open(ctx, "sqlite", "file:"+filepath.Join(t.TempDir(), "e2e.db"))
	if err != nil {
		t.Fatalf("ストアの初期化に失敗: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	for _, u := range []struct{ name, email string }{
		{"User1", "user1@email.com"},
		{"User2", "user2@email.com"},
	} {
		hash, err := auth.HashPassword("userpass", 4)
		if err != nil {
			t.Fatalf("パスワードのハッシュ化に失敗: %v", err)
		}
		if _, err := st.CreateUser(ctx, model.User{Name: u.name, Email: u.email, PasswordHash: hash, JTI: auth.NewJTI()}); err != nil {
			t.Fatalf("ユーザーの登録に失敗: %v", err)
		}
	}

	cfg := &config.Config{
		JWTSecret: "e2e-secret",
		TokenTTL:  time.Hour,
		ScoreMin:  50,
		ScoreMax:  150,
	}
	logger, _ := test.NewNullLogger()
	ts := httptest.NewServer(api.NewServer(cfg, st, logger).Handler())
	t.Cleanup(ts.Close)

	return client.New(ts.URL), st
}

// TestScoreLifecycle はログインからスコアの登録・参照・削除・ログアウトまでを通しで検証する。
func TestScoreLifecycle(t *testing.T) {
	t.Parallel()

	c, st := startServer(t)
	ctx := context.Background()

	if _, err := c.Login(ctx, "user1@email.com", "wrongpass"); !client.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("誤ったパスワードでのLogin() = %v, want 401", err)
	}

	s1, err := c.Login(ctx, "user1@email.com", "userpass")
	if err != nil {
		t.Fatalf("Login()でエラーが発生: %v", err)
	}
	s2, err := c.Login(ctx, "user2@email.com", "userpass")
	if err != nil {
		t.Fatalf("Login()でエラーが発生: %v", err)
	}
	ctx1 := client.WithToken(ctx, s1.Token)
	ctx2 := client.WithToken(ctx, s2.Token)

	if _, err := c.Feed(ctx); !client.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("トークン無しのFeed() = %v, want 401", err)
	}

	for _, in := range []struct {
		ctx      context.Context
		total    int
		playedAt string
	}{
		{ctx1, 79, "2021-05-20"},
		{ctx2, 99, "2021-06-20"},
		{ctx2, 68, "2021-06-13"},
	} {
		if _, err := c.CreateScore(in.ctx, in.total, in.playedAt); err != nil {
			t.Fatalf("CreateScore(%d)でエラーが発生: %v", in.total, err)
		}
	}

	future := time.Now().AddDate(0, 0, 2).Format(model.DateLayout)
	if _, err := c.CreateScore(ctx1, 10, future); !client.IsStatus(err, http.StatusUnprocessableEntity) {
		t.Fatalf("不正なCreateScore() = %v, want 422", err)
	}

	feed, err := c.Feed(ctx1)
	if err != nil {
		t.Fatalf("Feed()でエラーが発生: %v", err)
	}
	var totals []int
	for _, s := range feed {
		totals = append(totals, s.TotalScore)
	}
	if len(totals) != 3 || totals[0] != 99 || totals[1] != 68 || totals[2] != 79 {
		t.Errorf("フィードの合計スコア = %v, want [99 68 79]", totals)
	}

	profile, err := c.User(ctx1, s2.ID)
	if err != nil {
		t.Fatalf("User()でエラーが発生: %v", err)
	}
	if profile.User.Name != "User2" || len(profile.Scores) != 2 {
		t.Errorf("プロフィール = %+v", profile)
	}
	if _, err := c.User(ctx1, 123456); !client.IsStatus(err, http.StatusNotFound) {
		t.Errorf("存在しないユーザーのUser() = %v, want 404", err)
	}

	// 公開用の応答にはスコアIDが含まれないため、ストアから取得する
	owned, err := st.ScoresByUser(ctx, s1.ID)
	if err != nil || len(owned) != 1 {
		t.Fatalf("ScoresByUser()の結果が不正: %+v, %v", owned, err)
	}
	scoreID := owned[0].ID

	if _, err := c.DeleteScore(ctx2, scoreID); !client.IsStatus(err, http.StatusNotFound) {
		t.Errorf("他人のスコアのDeleteScore() = %v, want 404", err)
	}
	deleted, err := c.DeleteScore(ctx1, scoreID)
	if err != nil {
		t.Fatalf("DeleteScore()でエラーが発生: %v", err)
	}
	if deleted.TotalScore != 79 || deleted.PlayedAt != "2021-05-20" {
		t.Errorf("削除したスコア = %+v", deleted)
	}

	if err := c.Logout(ctx1); err != nil {
		t.Fatalf("Logout()でエラーが発生: %v", err)
	}
	if _, err := c.Feed(ctx1); !client.IsStatus(err, http.StatusUnauthorized) {
		t.Errorf("ログアウト後のFeed() = %v, want 401", err)
	}
	if _, err := c.Feed(ctx2); err != nil {
		t.Errorf("他のユーザーのトークンは有効なままであるべき: %v", err)
	}
}
