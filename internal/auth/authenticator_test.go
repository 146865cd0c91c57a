package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nao1215/scorefeed/internal/model"
	"github.com/nao1215/scorefeed/internal/store"
)

const testSecret = "test-secret-key-for-unit-tests"

// fakeUsers はメモリ上のUserStore実装。
type fakeUsers struct {
	byID   map[int64]model.User
	getErr error
}

func newFakeUsers(users ...model.User) *fakeUsers {
	f := &fakeUsers{byID: make(map[int64]model.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) UserByID(_ context.Context, id int64) (model.User, error) {
	if f.getErr != nil {
		return model.User{}, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUsers) UserByEmail(_ context.Context, email string) (model.User, error) {
	if f.getErr != nil {
		return model.User{}, f.getErr
	}
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, store.ErrNotFound
}

func (f *fakeUsers) UpdateJTI(_ context.Context, userID int64, jti string) error {
	u, ok := f.byID[userID]
	if !ok {
		return store.ErrNotFound
	}
	u.JTI = jti
	f.byID[userID] = u
	return nil
}

// newTestUser はパスワード userpass を持つテスト用ユーザーを返す。
func newTestUser(t *testing.T) model.User {
	t.Helper()
	hash, err := HashPassword("userpass", bcrypt.MinCost)
	require.NoError(t, err)
	return model.User{ID: 1, Name: "User1", Email: "user@email.com", PasswordHash: hash, JTI: NewJTI()}
}

func TestPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("userpass", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "userpass", hash)
	assert.True(t, CheckPassword(hash, "userpass"))
	assert.False(t, CheckPassword(hash, "user"))
	assert.False(t, CheckPassword("not-a-hash", "userpass"))
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("正しい認証情報でトークンが発行される", func(t *testing.T) {
		t.Parallel()
		u := newTestUser(t)
		now := time.Date(2021, time.June, 1, 12, 0, 0, 0, time.UTC)
		a := NewAuthenticator(newFakeUsers(u), testSecret, time.Hour, WithClock(func() time.Time { return now }))

		sess, err := a.Authenticate(ctx, "user@email.com", "userpass")
		require.NoError(t, err)
		assert.NotEmpty(t, sess.Token)
		assert.Equal(t, u, sess.User)
		assert.Equal(t, now.Add(time.Hour), sess.ExpiresAt)

		claims, err := ParseToken([]byte(testSecret), sess.Token, now)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, u.Email, claims.Email)
		assert.Equal(t, u.JTI, claims.ID)
		assert.Equal(t, "scorefeed-api", claims.Issuer)
	})

	t.Run("認証情報が不正な場合はErrInvalidCredentials", func(t *testing.T) {
		t.Parallel()
		a := NewAuthenticator(newFakeUsers(newTestUser(t)), testSecret, time.Hour)

		tests := []struct {
			name     string
			email    string
			password string
		}{
			{name: "パスワード違い", email: "user@email.com", password: "user"},
			{name: "存在しないメールアドレス", email: "invalid", password: "userpass"},
			{name: "大文字小文字の異なるメールアドレス", email: "USER@email.com", password: "userpass"},
		}
		for _, tt := range tests {
			_, err := a.Authenticate(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, ErrInvalidCredentials, tt.name)
		}
	})

	t.Run("ストアのエラーは認証失敗と区別される", func(t *testing.T) {
		t.Parallel()
		users := newFakeUsers()
		users.getErr = errors.New("db down")
		a := NewAuthenticator(users, testSecret, time.Hour)

		_, err := a.Authenticate(ctx, "user@email.com", "userpass")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestResolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("有効なトークンから呼び出し元を解決できる", func(t *testing.T) {
		t.Parallel()
		u := newTestUser(t)
		a := NewAuthenticator(newFakeUsers(u), testSecret, time.Hour)
		sess, err := a.Authenticate(ctx, u.Email, "userpass")
		require.NoError(t, err)

		id, err := a.Resolve(ctx, sess.Token)
		require.NoError(t, err)
		assert.Equal(t, model.Identity{UserID: u.ID, Name: u.Name, Email: u.Email}, id)
	})

	t.Run("失効後のトークンは拒否される", func(t *testing.T) {
		t.Parallel()
		u := newTestUser(t)
		a := NewAuthenticator(newFakeUsers(u), testSecret, time.Hour)
		sess, err := a.Authenticate(ctx, u.Email, "userpass")
		require.NoError(t, err)

		require.NoError(t, a.Revoke(ctx, u.ID))

		_, err = a.Resolve(ctx, sess.Token)
		assert.ErrorIs(t, err, ErrUnauthenticated)

		// 再ログインすれば新しいマーカーで発行される
		sess2, err := a.Authenticate(ctx, u.Email, "userpass")
		require.NoError(t, err)
		_, err = a.Resolve(ctx, sess2.Token)
		assert.NoError(t, err)
	})

	t.Run("不正なトークンは拒否される", func(t *testing.T) {
		t.Parallel()
		u := newTestUser(t)
		now := time.Now()
		a := NewAuthenticator(newFakeUsers(u), testSecret, time.Hour)

		wrongSecret, err := GenerateToken([]byte("other-secret"), u, time.Hour, now)
		require.NoError(t, err)
		expired, err := GenerateToken([]byte(testSecret), u, time.Hour, now.Add(-2*time.Hour))
		require.NoError(t, err)
		noneAlg, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        u.JTI,
				Issuer:    "scorefeed-api",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			UserID: u.ID,
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		otherIssuer, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        u.JTI,
				Issuer:    "someone-else",
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
			UserID: u.ID,
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		tests := []struct {
			name  string
			token string
		}{
			{name: "空文字列", token: ""},
			{name: "形式不正", token: "not.a.jwt"},
			{name: "署名鍵違い", token: wrongSecret},
			{name: "有効期限切れ", token: expired},
			{name: "noneアルゴリズム", token: noneAlg},
			{name: "発行者違い", token: otherIssuer},
		}
		for _, tt := range tests {
			_, err := a.Resolve(ctx, tt.token)
			assert.ErrorIs(t, err, ErrUnauthenticated, tt.name)
		}
	})

	t.Run("削除されたユーザーのトークンは拒否される", func(t *testing.T) {
		t.Parallel()
		u := newTestUser(t)
		token, err := GenerateToken([]byte(testSecret), u, time.Hour, time.Now())
		require.NoError(t, err)

		a := NewAuthenticator(newFakeUsers(), testSecret, time.Hour)
		_, err = a.Resolve(ctx, token)
		assert.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("存在しないユーザーの失効はErrUnauthenticated", func(t *testing.T) {
		t.Parallel()
		a := NewAuthenticator(newFakeUsers(), testSecret, time.Hour)
		assert.ErrorIs(t, a.Revoke(ctx, 99), ErrUnauthenticated)
	})
}
