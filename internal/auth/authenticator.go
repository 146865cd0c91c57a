package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/scorefeed/internal/model"
	"github.com/nao1215/scorefeed/internal/store"
)

var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しないことを表す。
	ErrInvalidCredentials = errors.New("メールアドレスまたはパスワードが正しくありません")
	// ErrUnauthenticated はトークンが無い・不正・失効済みであることを表す。
	ErrUnauthenticated = errors.New("認証されていません")
)

// UserStore は認証に必要なユーザーの読み書き。
type UserStore interface {
	UserByID(ctx context.Context, id int64) (model.User, error)
	UserByEmail(ctx context.Context, email string) (model.User, error)
	UpdateJTI(ctx context.Context, userID int64, jti string) error
}

// Session はログイン成功時の結果。
type Session struct {
	// User は認証されたユーザー。
	User model.User
	// Token は発行したBearerトークン。
	Token string
	// ExpiresAt はトークンの有効期限。
	ExpiresAt time.Time
}

// Authenticator はログイン、トークン検証、トークン失効を行う。
type Authenticator struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option はAuthenticatorの設定を変更する。
type Option func(*Authenticator)

// WithClock は現在時刻の取得方法を差し替える。
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// NewAuthenticator は新しいAuthenticatorを生成する。
func NewAuthenticator(users UserStore, secret string, ttl time.Duration, opts ...Option) *Authenticator {
	a := &Authenticator{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate はメールアドレスとパスワードを検証し、トークンを発行する。
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (Session, error) {
	user, err := a.users.UserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		CheckPassword(dummyHash(), password)
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	if !CheckPassword(user.PasswordHash, password) {
		return Session{}, ErrInvalidCredentials
	}

	now := a.now()
	token, err := GenerateToken(a.secret, user, a.ttl, now)
	if err != nil {
		return Session{}, err
	}
	return Session{User: user, Token: token, ExpiresAt: now.Add(a.ttl)}, nil
}

// Resolve はトークンを検証し、呼び出し元のユーザーを返す。
// トークンの失効マーカーがユーザーの現在の値と一致しない場合は失効済みとして扱う。
func (a *Authenticator) Resolve(ctx context.Context, token string) (model.Identity, error) {
	claims, err := ParseToken(a.secret, token, a.now())
	if err != nil {
		return model.Identity{}, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	user, err := a.users.UserByID(ctx, claims.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return model.Identity{}, fmt.Errorf("%w: ユーザーが存在しません", ErrUnauthenticated)
	}
	if err != nil {
		return model.Identity{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	if claims.ID == "" || claims.ID != user.JTI {
		return model.Identity{}, fmt.Errorf("%w: トークンは失効しています", ErrUnauthenticated)
	}
	return model.IdentityOf(user), nil
}

// Revoke はユーザーの失効マーカーを新しい値に差し替え、発行済みのトークンをすべて無効にする。
func (a *Authenticator) Revoke(ctx context.Context, userID int64) error {
	if err := a.users.UpdateJTI(ctx, userID, NewJTI()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("トークンの失効に失敗: %w", err)
	}
	return nil
}

// NewJTI は新しい失効マーカーを生成する。
func NewJTI() string {
	return uuid.NewString()
}
