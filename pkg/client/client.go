package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client はスコア記録APIのHTTPクライアント。
type Client struct {
	// httpClient は内部で使用するHTTPクライアント。
	httpClient *http.Client
	// baseURL はAPIサーバーのベースURL。
	baseURL string
}

// Option はClientの設定を変更する。
type Option func(*Client)

// WithHTTPClient は内部で使用するHTTPクライアントを差し替える。
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New は新しいクライアントを生成する。
// baseURLにはAPIサーバーのベースURL（例: "http://localhost:8080"）を指定する。
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError は2xx以外の応答を表す。
type APIError struct {
	// StatusCode はHTTPステータスコード。
	StatusCode int
	// Errors はサーバーが返したエラーメッセージ。
	Errors []string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return fmt.Sprintf("HTTPエラー: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("HTTPエラー: status=%d, errors=%s", e.StatusCode, strings.Join(e.Errors, "; "))
}

// IsStatus はerrが指定したステータスの*APIErrorかどうかを返す。
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

// User はユーザーの公開情報。
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Score はスコアの公開情報。PlayedAtは YYYY-MM-DD 形式。
type Score struct {
	UserName   string `json:"user_name"`
	TotalScore int    `json:"total_score"`
	PlayedAt   string `json:"played_at"`
}

// Session はログイン結果。
type Session struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Token string `json:"token"`
}

// Profile はユーザーの公開情報と所有スコア。
type Profile struct {
	User   User    `json:"user"`
	Scores []Score `json:"scores"`
}

// Login はメールアドレスとパスワードでログインする。
// 返されたトークンはWithTokenでコンテキストに設定して使う。
func (c *Client) Login(ctx context.Context, email, password string) (Session, error) {
	body := map[string]string{"email": email, "password": password}
	var resp struct {
		User Session `json:"user"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/login", body, &resp); err != nil {
		return Session{}, err
	}
	return resp.User, nil
}

// Logout はトークンの持ち主が発行済みのトークンをすべて失効させる。
func (c *Client) Logout(ctx context.Context) error {
	return c.doJSON(ctx, http.MethodPost, "/api/logout", nil, nil)
}

// User は指定したユーザーのプロフィールを取得する。
func (c *Client) User(ctx context.Context, id int64) (Profile, error) {
	var resp Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/users/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return Profile{}, err
	}
	return resp, nil
}

// Feed は全ユーザーの最近のスコアを取得する。
func (c *Client) Feed(ctx context.Context) ([]Score, error) {
	var resp struct {
		Scores []Score `json:"scores"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/feed", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Scores, nil
}

// CreateScore はスコアを登録する。playedAtは YYYY-MM-DD 形式で指定する。
func (c *Client) CreateScore(ctx context.Context, totalScore int, playedAt string) (Score, error) {
	body := map[string]any{
		"score": map[string]any{"total_score": totalScore, "played_at": playedAt},
	}
	var resp struct {
		Score Score `json:"score"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/scores", body, &resp); err != nil {
		return Score{}, err
	}
	return resp.Score, nil
}

// DeleteScore は自分のスコアを削除し、削除前の内容を返す。
func (c *Client) DeleteScore(ctx context.Context, id int64) (Score, error) {
	var resp struct {
		Score Score `json:"score"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, "/api/scores/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return Score{}, err
	}
	return resp.Score, nil
}

// doJSON はJSON形式のHTTPリクエストを実行する共通処理。
func (c *Client) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("リクエストボディのシリアライズに失敗: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if token, ok := TokenFrom(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの送信に失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody struct {
			Errors []string `json:"errors"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil {
			apiErr.Errors = errBody.Errors
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("レスポンスボディのデシリアライズに失敗: %w", err)
		}
	}
	return nil
}

// contextKey はコンテキストキーの型。
type contextKey string

// contextKeyToken はコンテキストにBearerトークンを格納するためのキー。
const contextKeyToken contextKey = "token"

// WithToken はコンテキストにBearerトークンを設定する。
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKeyToken, token)
}

// TokenFrom はコンテキストに設定されたBearerトークンを取得する。
func TokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(contextKeyToken).(string)
	return token, ok && token != ""
}
