// Package config はAPIサーバーとCLIの実行時設定を読み込む。
//
// カレントディレクトリに .env があれば先に読み込み、その後に環境変数を
// 参照する。未設定の項目には開発用の既定値を使う。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Config はアプリケーション全体の設定。
type Config struct {
	// Port はHTTPサーバーのリッスンポート。
	Port string
	// DatabaseDriver はデータベースドライバ名（sqlite / postgres）。
	DatabaseDriver string
	// DatabaseDSN はデータベースの接続文字列。
	DatabaseDSN string
	// JWTSecret はJWT署名用の秘密鍵。
	JWTSecret string
	// TokenTTL は発行するトークンの有効期間。
	TokenTTL time.Duration
	// FrontendURL はCORSで許可するオリジン。
	FrontendURL string
	// LogLevel はログ出力レベル。
	LogLevel logrus.Level
	// LogFormat はログの出力形式（json / text）。
	LogFormat string
	// ScoreMin は登録できる合計スコアの下限。
	ScoreMin int
	// ScoreMax は登録できる合計スコアの上限。
	ScoreMax int
	// BcryptCost はパスワードハッシュのコスト。
	BcryptCost int
}

const (
	defaultDSN         = "file:scorefeed.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	defaultJWTSecret   = "dev-secret-key"
	defaultScoreMin    = 50
	defaultScoreMax    = 150
	defaultTokenTTL    = 24 * time.Hour
	defaultFrontendURL = "http://localhost:3000"
)

// Load は .env と環境変数から設定を読み込む。
// 値の形式が不正な場合はエラーを返す。
func Load() (*Config, error) {
	// .env は任意。存在しなければ環境変数のみを使う
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnvOr("PORT", "8080"),
		DatabaseDriver: getEnvOr("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:    getEnvOr("DATABASE_DSN", defaultDSN),
		JWTSecret:      getEnvOr("JWT_SECRET", defaultJWTSecret),
		FrontendURL:    getEnvOr("FRONTEND_URL", defaultFrontendURL),
		LogFormat:      getEnvOr("LOG_FORMAT", "json"),
	}

	var err error
	if cfg.TokenTTL, err = durationEnv("TOKEN_TTL", defaultTokenTTL); err != nil {
		return nil, err
	}
	if cfg.ScoreMin, err = intEnv("SCORE_MIN", defaultScoreMin); err != nil {
		return nil, err
	}
	if cfg.ScoreMax, err = intEnv("SCORE_MAX", defaultScoreMax); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = intEnv("BCRYPT_COST", bcrypt.DefaultCost); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = logrus.ParseLevel(getEnvOr("LOG_LEVEL", "info")); err != nil {
		return nil, fmt.Errorf("LOG_LEVELが不正です: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は項目間の整合性を検証する。
func (c *Config) validate() error {
	if c.ScoreMin > c.ScoreMax {
		return fmt.Errorf("SCORE_MIN(%d)がSCORE_MAX(%d)より大きい", c.ScoreMin, c.ScoreMax)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTLは正の値である必要があります: %s", c.TokenTTL)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COSTは%dから%dの範囲で指定してください: %d", bcrypt.MinCost, bcrypt.MaxCost, c.BcryptCost)
	}
	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("LOG_FORMATはjsonまたはtextを指定してください: %q", c.LogFormat)
	}
	return nil
}

// NewLogger は設定に従ったロガーを生成する。
func (c *Config) NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(c.LogLevel)
	if c.LogFormat == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return logger
}

// getEnvOr は環境変数を取得し、設定されていない場合はデフォルト値を返す。
func getEnvOr(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func intEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%sが整数ではありません(%q): %w", key, v, err)
	}
	return n, nil
}

func durationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%sが期間の形式ではありません(%q): %w", key, v, err)
	}
	return d, nil
}
