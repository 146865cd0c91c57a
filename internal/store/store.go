package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound は対象の行が存在しないことを表す。
	ErrNotFound = errors.New("レコードが見つかりません")
	// ErrDuplicateEmail はメールアドレスが既に登録されていることを表す。
	ErrDuplicateEmail = errors.New("メールアドレスは既に登録されています")
)

// Dialect は接続先データベースの種類。値はdatabase/sqlのドライバ名と一致する。
type Dialect string

const (
	// DialectSQLite はmodernc.org/sqliteを使うSQLite。
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres はpgxを使うPostgreSQL。
	DialectPostgres Dialect = "pgx"
)

// ParseDialect は設定値からDialectを決定する。
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "pgx", "postgres", "postgresql":
		return DialectPostgres, nil
	default:
		return "", fmt.Errorf("未対応のデータベースドライバです: %q", name)
	}
}

// Store はユーザーとスコアのリポジトリ。
type Store struct {
	// db はデータベース接続。
	db *sql.DB
	// dialect は接続先データベースの種類。
	dialect Dialect
}

// New は既存の接続からStoreを生成する。マイグレーションは実行しない。
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

// Open はデータベースに接続し、未適用のマイグレーションを適用したStoreを返す。
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	s, err := Connect(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("マイグレーションに失敗: %w", err)
	}
	return s, nil
}

// Connect はデータベースに接続したStoreを返す。マイグレーションは実行しない。
func Connect(ctx context.Context, driver, dsn string) (*Store, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("データベースへの疎通確認に失敗: %w", err)
	}
	return New(db, dialect), nil
}

// sqliteDSN は外部キー制約が常に有効になるようDSNにpragmaを追加する。
// 外部キー制約は接続ごとの設定のため、DSNで指定しないとコネクションプールの
// 一部の接続でカスケード削除が効かなくなる。
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

// Dialect は接続先データベースの種類を返す。
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping はデータベースへの疎通を確認する。
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close はデータベース接続を閉じる。
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind は ? プレースホルダを接続先の形式に書き換える。
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// isUniqueViolation は一意制約違反のエラーかどうかを判定する。
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
