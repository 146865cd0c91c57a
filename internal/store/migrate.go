package store

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// MigrationState は1つのマイグレーションの適用状態。
type MigrationState struct {
	// Version はマイグレーションのバージョン番号。
	Version int64
	// Path はマイグレーションファイルのパス。
	Path string
	// Applied は適用済みかどうか。
	Applied bool
	// AppliedAt は適用日時。未適用の場合はゼロ値。
	AppliedAt time.Time
}

// provider は接続先に対応するマイグレーションを読み込んだgooseのProviderを返す。
func (s *Store) provider() (*goose.Provider, error) {
	dir := "migrations/sqlite"
	dialect := goose.DialectSQLite3
	if s.dialect == DialectPostgres {
		dir = "migrations/postgres"
		dialect = goose.DialectPostgres
	}

	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return nil, fmt.Errorf("マイグレーションディレクトリの読み込みに失敗: %w", err)
	}

	p, err := goose.NewProvider(dialect, s.db, fsys)
	if err != nil {
		return nil, fmt.Errorf("マイグレーションの初期化に失敗: %w", err)
	}
	return p, nil
}

// Migrate は未適用のマイグレーションを順序通りに適用し、適用したバージョンを返す。
func (s *Store) Migrate(ctx context.Context) ([]int64, error) {
	p, err := s.provider()
	if err != nil {
		return nil, err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("マイグレーションの適用に失敗: %w", err)
	}

	versions := make([]int64, 0, len(results))
	for _, r := range results {
		versions = append(versions, r.Source.Version)
	}
	return versions, nil
}

// Rollback は最後に適用したマイグレーションを1つ取り消し、そのバージョンを返す。
func (s *Store) Rollback(ctx context.Context) (int64, error) {
	p, err := s.provider()
	if err != nil {
		return 0, err
	}

	result, err := p.Down(ctx)
	if err != nil {
		return 0, fmt.Errorf("マイグレーションの取り消しに失敗: %w", err)
	}
	return result.Source.Version, nil
}

// MigrationStatus はすべてのマイグレーションの適用状態をバージョン順に返す。
func (s *Store) MigrationStatus(ctx context.Context) ([]MigrationState, error) {
	p, err := s.provider()
	if err != nil {
		return nil, err
	}

	statuses, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("マイグレーション状態の取得に失敗: %w", err)
	}

	states := make([]MigrationState, 0, len(statuses))
	for _, st := range statuses {
		states = append(states, MigrationState{
			Version:   st.Source.Version,
			Path:      st.Source.Path,
			Applied:   st.State == goose.StateApplied,
			AppliedAt: st.AppliedAt,
		})
	}
	return states, nil
}
