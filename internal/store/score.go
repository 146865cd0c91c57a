package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/nao1215/scorefeed/internal/model"
)

const scoreEntryColumns = "s.id, s.user_id, s.total_score, s.played_at, u.name"

// CreateScore はスコアを登録し、所有者名を結合した行を返す。
func (s *Store) CreateScore(ctx context.Context, sc model.Score) (model.ScoreEntry, error) {
	query := s.rebind(`INSERT INTO scores (user_id, total_score, played_at) VALUES (?, ?, ?) RETURNING id`)

	var id int64
	if err := s.db.QueryRowContext(ctx, query, sc.UserID, sc.TotalScore, sc.PlayedAt).Scan(&id); err != nil {
		return model.ScoreEntry{}, fmt.Errorf("スコアの作成に失敗: %w", err)
	}
	return s.ScoreByID(ctx, id)
}

// ScoreByID はIDでスコアを取得する。存在しない場合はErrNotFoundを返す。
func (s *Store) ScoreByID(ctx context.Context, id int64) (model.ScoreEntry, error) {
	query := s.rebind(`SELECT ` + scoreEntryColumns + `
		FROM scores s JOIN users u ON u.id = s.user_id
		WHERE s.id = ?`)

	var e model.ScoreEntry
	err := s.db.QueryRowContext(ctx, query, id).Scan(&e.ID, &e.UserID, &e.TotalScore, &e.PlayedAt, &e.UserName)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScoreEntry{}, ErrNotFound
	}
	if err != nil {
		return model.ScoreEntry{}, fmt.Errorf("スコアの取得に失敗: %w", err)
	}
	return e, nil
}

// DeleteScore はスコアを削除する。存在しない場合はErrNotFoundを返す。
func (s *Store) DeleteScore(ctx context.Context, id int64) error {
	query := s.rebind(`DELETE FROM scores WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("スコアの削除に失敗: %w", err)
	}
	return expectAffected(res)
}

// ScoresByUser はユーザーが所有するスコアを登録順に返す。
func (s *Store) ScoresByUser(ctx context.Context, userID int64) ([]model.ScoreEntry, error) {
	query := s.rebind(`SELECT ` + scoreEntryColumns + `
		FROM scores s JOIN users u ON u.id = s.user_id
		WHERE s.user_id = ?
		ORDER BY s.id`)
	return s.listScores(ctx, query, userID)
}

// RecentScores は全ユーザーのスコアをプレイ日の新しい順に最大limit件返す。
// 同じプレイ日のスコア同士の順序は保証しない。
func (s *Store) RecentScores(ctx context.Context, limit int) ([]model.ScoreEntry, error) {
	query := s.rebind(`SELECT ` + scoreEntryColumns + `
		FROM scores s JOIN users u ON u.id = s.user_id
		ORDER BY s.played_at DESC
		LIMIT ?`)
	return s.listScores(ctx, query, limit)
}

// listScores は複数件のスコアを取得する共通処理。
func (s *Store) listScores(ctx context.Context, query string, args ...any) ([]model.ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("スコア一覧の取得に失敗: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := make([]model.ScoreEntry, 0)
	for rows.Next() {
		var e model.ScoreEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.TotalScore, &e.PlayedAt, &e.UserName); err != nil {
			return nil, fmt.Errorf("スコア行の読み取りに失敗: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("スコア一覧の読み取りに失敗: %w", err)
	}
	return entries, nil
}
