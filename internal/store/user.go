package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/nao1215/scorefeed/internal/model"
)

const userColumns = "id, name, email, password_hash, jti"

// CreateUser はユーザーを登録し、採番されたIDを設定して返す。
// メールアドレスは前後の空白を除去し、小文字に正規化して保存する。
func (s *Store) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	query := s.rebind(`INSERT INTO users (name, email, password_hash, jti) VALUES (?, ?, ?, ?) RETURNING id`)
	if err := s.db.QueryRowContext(ctx, query, u.Name, u.Email, u.PasswordHash, u.JTI).Scan(&u.ID); err != nil {
		if isUniqueViolation(err) {
			return model.User{}, ErrDuplicateEmail
		}
		return model.User{}, fmt.Errorf("ユーザーの作成に失敗: %w", err)
	}
	return u, nil
}

// UserByID はIDでユーザーを取得する。存在しない場合はErrNotFoundを返す。
func (s *Store) UserByID(ctx context.Context, id int64) (model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	return s.getUser(ctx, query, id)
}

// UserByEmail はメールアドレスでユーザーを取得する。
// 保存済みのアドレスは小文字に正規化されているため、引数をそのまま比較する。
func (s *Store) UserByEmail(ctx context.Context, email string) (model.User, error) {
	query := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE lower(email) = ?`)
	return s.getUser(ctx, query, email)
}

// getUser は1件のユーザーを取得する共通処理。
func (s *Store) getUser(ctx context.Context, query string, args ...any) (model.User, error) {
	var u model.User
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.JTI)
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}
	return u, nil
}

// UpdateJTI はユーザーのトークン失効マーカーを差し替える。
func (s *Store) UpdateJTI(ctx context.Context, userID int64, jti string) error {
	query := s.rebind(`UPDATE users SET jti = ? WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, jti, userID)
	if err != nil {
		return fmt.Errorf("失効マーカーの更新に失敗: %w", err)
	}
	return expectAffected(res)
}

// DeleteUser はユーザーを削除する。所有するスコアも外部キー制約により削除される。
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	query := s.rebind(`DELETE FROM users WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("ユーザーの削除に失敗: %w", err)
	}
	return expectAffected(res)
}

// expectAffected は更新・削除で1行以上が対象になったことを確認する。
func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("影響行数の取得に失敗: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
