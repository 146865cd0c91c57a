package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/scorefeed/internal/model"
	"github.com/nao1215/scorefeed/internal/store"
)

// UserStore はUserServiceが使う読み取り操作。
type UserStore interface {
	UserByID(ctx context.Context, id int64) (model.User, error)
	ScoresByUser(ctx context.Context, userID int64) ([]model.ScoreEntry, error)
}

// Profile はユーザーの公開情報と所有スコアの一覧。
type Profile struct {
	User   model.UserView    `json:"user"`
	Scores []model.ScoreView `json:"scores"`
}

// UserService はユーザー情報の参照を行う。
type UserService struct {
	store UserStore
}

// NewUserService は新しいUserServiceを生成する。
func NewUserService(s UserStore) *UserService {
	return &UserService{store: s}
}

// Profile は指定したユーザーの公開情報と、所有するスコアを登録順で返す。
// 認証済みであれば誰のプロフィールでも参照できる。
func (s *UserService) Profile(ctx context.Context, userID int64) (Profile, error) {
	user, err := s.store.UserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("ユーザーの取得に失敗: %w", err)
	}

	scores, err := s.store.ScoresByUser(ctx, user.ID)
	if err != nil {
		return Profile{}, fmt.Errorf("スコア一覧の取得に失敗: %w", err)
	}

	return Profile{
		User:   user.View(),
		Scores: model.Views(scores),
	}, nil
}
