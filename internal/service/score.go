package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nao1215/scorefeed/internal/model"
	"github.com/nao1215/scorefeed/internal/store"
)

// FeedLimit はフィードに含めるスコアの最大件数。
const FeedLimit = 25

// ScoreStore はScoreServiceが使う読み書き操作。
type ScoreStore interface {
	CreateScore(ctx context.Context, sc model.Score) (model.ScoreEntry, error)
	ScoreByID(ctx context.Context, id int64) (model.ScoreEntry, error)
	DeleteScore(ctx context.Context, id int64) error
	RecentScores(ctx context.Context, limit int) ([]model.ScoreEntry, error)
}

// ScoreRange は登録できる合計スコアの範囲（両端を含む）。
type ScoreRange struct {
	Min int
	Max int
}

// Contains は値が範囲内かどうかを返す。
func (r ScoreRange) Contains(v int) bool {
	return v >= r.Min && v <= r.Max
}

// ScoreService はスコアの登録・削除とフィードの取得を行う。
type ScoreService struct {
	store    ScoreStore
	scores   ScoreRange
	now      func() time.Time
	location *time.Location
}

// ScoreOption はScoreServiceの設定を変更する。
type ScoreOption func(*ScoreService)

// WithClock は「今日」の判定に使う現在時刻の取得方法を差し替える。
func WithClock(now func() time.Time) ScoreOption {
	return func(s *ScoreService) {
		s.now = now
	}
}

// WithLocation は「今日」を判定するタイムゾーンを指定する。既定はtime.Local。
func WithLocation(loc *time.Location) ScoreOption {
	return func(s *ScoreService) {
		s.location = loc
	}
}

// NewScoreService は新しいScoreServiceを生成する。
func NewScoreService(st ScoreStore, scores ScoreRange, opts ...ScoreOption) *ScoreService {
	s := &ScoreService{
		store:    st,
		scores:   scores,
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// today は現在のタイムゾーンでの今日の日付を返す。
func (s *ScoreService) today() model.Date {
	return model.DateOf(s.now().In(s.location))
}

// Create は呼び出し元が所有するスコアを登録する。
// プレイ日が未来の場合や合計スコアが範囲外の場合はValidationErrorを返し、何も保存しない。
func (s *ScoreService) Create(ctx context.Context, caller model.Identity, totalScore int, playedAt string) (model.ScoreView, error) {
	var messages []string

	date, err := model.ParseDate(playedAt)
	if err != nil {
		messages = append(messages, "Played at must be a date in YYYY-MM-DD format")
	} else if date.After(s.today()) {
		messages = append(messages, "Played at can't be in the future")
	}
	if !s.scores.Contains(totalScore) {
		messages = append(messages, fmt.Sprintf("Total score must be between %d and %d", s.scores.Min, s.scores.Max))
	}
	if len(messages) > 0 {
		return model.ScoreView{}, &ValidationError{Messages: messages}
	}

	created, err := s.store.CreateScore(ctx, model.Score{
		UserID:     caller.UserID,
		TotalScore: totalScore,
		PlayedAt:   date,
	})
	if err != nil {
		return model.ScoreView{}, fmt.Errorf("スコアの登録に失敗: %w", err)
	}
	return created.View(), nil
}

// Delete は呼び出し元が所有するスコアを削除し、削除前の内容を返す。
// スコアが存在しない場合はErrNotFound、所有者でない場合はErrForbiddenを返す。
func (s *ScoreService) Delete(ctx context.Context, caller model.Identity, scoreID int64) (model.ScoreView, error) {
	score, err := s.store.ScoreByID(ctx, scoreID)
	if errors.Is(err, store.ErrNotFound) {
		return model.ScoreView{}, ErrNotFound
	}
	if err != nil {
		return model.ScoreView{}, fmt.Errorf("スコアの取得に失敗: %w", err)
	}

	if score.UserID != caller.UserID {
		return model.ScoreView{}, ErrForbidden
	}

	if err := s.store.DeleteScore(ctx, score.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// 取得から削除までの間に他のリクエストが削除した
			return model.ScoreView{}, ErrNotFound
		}
		return model.ScoreView{}, fmt.Errorf("スコアの削除に失敗: %w", err)
	}
	return score.View(), nil
}

// Feed は全ユーザーのスコアをプレイ日の新しい順に最大FeedLimit件返す。
func (s *ScoreService) Feed(ctx context.Context) ([]model.ScoreView, error) {
	entries, err := s.store.RecentScores(ctx, FeedLimit)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得に失敗: %w", err)
	}
	return model.Views(entries), nil
}
