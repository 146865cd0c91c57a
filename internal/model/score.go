package model

// Score は scores テーブルの1行を表す。作成後に更新されることはない。
type Score struct {
	// ID はスコアの一意識別子。
	ID int64
	// UserID はスコアを登録したユーザー（所有者）のID。
	UserID int64
	// TotalScore はゲームの合計スコア。
	TotalScore int
	// PlayedAt はプレイした日付。
	PlayedAt Date
}

// ScoreEntry は所有者の名前を結合したスコア。
type ScoreEntry struct {
	Score
	// UserName は所有者の表示名。
	UserName string
}

// ScoreView はスコアの公開用射影。played_at は YYYY-MM-DD 形式。
type ScoreView struct {
	UserName   string `json:"user_name"`
	TotalScore int    `json:"total_score"`
	PlayedAt   string `json:"played_at"`
}

// View はスコアを公開用射影に変換する。
func (e ScoreEntry) View() ScoreView {
	return ScoreView{
		UserName:   e.UserName,
		TotalScore: e.TotalScore,
		PlayedAt:   e.PlayedAt.String(),
	}
}

// Views はスコアの一覧を公開用射影の一覧に変換する。
// 空の場合もnilではなく空スライスを返す（JSONで [] になるように）。
func Views(entries []ScoreEntry) []ScoreView {
	views := make([]ScoreView, 0, len(entries))
	for _, e := range entries {
		views = append(views, e.View())
	}
	return views
}
