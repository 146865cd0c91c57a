// スコア記録APIサーバーのエントリポイント。
// 起動時に未適用のマイグレーションを適用し、SIGINT/SIGTERMを受けるまでリクエストを処理する。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/nao1215/scorefeed/internal/api"
	"github.com/nao1215/scorefeed/internal/config"
	"github.com/nao1215/scorefeed/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("設定の読み込みに失敗: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("データベースの初期化に失敗: %v", err)
	}
	defer st.Close()

	logger.WithFields(logrus.Fields{
		"driver": st.Dialect(),
		"port":   cfg.Port,
	}).Info("スコア記録APIを起動します")

	if err := api.NewServer(cfg, st, logger).Run(ctx); err != nil {
		logger.WithError(err).Error("スコア記録APIが異常終了しました")
		return
	}
	logger.Info("スコア記録APIを停止しました")
}
