// データベーススキーマを管理するCLI。
//
//	migrate -cmd up      未適用のマイグレーションをすべて適用する
//	migrate -cmd down    最後に適用したマイグレーションを1つ取り消す
//	migrate -cmd status  各マイグレーションの適用状況を表示する
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nao1215/scorefeed/internal/config"
	"github.com/nao1215/scorefeed/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		logrus.Fatal(err)
	}
}

// run はフラグを解釈してマイグレーション操作を実行する。
func run(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(out)
	cmd := fs.String("cmd", "up", "実行する操作 (up / down / status)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("設定の読み込みに失敗: %w", err)
	}

	st, err := store.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer st.Close()

	switch *cmd {
	case "up":
		applied, err := st.Migrate(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			fmt.Fprintln(out, "適用するマイグレーションはありません")
			return nil
		}
		for _, v := range applied {
			fmt.Fprintf(out, "適用しました: %05d\n", v)
		}
	case "down":
		v, err := st.Rollback(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "取り消しました: %05d\n", v)
	case "status":
		states, err := st.MigrationStatus(ctx)
		if err != nil {
			return err
		}
		for _, s := range states {
			appliedAt := "未適用"
			if s.Applied {
				appliedAt = s.AppliedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(out, "%05d  %-30s  %s\n", s.Version, s.Path, appliedAt)
		}
	default:
		return fmt.Errorf("未対応の操作です: %q (up / down / status)", *cmd)
	}
	return nil
}
