// ユーザーを登録・削除する管理用CLI。APIにはユーザー登録のエンドポイントが無いため、
// アカウントはこのコマンドで作成する。
//
//	users add -name NAME -email EMAIL -password PASSWORD
//	users delete -id ID
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/nao1215/scorefeed/internal/auth"
	"github.com/nao1215/scorefeed/internal/config"
	"github.com/nao1215/scorefeed/internal/model"
	"github.com/nao1215/scorefeed/internal/store"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 6

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("設定の読み込みに失敗: %v", err)
	}

	st, err := store.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN)
	if err != nil {
		logrus.Fatalf("データベースの初期化に失敗: %v", err)
	}

	err = run(ctx, st, cfg.BcryptCost, os.Args[1:], os.Stdout)
	_ = st.Close()
	if err != nil {
		logrus.Fatal(err)
	}
}

// run はサブコマンドを解釈して実行する。
func run(ctx context.Context, st *store.Store, cost int, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errors.New("サブコマンドを指定してください (add / delete)")
	}

	switch args[0] {
	case "add":
		return addUser(ctx, st, cost, args[1:], out)
	case "delete":
		return deleteUser(ctx, st, args[1:], out)
	default:
		return fmt.Errorf("未対応のサブコマンドです: %q (add / delete)", args[0])
	}
}

// addUser はユーザーを登録する。
func addUser(ctx context.Context, st *store.Store, cost int, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(out)
	name := fs.String("name", "", "表示名")
	email := fs.String("email", "", "ログインに使うメールアドレス")
	password := fs.String("password", "", "パスワード")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*name) == "" || !strings.Contains(*email, "@") {
		return errors.New("-name と -email を正しく指定してください")
	}
	if len(*password) < minPasswordLength {
		return fmt.Errorf("パスワードは%d文字以上にしてください", minPasswordLength)
	}

	hash, err := auth.HashPassword(*password, cost)
	if err != nil {
		return err
	}

	u, err := st.CreateUser(ctx, model.User{
		Name:         strings.TrimSpace(*name),
		Email:        *email,
		PasswordHash: hash,
		JTI:          auth.NewJTI(),
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return fmt.Errorf("%s は既に登録されています", *email)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "ユーザーを登録しました: id=%d name=%s email=%s\n", u.ID, u.Name, u.Email)
	return nil
}

// deleteUser はユーザーと所有するスコアを削除する。
func deleteUser(ctx context.Context, st *store.Store, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	fs.SetOutput(out)
	id := fs.Int64("id", 0, "削除するユーザーのID")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("-id を指定してください")
	}

	if err := st.DeleteUser(ctx, *id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("ユーザーが見つかりません: id=%d", *id)
		}
		return err
	}

	fmt.Fprintf(out, "ユーザーを削除しました: id=%d\n", *id)
	return nil
}
