// Package store はユーザーとスコアの永続化を担当する。
//
// database/sql の上に型付きのクエリ関数を用意し、SQLite（modernc.org/sqlite）と
// PostgreSQL（pgx）の両方を扱う。クエリは ? プレースホルダで記述し、
// PostgreSQLでは実行前に $n 形式へ書き換える。スキーマはgooseの
// マイグレーションとしてバイナリに埋め込まれている。
package store
