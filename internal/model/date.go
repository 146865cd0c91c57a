package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

// DateLayout は日付の文字列表現。
const DateLayout = "2006-01-02"

// Date は時刻を持たない暦日。ゼロ値は 0001-01-01。
type Date struct {
	year  int
	month time.Month
	day   int
}

// NewDate は年月日からDateを生成する。範囲外の値は time.Date と同様に正規化される。
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf は時刻が属する暦日を返す。タイムゾーンは t のものを使う。
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate は YYYY-MM-DD 形式の文字列をDateに変換する。
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("日付の形式が不正です(%q): %w", s, err)
	}
	return DateOf(t), nil
}

// String は YYYY-MM-DD 形式の文字列を返す。
func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

// Time はその日のUTC 0時を返す。
func (d Date) Time() time.Time {
	if d.month == 0 {
		return time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC)
}

// IsZero はゼロ値かどうかを返す。
func (d Date) IsZero() bool {
	return d.month == 0
}

// After は d が other より後の日付かどうかを返す。
func (d Date) After(other Date) bool {
	return d.Time().After(other.Time())
}

// Before は d が other より前の日付かどうかを返す。
func (d Date) Before(other Date) bool {
	return d.Time().Before(other.Time())
}

// AddDays は n 日後の日付を返す。
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Scan は sql.Scanner を実装する。
// SQLiteのTEXT列（文字列）とPostgreSQLのDATE列（time.Time）の両方を受け付ける。
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		*d = DateOf(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	case nil:
		return fmt.Errorf("日付がNULLです")
	default:
		return fmt.Errorf("日付に変換できない型です: %T", src)
	}
}

// scanString は文字列の日付を読み取る。
// ドライバによっては時刻付きで返されるため、先頭10文字のみを使う。
func (d *Date) scanString(s string) error {
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value は driver.Valuer を実装する。YYYY-MM-DD 形式の文字列として保存する。
func (d Date) Value() (driver.Value, error) {
	return d.String(), nil
}
