package lendings

import (
	"database/sql"
	"time"
)

// Status は lent.status の取りうる値。lent → returned の一方向のみ。
type Status string

const (
	StatusLent     Status = "lent"
	StatusReturned Status = "returned"
)

// Lending は lent テーブルの1行を表す
type Lending struct {
	ID         string
	BookID     string
	StudentID  string
	LentAt     time.Time
	DueDate    time.Time
	ReturnedAt sql.NullTime
	Status     Status
}

// 貸出一覧取得用の検索条件
type Filter struct {
	BookID    *string
	StudentID *string
}

// viewRow は books/students を結合した1行（スキャン用）。
// 参照先が消えていても行は返り、結合列は空文字になる。
type viewRow struct {
	Lending
	BookTitle     string
	BookAuthor    string
	StudentName   string
	StudentNumber string
}
