package statistics

import (
	"context"
	"database/sql"
	"time"

	"toshokan-backend/internal/platform/db"
)

// Store は集計クエリ置き場。ダッシュボード系は DBTX を受けて
// スナップショット読みに対応する。
type Store struct{}

func NewStore() *Store { return &Store{} }

type categoryCount struct {
	Name  string
	Count int64
}

func (s *Store) CountStudents(ctx context.Context, tx db.DBTX) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM students`).Scan(&n)
	return n, err
}

func (s *Store) SumBookQuantity(ctx context.Context, tx db.DBTX) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx, `SELECT COALESCE(SUM(quantity), 0) FROM books`).Scan(&n)
	return n, err
}

func (s *Store) SumAvailableQuantity(ctx context.Context, tx db.DBTX) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM books WHERE status = 'available'`).Scan(&n)
	return n, err
}

func (s *Store) CountActiveLendings(ctx context.Context, tx db.DBTX) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lent WHERE status = 'lent'`).Scan(&n)
	return n, err
}

func (s *Store) CountOverdueLendings(ctx context.Context, tx db.DBTX, now time.Time) (int64, error) {
	var n int64
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM lent WHERE status = 'lent' AND due_date < ?`, now).Scan(&n)
	return n, err
}

// CategoryLoanCounts returns loan counts per category over the whole history,
// most loaned first.
func (s *Store) CategoryLoanCounts(ctx context.Context, tx db.DBTX) ([]categoryCount, error) {
	const q = `
	SELECT COALESCE(b.category, '') AS category, COUNT(*) AS count
	FROM lent l
	LEFT JOIN books b ON b.id = l.book_id
	GROUP BY b.category
	ORDER BY count DESC`
	rows, err := tx.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []categoryCount
	for rows.Next() {
		var c categoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) PopularBooks(ctx context.Context, sqldb *sql.DB, limit int) ([]PopularBook, error) {
	// 返却済みも含めた累計。同数は登録順（created_at）で安定させる。
	const q = `
	SELECT
	b.id, b.title, b.author, b.category, b.status,
	COUNT(l.id) AS times_loaned
	FROM books b
	LEFT JOIN lent l ON l.book_id = b.id
	GROUP BY b.id
	ORDER BY times_loaned DESC, b.created_at ASC
	LIMIT ?`
	rows, err := sqldb.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]PopularBook, 0, limit)
	for rows.Next() {
		var p PopularBook
		if err := rows.Scan(&p.ID, &p.Title, &p.Author, &p.Category, &p.Status, &p.TimesLoaned); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) OverdueLendings(ctx context.Context, sqldb *sql.DB, now time.Time) ([]OverdueBook, error) {
	// INNER JOIN なので実体の消えた貸出は延滞一覧に出ない
	const q = `
	SELECT
	l.id, b.title, b.author, s.name, s.grade, s.student_id, l.due_date
	FROM lent l
	JOIN books b ON b.id = l.book_id
	JOIN students s ON s.id = l.student_id
	WHERE l.status = 'lent' AND l.due_date < ?
	ORDER BY l.due_date ASC`
	rows, err := sqldb.QueryContext(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OverdueBook
	for rows.Next() {
		var o OverdueBook
		if err := rows.Scan(
			&o.ID, &o.BookTitle, &o.Author, &o.StudentName, &o.Grade, &o.StudentNumber, &o.DueDate,
		); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) RecentLendings(ctx context.Context, sqldb *sql.DB, cutoff time.Time, limit int) ([]RecentActivity, error) {
	const q = `
	SELECT
	l.id, s.name, b.title, b.author, l.status, l.due_date, l.lent_at
	FROM lent l
	JOIN books b ON b.id = l.book_id
	JOIN students s ON s.id = l.student_id
	WHERE l.lent_at >= ?
	ORDER BY l.lent_at DESC
	LIMIT ?`
	rows, err := sqldb.QueryContext(ctx, q, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]RecentActivity, 0, limit)
	for rows.Next() {
		var a RecentActivity
		var due sql.NullTime
		if err := rows.Scan(&a.ID, &a.StudentName, &a.BookTitle, &a.Author, &a.ActivityType, &due, &a.CreatedAt); err != nil {
			return nil, err
		}
		if due.Valid {
			v := due.Time
			a.DueDate = &v
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
