package lendings

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"toshokan-backend/internal/platform/db"
)

type Store struct{ db *sql.DB }

func NewStore(sqldb *sql.DB) *Store { return &Store{db: sqldb} }

// ---- Transactional Methods ----

// ExecCheckout handles the full transaction flow for creating a lending:
// 在庫行の確認 → 貸出上限チェック → lent INSERT → 在庫減算・status更新。
// SQLite のトランザクションが書き込みを直列化するので行ロックは不要。
func (s *Store) ExecCheckout(ctx context.Context, l *Lending) error {
	return db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		// 1. 在庫確認（存在しない本への貸出は黙って成功させない）
		var quantity int
		const bookQ = `SELECT quantity FROM books WHERE id = ?`
		if err := tx.QueryRowContext(ctx, bookQ, l.BookID).Scan(&quantity); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound("book not found")
			}
			return err
		}
		if quantity <= 0 {
			return ErrConflict("book not available")
		}

		// 2. 同一生徒のアクティブ貸出は1件まで。チェックは同一Tx内で行う。
		var active int
		const activeQ = `SELECT COUNT(*) FROM lent WHERE student_id = ? AND status = ?`
		if err := tx.QueryRowContext(ctx, activeQ, l.StudentID, string(StatusLent)).Scan(&active); err != nil {
			return err
		}
		if active > 0 {
			return ErrConflict("student already has an active lending")
		}

		// 3. 貸出レコード作成
		const insertQ = `
		INSERT INTO lent (id, book_id, student_id, lent_at, due_date, status)
		VALUES (?, ?, ?, ?, ?, ?)`
		if _, err := tx.ExecContext(ctx, insertQ,
			l.ID, l.BookID, l.StudentID, l.LentAt, l.DueDate, string(l.Status),
		); err != nil {
			return err
		}

		// 4. 在庫減算。残りが0なら unavailable
		const decQ = `
		UPDATE books
		SET quantity = quantity - 1,
		    status = CASE WHEN quantity - 1 <= 0 THEN 'unavailable' ELSE 'available' END
		WHERE id = ?`
		res, err := tx.ExecContext(ctx, decQ, l.BookID)
		if err != nil {
			return err
		}
		if aff, _ := res.RowsAffected(); aff != 1 {
			return ErrInternal("failed to update books.quantity")
		}
		return nil
	})
}

// ExecReturn handles the full transaction flow for returning a lending:
// 状態チェック → lent UPDATE → 在庫加算。返却された本は常に available に戻す。
func (s *Store) ExecReturn(ctx context.Context, id string, returnedAt time.Time) error {
	return db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		var bookID string
		var status Status
		const getQ = `SELECT book_id, status FROM lent WHERE id = ?`
		if err := tx.QueryRowContext(ctx, getQ, id).Scan(&bookID, &status); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound("lending not found")
			}
			return err
		}
		if status != StatusLent {
			return ErrInvalidState("lending already returned")
		}

		const updQ = `UPDATE lent SET status = ?, returned_at = ? WHERE id = ?`
		if _, err := tx.ExecContext(ctx, updQ, string(StatusReturned), returnedAt, id); err != nil {
			return err
		}

		const incQ = `
		UPDATE books
		SET quantity = quantity + 1,
		    status = 'available'
		WHERE id = ?`
		res, err := tx.ExecContext(ctx, incQ, bookID)
		if err != nil {
			return err
		}
		// 本が先に削除されていたら返却ごと失敗させる（0行更新を握りつぶさない）
		if aff, _ := res.RowsAffected(); aff == 0 {
			return ErrNotFound("book not found")
		}
		return nil
	})
}

// ---- Corrections ----

func (s *Store) Update(ctx context.Context, id string, in UpdateLendingRequest) error {
	const q = `
	UPDATE lent
	SET book_id = ?, student_id = ?, due_date = ?, returned_at = ?
	WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q,
		in.BookID, in.StudentID, in.DueDate.UTC(), nullTimeOrNil(in.ReturnedAt), id,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound("lending not found")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lent WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return ErrNotFound("lending not found")
	}
	return nil
}

// ---- Queries ----

const viewSelect = `
	SELECT
	l.id, l.book_id, l.student_id, l.lent_at, l.due_date, l.returned_at, l.status,
	COALESCE(b.title, '')      AS book_title,
	COALESCE(b.author, '')     AS book_author,
	COALESCE(s.name, '')       AS student_name,
	COALESCE(s.student_id, '') AS student_number
	FROM lent l
	LEFT JOIN books b ON b.id = l.book_id
	LEFT JOIN students s ON s.id = l.student_id`

func (s *Store) GetView(ctx context.Context, id string) (*viewRow, error) {
	q := viewSelect + ` WHERE l.id = ?`
	var r viewRow
	if err := s.db.QueryRowContext(ctx, q, id).Scan(
		&r.ID, &r.BookID, &r.StudentID, &r.LentAt, &r.DueDate, &r.ReturnedAt, &r.Status,
		&r.BookTitle, &r.BookAuthor, &r.StudentName, &r.StudentNumber,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound("lending not found")
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) ListViews(ctx context.Context, f Filter) ([]viewRow, error) {
	sb := strings.Builder{}
	sb.WriteString(viewSelect)
	sb.WriteString(` WHERE 1=1`)

	args := []any{}
	if f.BookID != nil {
		sb.WriteString(` AND l.book_id = ?`)
		args = append(args, *f.BookID)
	}
	if f.StudentID != nil {
		sb.WriteString(` AND l.student_id = ?`)
		args = append(args, *f.StudentID)
	}
	sb.WriteString(` ORDER BY l.lent_at DESC`)

	rows, err := s.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []viewRow
	for rows.Next() {
		var r viewRow
		if err := rows.Scan(
			&r.ID, &r.BookID, &r.StudentID, &r.LentAt, &r.DueDate, &r.ReturnedAt, &r.Status,
			&r.BookTitle, &r.BookAuthor, &r.StudentName, &r.StudentNumber,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullTimeOrNil(t *time.Time) any {
	if t != nil {
		return t.UTC()
	}
	return nil
}
