package exports

import (
	"context"
	"database/sql"
	"strconv"
	"time"
)

type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service { return &Service{db: db} }

func (s *Service) BooksCSV(ctx context.Context, enc Encoding) ([]byte, error) {
	const q = `
	SELECT id, title, author, quantity, isbn, category, status, created_at
	FROM books ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		var id, title, author, isbn, category, status string
		var quantity int
		var createdAt time.Time
		if err := rows.Scan(&id, &title, &author, &quantity, &isbn, &category, &status, &createdAt); err != nil {
			return nil, err
		}
		records = append(records, []string{
			id, title, author, strconv.Itoa(quantity), isbn, category, status,
			createdAt.UTC().Format(time.RFC3339),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	header := []string{"id", "title", "author", "quantity", "isbn", "category", "status", "created_at"}
	return encodeCSV(header, records, enc)
}

func (s *Service) LendingsCSV(ctx context.Context, enc Encoding) ([]byte, error) {
	const q = `
	SELECT
	l.id, COALESCE(b.title, ''), COALESCE(s.name, ''), COALESCE(s.student_id, ''),
	l.lent_at, l.due_date, l.returned_at, l.status
	FROM lent l
	LEFT JOIN books b ON b.id = l.book_id
	LEFT JOIN students s ON s.id = l.student_id
	ORDER BY l.lent_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records [][]string
	for rows.Next() {
		var id, title, name, number, status string
		var lentAt, dueDate time.Time
		var returnedAt sql.NullTime
		if err := rows.Scan(&id, &title, &name, &number, &lentAt, &dueDate, &returnedAt, &status); err != nil {
			return nil, err
		}
		returned := ""
		if returnedAt.Valid {
			returned = returnedAt.Time.UTC().Format(time.RFC3339)
		}
		records = append(records, []string{
			id, title, name, number,
			lentAt.UTC().Format(time.RFC3339),
			dueDate.UTC().Format(time.RFC3339),
			returned, status,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	header := []string{"id", "book_title", "student_name", "student_number", "lent_at", "due_date", "returned_at", "status"}
	return encodeCSV(header, records, enc)
}
