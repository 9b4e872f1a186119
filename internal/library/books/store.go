package books

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, b *BookResponse) error {
	const q = `
	INSERT INTO books (id, title, author, quantity, isbn, category, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		b.ID, b.Title, b.Author, b.Quantity, b.ISBN, b.Category, string(b.Status), b.CreatedAt,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*BookResponse, error) {
	const q = `
	SELECT id, title, author, quantity, isbn, category, status, created_at
	FROM books WHERE id = ?`
	var b BookResponse
	if err := s.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Author, &b.Quantity, &b.ISBN, &b.Category, &b.Status, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) List(ctx context.Context) ([]BookResponse, error) {
	const q = `
	SELECT id, title, author, quantity, isbn, category, status, created_at
	FROM books ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]BookResponse, 0, 16)
	for rows.Next() {
		var b BookResponse
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Author, &b.Quantity, &b.ISBN, &b.Category, &b.Status, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, in UpdateBookRequest) error {
	const q = `
	UPDATE books
	SET title = ?, author = ?, quantity = ?, isbn = ?, category = ?, status = ?
	WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q,
		in.Title, in.Author, in.Quantity, in.ISBN, in.Category, string(in.Status), id,
	)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
