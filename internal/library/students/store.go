package students

import (
	"context"
	"database/sql"
)

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Insert(ctx context.Context, st *StudentResponse) error {
	const q = `
	INSERT INTO students (id, name, grade, phone_number, student_id, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		st.ID, st.Name, st.Grade, nullStrOrNil(st.PhoneNumber), st.StudentNumber, string(st.Status), st.CreatedAt,
	)
	return err
}

func (s *Store) GetByID(ctx context.Context, id string) (*StudentResponse, error) {
	const q = `
	SELECT id, name, grade, phone_number, student_id, status, created_at
	FROM students WHERE id = ?`
	var st StudentResponse
	var phone sql.NullString
	if err := s.db.QueryRowContext(ctx, q, id).Scan(
		&st.ID, &st.Name, &st.Grade, &phone, &st.StudentNumber, &st.Status, &st.CreatedAt,
	); err != nil {
		return nil, err
	}
	if phone.Valid {
		v := phone.String
		st.PhoneNumber = &v
	}
	return &st, nil
}

func (s *Store) List(ctx context.Context) ([]StudentResponse, error) {
	const q = `
	SELECT id, name, grade, phone_number, student_id, status, created_at
	FROM students ORDER BY created_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]StudentResponse, 0, 16)
	for rows.Next() {
		var st StudentResponse
		var phone sql.NullString
		if err := rows.Scan(
			&st.ID, &st.Name, &st.Grade, &phone, &st.StudentNumber, &st.Status, &st.CreatedAt,
		); err != nil {
			return nil, err
		}
		if phone.Valid {
			v := phone.String
			st.PhoneNumber = &v
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, id string, in UpdateStudentRequest) error {
	const q = `
	UPDATE students
	SET name = ?, grade = ?, phone_number = ?, student_id = ?, status = ?
	WHERE id = ?`
	res, err := s.db.ExecContext(ctx, q,
		in.Name, in.Grade, nullStrOrNil(in.PhoneNumber), in.StudentNumber, string(in.Status), id,
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM students WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if aff, _ := res.RowsAffected(); aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullStrOrNil(p *string) any {
	if p != nil && *p != "" {
		return *p
	}
	return nil
}
