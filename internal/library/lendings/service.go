package lendings

import (
	"context"
	"crypto/rand"
	"database/sql"
	"time"

	"github.com/oklog/ulid/v2"
)

// ===== インターフェース群 =====

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

type IDGen interface {
	New() (string, error)
}

type ulidGen struct{}

func (ulidGen) New() (string, error) {
	t := time.Now().UTC()
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(t), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ===== Service本体 =====

type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
	id    IDGen
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:    db,
		store: NewStore(db),
		clock: realClock{},
		id:    ulidGen{},
	}
}

// Checkout は貸出レコードの作成と在庫減算を1トランザクションで行う。
// どちらか一方だけ反映された状態は絶対に残さない。
func (s *Service) Checkout(ctx context.Context, req CheckoutRequest) (*LendingResponse, error) {
	if req.BookID == "" {
		return nil, ErrInvalid("book_id is required")
	}
	if req.StudentID == "" {
		return nil, ErrInvalid("student_id is required")
	}
	if req.DueDate.IsZero() {
		return nil, ErrInvalid("due_date is required")
	}

	idStr, err := s.id.New()
	if err != nil {
		return nil, err
	}

	l := &Lending{
		ID:        idStr,
		BookID:    req.BookID,
		StudentID: req.StudentID,
		LentAt:    s.clock.Now(),
		DueDate:   req.DueDate.UTC(),
		Status:    StatusLent,
	}

	if err := s.store.ExecCheckout(ctx, l); err != nil {
		return nil, err
	}

	return s.GetLending(ctx, l.ID)
}

// Return は lent → returned の遷移と在庫加算を1トランザクションで行う。
// 返却は一度だけ。二度目は INVALID_STATE。
func (s *Service) Return(ctx context.Context, id string) (*LendingResponse, error) {
	if id == "" {
		return nil, ErrInvalid("id is required")
	}

	if err := s.store.ExecReturn(ctx, id, s.clock.Now()); err != nil {
		return nil, err
	}

	return s.GetLending(ctx, id)
}

// UpdateLending は記録の修正専用。在庫には一切触らない。
func (s *Service) UpdateLending(ctx context.Context, id string, req UpdateLendingRequest) (*LendingResponse, error) {
	if id == "" {
		return nil, ErrInvalid("id is required")
	}
	if req.BookID == "" || req.StudentID == "" {
		return nil, ErrInvalid("book_id and student_id are required")
	}
	if req.DueDate.IsZero() {
		return nil, ErrInvalid("due_date is required")
	}

	if err := s.store.Update(ctx, id, req); err != nil {
		return nil, err
	}
	return s.GetLending(ctx, id)
}

// DeleteLending は記録を無条件に消す。貸出時に減らした在庫は戻さないので、
// 「貸出の取り消し」には使えない。取り消したいなら Return を使うこと。
func (s *Service) DeleteLending(ctx context.Context, id string) error {
	if id == "" {
		return ErrInvalid("id is required")
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) GetLending(ctx context.Context, id string) (*LendingResponse, error) {
	row, err := s.store.GetView(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := buildResponse(row)
	return &resp, nil
}

func (s *Service) ListLendings(ctx context.Context, f Filter) ([]LendingResponse, error) {
	rows, err := s.store.ListViews(ctx, f)
	if err != nil {
		return nil, err
	}

	result := make([]LendingResponse, 0, len(rows))
	for _, r := range rows {
		result = append(result, buildResponse(&r))
	}
	return result, nil
}

// ヘルパー関数
func buildResponse(r *viewRow) LendingResponse {
	resp := LendingResponse{
		ID:            r.ID,
		BookID:        r.BookID,
		StudentID:     r.StudentID,
		LentAt:        r.LentAt,
		DueDate:       r.DueDate,
		Status:        r.Status,
		BookTitle:     r.BookTitle,
		BookAuthor:    r.BookAuthor,
		StudentName:   r.StudentName,
		StudentNumber: r.StudentNumber,
	}
	if r.ReturnedAt.Valid {
		v := r.ReturnedAt.Time
		resp.ReturnedAt = &v
	}
	return resp
}
