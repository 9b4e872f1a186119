package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ===== Error model =====
type Code string

const (
	CodeInvalidArgument Code = "INVALID_ARGUMENT"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeInternal        Code = "INTERNAL"
)

type APIError struct {
	Code    Code
	Message string
}

func (e *APIError) Error() string      { return fmt.Sprintf("%s: %s", e.Code, e.Message) }
func ErrInvalid(msg string) *APIError  { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func ErrNotFound(msg string) *APIError { return &APIError{Code: CodeNotFound, Message: msg} }
func ErrConflict(msg string) *APIError { return &APIError{Code: CodeConflict, Message: msg} }
func ErrInternal(msg string) *APIError { return &APIError{Code: CodeInternal, Message: msg} }

func toHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument:
			return 400
		case CodeNotFound:
			return 404
		case CodeConflict:
			return 409
		default:
			return 500
		}
	}
	return 500
}

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(db *sql.DB) *Service { return &Service{db: db, store: NewStore(db)} }

func (s *Service) CreateBook(ctx context.Context, in CreateBookRequest) (BookResponse, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return BookResponse{}, ErrInvalid("title and author are required")
	}
	if in.Quantity < 0 {
		return BookResponse{}, ErrInvalid("quantity must be >= 0")
	}

	b := BookResponse{
		ID:       uuid.NewString(),
		Title:    in.Title,
		Author:   in.Author,
		Quantity: in.Quantity,
		ISBN:     in.ISBN,
		Category: in.Category,
		// quantity=0 で登録された本を available で置かない
		Status:    StatusForQuantity(in.Quantity),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, &b); err != nil {
		return BookResponse{}, err
	}
	return b, nil
}

func (s *Service) GetBook(ctx context.Context, id string) (BookResponse, error) {
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BookResponse{}, ErrNotFound("book not found")
		}
		return BookResponse{}, err
	}
	return *out, nil
}

func (s *Service) ListBooks(ctx context.Context) ([]BookResponse, error) {
	return s.store.List(ctx)
}

func (s *Service) UpdateBook(ctx context.Context, id string, in UpdateBookRequest) (BookResponse, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Author) == "" {
		return BookResponse{}, ErrInvalid("title and author are required")
	}
	if in.Quantity < 0 {
		return BookResponse{}, ErrInvalid("quantity must be >= 0")
	}
	if !in.Status.Valid() {
		return BookResponse{}, ErrInvalid("status must be 'available' or 'unavailable'")
	}

	if err := s.store.Update(ctx, id, in); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return BookResponse{}, ErrNotFound("book not found")
		}
		return BookResponse{}, err
	}
	return s.GetBook(ctx, id)
}

// DeleteBook removes the row unconditionally. 貸出中の記録があっても消せる。
// 残った貸出記録の結合表示は空欄になる。
func (s *Service) DeleteBook(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("book not found")
		}
		return err
	}
	return nil
}
