package students

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ===== Error model (books と同型) =====
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

func (s *Service) CreateStudent(ctx context.Context, in CreateStudentRequest) (StudentResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return StudentResponse{}, ErrInvalid("name is required")
	}
	if strings.TrimSpace(in.StudentNumber) == "" {
		return StudentResponse{}, ErrInvalid("student_id is required")
	}

	st := StudentResponse{
		ID:            uuid.NewString(),
		Name:          in.Name,
		Grade:         in.Grade,
		PhoneNumber:   in.PhoneNumber,
		StudentNumber: in.StudentNumber,
		Status:        StatusActive,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.store.Insert(ctx, &st); err != nil {
		return StudentResponse{}, err
	}
	return st, nil
}

func (s *Service) GetStudent(ctx context.Context, id string) (StudentResponse, error) {
	out, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StudentResponse{}, ErrNotFound("student not found")
		}
		return StudentResponse{}, err
	}
	return *out, nil
}

func (s *Service) ListStudents(ctx context.Context) ([]StudentResponse, error) {
	return s.store.List(ctx)
}

func (s *Service) UpdateStudent(ctx context.Context, id string, in UpdateStudentRequest) (StudentResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return StudentResponse{}, ErrInvalid("name is required")
	}
	if strings.TrimSpace(in.StudentNumber) == "" {
		return StudentResponse{}, ErrInvalid("student_id is required")
	}
	if !in.Status.Valid() {
		return StudentResponse{}, ErrInvalid("status must be 'active' or 'inactive'")
	}

	if err := s.store.Update(ctx, id, in); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return StudentResponse{}, ErrNotFound("student not found")
		}
		return StudentResponse{}, err
	}
	return s.GetStudent(ctx, id)
}

func (s *Service) DeleteStudent(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound("student not found")
		}
		return err
	}
	return nil
}
