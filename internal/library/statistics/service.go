package statistics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"toshokan-backend/internal/platform/db"
)

// ===== Error model (books/students と同型) =====
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

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// Service は読み取り専用の集計のみ。ライフサイクルには一切関与しない。
type Service struct {
	db    *sql.DB
	store *Store
	clock Clock
}

func NewService(sqldb *sql.DB) *Service {
	return &Service{db: sqldb, store: NewStore(), clock: realClock{}}
}

const (
	popularCategoryLimit = 4
	popularBookLimit     = 5
	recentActivityLimit  = 10
	recentActivityWindow = 24 * time.Hour
)

// Dashboard collects the dashboard counters in a single transaction so the
// numbers are taken from one consistent snapshot.
func (s *Service) Dashboard(ctx context.Context) (*DashboardStats, error) {
	now := s.clock.Now()

	var out DashboardStats
	err := db.RunInTx(ctx, s.db, func(ctx context.Context, tx db.DBTX) error {
		totalStudents, err := s.store.CountStudents(ctx, tx)
		if err != nil {
			return err
		}
		inLibrary, err := s.store.SumBookQuantity(ctx, tx)
		if err != nil {
			return err
		}
		available, err := s.store.SumAvailableQuantity(ctx, tx)
		if err != nil {
			return err
		}
		onLoan, err := s.store.CountActiveLendings(ctx, tx)
		if err != nil {
			return err
		}
		overdue, err := s.store.CountOverdueLendings(ctx, tx, now)
		if err != nil {
			return err
		}
		categories, err := s.store.CategoryLoanCounts(ctx, tx)
		if err != nil {
			return err
		}

		// 所蔵総数 = 棚在庫 + 貸出中
		totalBooks := inLibrary + onLoan

		// 割合は整数演算（切り捨て）。既存の画面表示と一致させるため。
		var totalLoans int64
		for _, c := range categories {
			totalLoans += c.Count
		}
		top := make([]CategoryStats, 0, popularCategoryLimit)
		for _, c := range categories {
			if len(top) == popularCategoryLimit {
				break
			}
			pct := int64(0)
			if totalLoans > 0 {
				pct = c.Count * 100 / totalLoans
			}
			top = append(top, CategoryStats{Name: c.Name, Count: c.Count, Percentage: pct})
		}

		utilization := int64(0)
		if totalBooks > 0 {
			utilization = onLoan * 100 / totalBooks
		}

		out = DashboardStats{
			TotalStudents:     totalStudents,
			TotalBooks:        totalBooks,
			AvailableBooks:    available,
			BooksOnLoan:       onLoan,
			OverdueBooks:      overdue,
			UtilizationRate:   utilization,
			PopularCategories: top,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PopularBooks ranks all books by historical loan count (returned included).
func (s *Service) PopularBooks(ctx context.Context) ([]PopularBook, error) {
	return s.store.PopularBooks(ctx, s.db, popularBookLimit)
}

// OverdueBooks lists active lendings past due, earliest due date first.
func (s *Service) OverdueBooks(ctx context.Context) ([]OverdueBook, error) {
	now := s.clock.Now()
	rows, err := s.store.OverdueLendings(ctx, s.db, now)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		// 丸1日単位の切り捨て
		rows[i].DaysOverdue = int64(now.Sub(rows[i].DueDate).Hours() / 24)
	}
	return rows, nil
}

// RecentActivity lists lendings created within the last 24 hours, newest first.
func (s *Service) RecentActivity(ctx context.Context) ([]RecentActivity, error) {
	cutoff := s.clock.Now().Add(-recentActivityWindow)
	return s.store.RecentLendings(ctx, s.db, cutoff, recentActivityLimit)
}
