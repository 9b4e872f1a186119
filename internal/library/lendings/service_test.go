package lendings

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toshokan-backend/internal/platform/db"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Connect(db.DatabaseConfig{Path: filepath.Join(t.TempDir(), "lib.db")})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func seedBook(t *testing.T, conn *sql.DB, title string, quantity int) string {
	t.Helper()
	id := uuid.NewString()
	status := "available"
	if quantity <= 0 {
		status = "unavailable"
	}
	_, err := conn.Exec(
		`INSERT INTO books (id, title, author, quantity, isbn, category, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, title, "author", quantity, "", "fiction", status, time.Now().UTC(),
	)
	require.NoError(t, err)
	return id
}

func seedStudent(t *testing.T, conn *sql.DB, name, number string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := conn.Exec(
		`INSERT INTO students (id, name, grade, phone_number, student_id, status, created_at) VALUES (?, ?, ?, NULL, ?, 'active', ?)`,
		id, name, "2-A", number, time.Now().UTC(),
	)
	require.NoError(t, err)
	return id
}

func bookState(t *testing.T, conn *sql.DB, id string) (quantity int, status string) {
	t.Helper()
	err := conn.QueryRow(`SELECT quantity, status FROM books WHERE id = ?`, id).Scan(&quantity, &status)
	require.NoError(t, err)
	return quantity, status
}

func countLendings(t *testing.T, conn *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM lent`).Scan(&n))
	return n
}

func TestCheckoutAndReturnRoundTrip(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	bookID := seedBook(t, conn, "吾輩は猫である", 1)
	studentID := seedStudent(t, conn, "山田太郎", "S-1001")

	due := time.Now().UTC().Add(7 * 24 * time.Hour)
	lending, err := svc.Checkout(ctx, CheckoutRequest{BookID: bookID, StudentID: studentID, DueDate: due})
	require.NoError(t, err)
	assert.Equal(t, StatusLent, lending.Status)
	assert.Equal(t, "吾輩は猫である", lending.BookTitle)
	assert.Equal(t, "S-1001", lending.StudentNumber)
	assert.Nil(t, lending.ReturnedAt)

	qty, status := bookState(t, conn, bookID)
	assert.Equal(t, 0, qty)
	assert.Equal(t, "unavailable", status)

	// 同じ生徒の2冊目は弾かれ、状態は変わらない
	other := seedBook(t, conn, "坊っちゃん", 3)
	_, err = svc.Checkout(ctx, CheckoutRequest{BookID: other, StudentID: studentID, DueDate: due})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeConflict, api.Code)
	qty, _ = bookState(t, conn, other)
	assert.Equal(t, 3, qty)
	assert.Equal(t, 1, countLendings(t, conn))

	// 返却で在庫が元に戻る
	returned, err := svc.Return(ctx, lending.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnedAt)

	qty, status = bookState(t, conn, bookID)
	assert.Equal(t, 1, qty)
	assert.Equal(t, "available", status)

	// 返却済みなら再び借りられる
	_, err = svc.Checkout(ctx, CheckoutRequest{BookID: other, StudentID: studentID, DueDate: due})
	require.NoError(t, err)
}

func TestCheckoutUnknownBook(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)

	studentID := seedStudent(t, conn, "山田太郎", "S-1001")
	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		BookID:    "no-such-book",
		StudentID: studentID,
		DueDate:   time.Now().UTC().Add(24 * time.Hour),
	})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)

	// 途中で失敗した貸出は痕跡を残さない
	assert.Equal(t, 0, countLendings(t, conn))
}

func TestCheckoutNoStock(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)

	bookID := seedBook(t, conn, "在庫なし", 0)
	studentID := seedStudent(t, conn, "山田太郎", "S-1001")

	_, err := svc.Checkout(context.Background(), CheckoutRequest{
		BookID:    bookID,
		StudentID: studentID,
		DueDate:   time.Now().UTC().Add(24 * time.Hour),
	})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeConflict, api.Code)
	assert.Equal(t, 0, countLendings(t, conn))
}

func TestReturnIsGuarded(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	bookID := seedBook(t, conn, "title", 2)
	studentID := seedStudent(t, conn, "name", "S-1")

	lending, err := svc.Checkout(ctx, CheckoutRequest{
		BookID: bookID, StudentID: studentID, DueDate: time.Now().UTC().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = svc.Return(ctx, lending.ID)
	require.NoError(t, err)

	// 二重返却は在庫を水増ししない
	_, err = svc.Return(ctx, lending.ID)
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidState, api.Code)

	qty, _ := bookState(t, conn, bookID)
	assert.Equal(t, 2, qty)
}

func TestReturnUnknownLending(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)

	_, err := svc.Return(context.Background(), "no-such-lending")
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}

func TestDeleteDoesNotRestoreStock(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	bookID := seedBook(t, conn, "title", 1)
	studentID := seedStudent(t, conn, "name", "S-1")

	lending, err := svc.Checkout(ctx, CheckoutRequest{
		BookID: bookID, StudentID: studentID, DueDate: time.Now().UTC().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLending(ctx, lending.ID))
	assert.Equal(t, 0, countLendings(t, conn))

	// 削除は帳消しではないので在庫は減ったまま
	qty, status := bookState(t, conn, bookID)
	assert.Equal(t, 0, qty)
	assert.Equal(t, "unavailable", status)

	err = svc.DeleteLending(ctx, lending.ID)
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}

func TestUpdateLendingDoesNotTouchInventory(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	bookID := seedBook(t, conn, "title", 1)
	studentID := seedStudent(t, conn, "name", "S-1")

	lending, err := svc.Checkout(ctx, CheckoutRequest{
		BookID: bookID, StudentID: studentID, DueDate: time.Now().UTC().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	newDue := time.Now().UTC().Add(14 * 24 * time.Hour)
	updated, err := svc.UpdateLending(ctx, lending.ID, UpdateLendingRequest{
		BookID:    bookID,
		StudentID: studentID,
		DueDate:   newDue,
	})
	require.NoError(t, err)
	assert.WithinDuration(t, newDue, updated.DueDate, time.Second)

	qty, _ := bookState(t, conn, bookID)
	assert.Equal(t, 0, qty)

	_, err = svc.UpdateLending(ctx, "no-such-lending", UpdateLendingRequest{
		BookID: bookID, StudentID: studentID, DueDate: newDue,
	})
	var api *APIError
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}

func TestListLendingsFilterAndOrder(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	book1 := seedBook(t, conn, "book-1", 5)
	book2 := seedBook(t, conn, "book-2", 5)
	s1 := seedStudent(t, conn, "student-1", "S-1")
	s2 := seedStudent(t, conn, "student-2", "S-2")
	s3 := seedStudent(t, conn, "student-3", "S-3")

	due := time.Now().UTC().Add(24 * time.Hour)
	l1, err := svc.Checkout(ctx, CheckoutRequest{BookID: book1, StudentID: s1, DueDate: due})
	require.NoError(t, err)
	l2, err := svc.Checkout(ctx, CheckoutRequest{BookID: book2, StudentID: s2, DueDate: due})
	require.NoError(t, err)
	l3, err := svc.Checkout(ctx, CheckoutRequest{BookID: book1, StudentID: s3, DueDate: due})
	require.NoError(t, err)

	all, err := svc.ListLendings(ctx, Filter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// 新しい貸出が先頭
	assert.Equal(t, l3.ID, all[0].ID)
	assert.Equal(t, l2.ID, all[1].ID)
	assert.Equal(t, l1.ID, all[2].ID)

	byBook, err := svc.ListLendings(ctx, Filter{BookID: &book1})
	require.NoError(t, err)
	require.Len(t, byBook, 2)
	assert.Equal(t, l3.ID, byBook[0].ID)
	assert.Equal(t, l1.ID, byBook[1].ID)

	byStudent, err := svc.ListLendings(ctx, Filter{StudentID: &s2})
	require.NoError(t, err)
	require.Len(t, byStudent, 1)
	assert.Equal(t, l2.ID, byStudent[0].ID)
}

func TestLendingViewBlankAfterBookDeleted(t *testing.T) {
	conn := newTestDB(t)
	svc := NewService(conn)
	ctx := context.Background()

	bookID := seedBook(t, conn, "消える本", 1)
	studentID := seedStudent(t, conn, "name", "S-1")

	lending, err := svc.Checkout(ctx, CheckoutRequest{
		BookID: bookID, StudentID: studentID, DueDate: time.Now().UTC().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = conn.Exec(`DELETE FROM books WHERE id = ?`, bookID)
	require.NoError(t, err)

	// 参照整合性は強制しない。結合列が空欄になるだけで行は返る。
	got, err := svc.GetLending(ctx, lending.ID)
	require.NoError(t, err)
	assert.Equal(t, "", got.BookTitle)
	assert.Equal(t, "name", got.StudentName)
}
