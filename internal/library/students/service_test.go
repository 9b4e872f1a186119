package students

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

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

func strPtr(s string) *string { return &s }

func TestCreateStudentDefaultsToActive(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	st, err := svc.CreateStudent(ctx, CreateStudentRequest{Name: "山田太郎", Grade: "2-A", StudentNumber: "S001"})
	require.NoError(t, err)
	assert.NotEmpty(t, st.ID)
	assert.Equal(t, StatusActive, st.Status)
	assert.Nil(t, st.PhoneNumber)

	// 電話番号は任意。指定すればそのまま保存される。
	withPhone, err := svc.CreateStudent(ctx, CreateStudentRequest{Name: "鈴木", StudentNumber: "S002", PhoneNumber: strPtr("090-0000-0000")})
	require.NoError(t, err)
	got, err := svc.GetStudent(ctx, withPhone.ID)
	require.NoError(t, err)
	require.NotNil(t, got.PhoneNumber)
	assert.Equal(t, "090-0000-0000", *got.PhoneNumber)
}

func TestCreateStudentValidation(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	var api *APIError
	_, err := svc.CreateStudent(ctx, CreateStudentRequest{Name: " ", StudentNumber: "S001"})
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)

	_, err = svc.CreateStudent(ctx, CreateStudentRequest{Name: "n", StudentNumber: ""})
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)

	// 学籍番号の重複はここでは弾かない
	_, err = svc.CreateStudent(ctx, CreateStudentRequest{Name: "a", StudentNumber: "DUP"})
	require.NoError(t, err)
	_, err = svc.CreateStudent(ctx, CreateStudentRequest{Name: "b", StudentNumber: "DUP"})
	require.NoError(t, err)
}

func TestUpdateStudent(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	st, err := svc.CreateStudent(ctx, CreateStudentRequest{Name: "n", StudentNumber: "S001"})
	require.NoError(t, err)

	updated, err := svc.UpdateStudent(ctx, st.ID, UpdateStudentRequest{
		Name: "n2", Grade: "3-B", StudentNumber: "S001", Status: StatusInactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "n2", updated.Name)
	assert.Equal(t, StatusInactive, updated.Status)
	// 電話番号を省略した上書きは NULL に戻す
	assert.Nil(t, updated.PhoneNumber)

	var api *APIError
	_, err = svc.UpdateStudent(ctx, st.ID, UpdateStudentRequest{Name: "n", StudentNumber: "S001", Status: "broken"})
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeInvalidArgument, api.Code)

	_, err = svc.UpdateStudent(ctx, "missing", UpdateStudentRequest{Name: "n", StudentNumber: "S001", Status: StatusActive})
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}

func TestDeleteStudent(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	st, err := svc.CreateStudent(ctx, CreateStudentRequest{Name: "n", StudentNumber: "S001"})
	require.NoError(t, err)
	require.NoError(t, svc.DeleteStudent(ctx, st.ID))

	var api *APIError
	err = svc.DeleteStudent(ctx, st.ID)
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)

	_, err = svc.GetStudent(ctx, st.ID)
	require.ErrorAs(t, err, &api)
	assert.Equal(t, CodeNotFound, api.Code)
}
