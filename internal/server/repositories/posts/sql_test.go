package posts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophboard/internal/common"
	"github.com/dmitrijs2005/gophboard/internal/server/models"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	t0 = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(time.Hour)
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSQLRepository(sqlx.NewDb(db, "sqlite")), mock
}

func postRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "content", "user_id", "created_at", "updated_at"})
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+posts\s*\(id,\s*content,\s*user_id,\s*created_at,\s*updated_at\)`).
		WithArgs("p-1", "hello", "u-1", t0, t0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	p := &models.Post{ID: "p-1", Content: "hello", UserID: "u-1", CreatedAt: t0, UpdatedAt: t0}
	got, err := repo.Create(context.Background(), p)
	require.NoError(t, err)
	assert.Same(t, p, got)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+posts`).WillReturnError(errors.New("fk failed"))

	_, err := repo.Create(context.Background(), &models.Post{ID: "p-1"})
	require.Error(t, err)
	assert.Regexp(t, `db error: .*fk failed`, err.Error())
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+posts\s+WHERE\s+id\s*=\s*\?$`).
		WithArgs("p-1").
		WillReturnRows(postRows().AddRow("p-1", "hello", "u-1", t0, t1))

	got, err := repo.GetByID(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, &models.Post{ID: "p-1", Content: "hello", UserID: "u-1", CreatedAt: t0, UpdatedAt: t1}, got)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+posts\s+WHERE\s+id`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_NewestFirst(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+posts\s+ORDER\s+BY\s+created_at\s+DESC,\s*id\s+DESC$`).
		WillReturnRows(postRows().
			AddRow("p-2", "second", "u-1", t1, t1).
			AddRow("p-1", "first", "u-2", t0, t0))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "p-2", got[0].ID)
}

func TestListByUser(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+posts\s+WHERE\s+user_id\s*=\s*\?\s+ORDER\s+BY\s+created_at\s+DESC`).
		WithArgs("u-1").
		WillReturnRows(postRows().AddRow("p-1", "first", "u-1", t0, t0))

	got, err := repo.ListByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "u-1", got[0].UserID)
}

func TestUpdate(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{"matched", 1, true},
		{"not owner or missing", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectExec(`(?s)^UPDATE\s+posts\s+SET\s+content\s*=\s*\?,\s*updated_at\s*=\s*\?\s+WHERE\s+id\s*=\s*\?\s+AND\s+user_id\s*=\s*\?$`).
				WithArgs("new", t1, "p-1", "u-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			ok, err := repo.Update(context.Background(), "p-1", "u-1", "new", t1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE\s+FROM\s+posts\s+WHERE\s+id\s*=\s*\?\s+AND\s+user_id\s*=\s*\?$`).
		WithArgs("p-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.Delete(context.Background(), "p-1", "u-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDelete_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE\s+FROM\s+posts`).WillReturnError(errors.New("locked"))

	_, err := repo.Delete(context.Background(), "p-1", "u-1")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*locked`, err.Error())
}
