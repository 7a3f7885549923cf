package query

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/todoapi/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

func TestFind_SearchPage(t *testing.T) {
	db, mock := newMock(t)
	spec := mustParse(t, "_search=foo&_search_fields=title,description&_show_fields=id,title&_limit=2")
	list, count := Build(testSchema, spec)

	mock.ExpectQuery(regexp.QuoteMeta(count.SQL)).
		WithArgs("%foo%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	mock.ExpectQuery(regexp.QuoteMeta(list.SQL)).
		WithArgs("%foo%", 2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "id", "name"}).
			AddRow(int64(1), "Foo bar", int64(10), "Ann").
			AddRow(int64(2), []byte("food"), nil, nil))

	page, err := Find(context.Background(), db, testSchema, spec)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, page.Data, 2)
	assert.Equal(t, int64(3), page.Pagination.TotalItems)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasNextPage)

	b, err := json.Marshal(page.Data)
	require.NoError(t, err)
	assert.JSONEq(t, `[
		{"id":1,"title":"Foo bar","user":{"id":10,"name":"Ann"}},
		{"id":2,"title":"food","user":null}
	]`, string(b))
}

func TestFind_PageBeyondEnd(t *testing.T) {
	db, mock := newMock(t)
	spec := mustParse(t, "_page=5&_limit=10&_show_fields=createdAt")
	list, count := Build(testSchema, spec)

	mock.ExpectQuery(regexp.QuoteMeta(count.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectQuery(regexp.QuoteMeta(list.SQL)).
		WithArgs(10, 40).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "id", "name"}))

	page, err := Find(context.Background(), db, testSchema, spec)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, 1, page.Pagination.TotalPages)
	assert.False(t, page.Pagination.HasNextPage)
}

func TestFind_PreservesValueTypes(t *testing.T) {
	db, mock := newMock(t)
	spec := mustParse(t, "_show_fields=completed,createdAt")
	list, count := Build(testSchema, spec)
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(count.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(list.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"completed", "created_at", "id", "name"}).
			AddRow(true, ts, int64(1), "Ann"))

	page, err := Find(context.Background(), db, testSchema, spec)
	require.NoError(t, err)
	require.Len(t, page.Data, 1)

	completed, _ := page.Data[0].Get("completed")
	createdAt, _ := page.Data[0].Get("createdAt")
	assert.Equal(t, true, completed)
	assert.Equal(t, ts, createdAt)
}

func TestFind_CountError(t *testing.T) {
	db, mock := newMock(t)
	spec := mustParse(t, "")
	_, count := Build(testSchema, spec)

	mock.ExpectQuery(regexp.QuoteMeta(count.SQL)).WillReturnError(errors.New("column does not exist"))

	_, err := Find(context.Background(), db, testSchema, spec)
	require.ErrorIs(t, err, common.ErrorQuery)
	assert.Contains(t, err.Error(), "column does not exist")
}

func TestFind_ListError(t *testing.T) {
	db, mock := newMock(t)
	spec := mustParse(t, "")
	list, count := Build(testSchema, spec)

	mock.ExpectQuery(regexp.QuoteMeta(count.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(list.SQL)).WillReturnError(errors.New("boom"))

	_, err := Find(context.Background(), db, testSchema, spec)
	require.ErrorIs(t, err, common.ErrorQuery)
}

func TestFind_RowError(t *testing.T) {
	db, mock := newMock(t)
	spec := mustParse(t, "_show_fields=id")
	list, count := Build(testSchema, spec)

	mock.ExpectQuery(regexp.QuoteMeta(count.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta(list.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "id", "name"}).
			AddRow(int64(1), int64(1), "Ann").
			RowError(0, errors.New("broken row")))

	_, err := Find(context.Background(), db, testSchema, spec)
	require.ErrorIs(t, err, common.ErrorQuery)
}

func TestFind_LargeLimitEmptyResult(t *testing.T) {
	db, mock := newMock(t)
	spec := mustParse(t, "")
	spec.Limit = 2000000000
	list, count := Build(testSchema, spec)

	mock.ExpectQuery(regexp.QuoteMeta(count.SQL)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectQuery(regexp.QuoteMeta(list.SQL)).
		WillReturnRows(sqlmock.NewRows(names(spec.Fields)))

	page, err := Find(context.Background(), db, testSchema, spec)

	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Zero(t, cap(page.Data))
	assert.NoError(t, mock.ExpectationsWereMet())
}
