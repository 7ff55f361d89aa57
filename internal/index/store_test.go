package index

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlscope/internal/testutil"
	"github.com/leapstack-labs/sqlscope/pkg/catalog"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(context.Background(), ":memory:"))
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleEntry(path string) FileEntry {
	return FileEntry{
		Path: path,
		Hash: "h1",
		Objects: []ObjectEntry{
			{
				Schema: "lib",
				Name:   "get_orders",
				Kind:   "PROCEDURE",
				Range:  token.Range{Start: 0, End: 40},
				Parameters: []Parameter{
					{Position: 1, Name: "cust", Type: "in int"},
					{Position: 2, Name: "total", Type: "out decimal(9, 2)"},
				},
			},
			{Schema: "lib", Name: "orders", Kind: "TABLE", Range: token.Range{Start: 42, End: 80}},
			{Schema: "", Name: `"MixedCase"`, Kind: "VIEW", Range: token.Range{Start: 82, End: 90}},
		},
	}
}

func TestStore_OpenMigrates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	version, err := store.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"files", "objects", "parameters"} {
		rows, err := store.db.QueryContext(ctx, "SELECT 1 FROM "+table+" LIMIT 1")
		require.NoError(t, err, "table %s", table)
		_ = rows.Close()
	}
}

func TestStore_NotOpen(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	_, err := store.Files(ctx)
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = store.FindObjects(ctx, "", "x")
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = store.SearchObjects(ctx, "x", 0)
	assert.ErrorIs(t, err, ErrNotOpen)
	_, err = store.Parameters(ctx, "id")
	assert.ErrorIs(t, err, ErrNotOpen)
	_, _, err = store.FileHash(ctx, "a.sql")
	assert.ErrorIs(t, err, ErrNotOpen)
	assert.ErrorIs(t, store.ReplaceFile(ctx, FileEntry{}), ErrNotOpen)
	assert.ErrorIs(t, store.RemoveFile(ctx, "a.sql"), ErrNotOpen)
	assert.ErrorIs(t, store.Migrate(ctx), ErrNotOpen)
	assert.NoError(t, store.Close())
}

func TestStore_ReplaceAndFind(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceFile(ctx, sampleEntry("/ws/a.sql")))

	files, err := store.Files(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/ws/a.sql", files[0].Path)
	assert.Equal(t, "h1", files[0].Hash)
	assert.NotEmpty(t, files[0].ID)

	hash, ok, err := store.FileHash(ctx, "/ws/a.sql")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "h1", hash)

	_, ok, err = store.FileHash(ctx, "/ws/missing.sql")
	require.NoError(t, err)
	assert.False(t, ok)

	tests := []struct {
		name   string
		schema string
		object string
		want   []catalog.ObjectInfo
	}{
		{
			name:   "qualified",
			schema: "LIB",
			object: "ORDERS",
			want:   []catalog.ObjectInfo{{Schema: "LIB", Name: "ORDERS", Kind: "TABLE", Source: "/ws/a.sql"}},
		},
		{
			name:   "any schema",
			object: "GET_ORDERS",
			want:   []catalog.ObjectInfo{{Schema: "LIB", Name: "GET_ORDERS", Kind: "PROCEDURE", Source: "/ws/a.sql"}},
		},
		{
			name:   "delimited name keeps case",
			object: "MixedCase",
			want:   []catalog.ObjectInfo{{Name: "MixedCase", Kind: "VIEW", Source: "/ws/a.sql"}},
		},
		{
			name:   "wrong schema",
			schema: "OTHER",
			object: "ORDERS",
			want:   []catalog.ObjectInfo{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.FindObjects(ctx, tt.schema, tt.object)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_ReplaceDiscardsPrevious(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceFile(ctx, sampleEntry("/ws/a.sql")))
	require.NoError(t, store.ReplaceFile(ctx, FileEntry{
		Path:    "/ws/a.sql",
		Hash:    "h2",
		Objects: []ObjectEntry{{Schema: "lib", Name: "orders", Kind: "TABLE"}},
	}))

	objects, err := store.Objects(ctx, "/ws/a.sql")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "ORDERS", objects[0].Name)

	found, err := store.FindObjects(ctx, "", "GET_ORDERS")
	require.NoError(t, err)
	assert.Empty(t, found)

	require.NoError(t, store.RemoveFile(ctx, "/ws/a.sql"))
	files, err := store.Files(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)

	var params int
	require.NoError(t, store.db.QueryRowContext(ctx, "SELECT count(*) FROM parameters").Scan(&params))
	assert.Zero(t, params)
}

func TestStore_SearchAndParameters(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.ReplaceFile(ctx, sampleEntry("/ws/a.sql")))

	found, err := store.SearchObjects(ctx, "order", 0)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "GET_ORDERS", found[0].Name)
	assert.Equal(t, "ORDERS", found[1].Name)
	assert.Equal(t, token.Range{Start: 42, End: 80}, found[1].Range)

	limited, err := store.SearchObjects(ctx, "order", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := store.SearchObjects(ctx, "_", 0)
	require.NoError(t, err)
	for _, o := range none {
		assert.Contains(t, o.Name, "_")
	}

	params, err := store.Parameters(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []Parameter{
		{Position: 1, Name: "cust", Type: "in int"},
		{Position: 2, Name: "total", Type: "out decimal(9, 2)"},
	}, params)
}

func TestStore_DatabaseErrors(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		run       func(s *Store) error
		errSubstr string
	}{
		{
			name: "begin fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(boom)
			},
			run:       func(s *Store) error { return s.ReplaceFile(context.Background(), sampleEntry("a.sql")) },
			errSubstr: "failed to begin transaction",
		},
		{
			name: "insert object fails and rolls back",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM files").WithArgs("a.sql").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO files").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectExec("INSERT INTO objects").WillReturnError(boom)
				mock.ExpectRollback()
			},
			run:       func(s *Store) error { return s.ReplaceFile(context.Background(), sampleEntry("a.sql")) },
			errSubstr: "failed to insert object get_orders",
		},
		{
			name: "commit fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("DELETE FROM files").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectExec("INSERT INTO files").WillReturnResult(sqlmock.NewResult(1, 1))
				mock.ExpectCommit().WillReturnError(boom)
			},
			run: func(s *Store) error {
				return s.ReplaceFile(context.Background(), FileEntry{Path: "a.sql", Hash: "h"})
			},
			errSubstr: "failed to commit file a.sql",
		},
		{
			name: "hash query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT hash FROM files").WillReturnError(boom)
			},
			run: func(s *Store) error {
				_, _, err := s.FileHash(context.Background(), "a.sql")
				return err
			},
			errSubstr: "failed to get hash of a.sql",
		},
		{
			name: "find query fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT (.+) FROM objects").WillReturnError(boom)
			},
			run: func(s *Store) error {
				_, err := s.FindObjects(context.Background(), "LIB", "T")
				return err
			},
			errSubstr: "failed to find LIB.T",
		},
		{
			name: "list files fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery("SELECT id, path, hash, indexed_at FROM files").WillReturnError(boom)
			},
			run: func(s *Store) error {
				_, err := s.Files(context.Background())
				return err
			},
			errSubstr: "failed to list files",
		},
		{
			name: "remove fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("DELETE FROM files").WithArgs("a.sql").WillReturnError(boom)
			},
			run:       func(s *Store) error { return s.RemoveFile(context.Background(), "a.sql") },
			errSubstr: "failed to delete file a.sql",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer func() { _ = db.Close() }()

			tt.setupMock(mock)
			store := NewStoreWithDB(db, testutil.NewTestLogger(t))

			err = tt.run(store)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
			assert.ErrorIs(t, err, boom, "underlying error is wrapped")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
