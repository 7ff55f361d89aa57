// Package index maintains a SQLite symbol index of the objects defined in
// a workspace of SQL files.
package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver (pure Go)

	"github.com/leapstack-labs/sqlscope/pkg/catalog"
	"github.com/leapstack-labs/sqlscope/pkg/token"
)

// ErrNotOpen is returned by Store methods called before Open.
var ErrNotOpen = errors.New("index not opened")

// File is an indexed source file.
type File struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Hash      string    `json:"hash"`
	IndexedAt time.Time `json:"indexedAt"`
}

// Object is an indexed definition.
type Object struct {
	ID     string      `json:"id"`
	Path   string      `json:"path"`
	Schema string      `json:"schema,omitempty"`
	Name   string      `json:"name"`
	Kind   string      `json:"kind,omitempty"`
	Range  token.Range `json:"range"`
}

// Parameter is a routine parameter or table column of an indexed object.
type Parameter struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Type     string `json:"type,omitempty"`
}

// ObjectEntry is a definition to store.
type ObjectEntry struct {
	Schema     string
	Name       string
	Kind       string
	Range      token.Range
	Parameters []Parameter
}

// FileEntry is the complete set of definitions extracted from one file.
type FileEntry struct {
	Path    string
	Hash    string
	Objects []ObjectEntry
}

var _ catalog.Lookup = (*Store)(nil)

// Store is the SQLite-backed index.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewStore creates a store. Call Open before use.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{logger: logger}
}

// NewStoreWithDB wraps an already opened database. The schema is not
// migrated.
func NewStoreWithDB(db *sql.DB, logger *slog.Logger) *Store {
	s := NewStore(logger)
	s.db = db
	return s
}

// Open opens the database at path and migrates it. Use ":memory:" for an
// in-memory index.
func (s *Store) Open(ctx context.Context, path string) error {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create index directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// Every connection to :memory: is a separate database, and SQLite
	// allows a single writer anyway.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}
	if err := migrateDB(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	s.path = path
	s.logger.Debug("index opened", "path", path)
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Path returns the database path given to Open.
func (s *Store) Path() string {
	return s.path
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// ReplaceFile stores entry, discarding everything previously indexed for
// the same path.
func (s *Store) ReplaceFile(ctx context.Context, entry FileEntry) (err error) {
	if s.db == nil {
		return ErrNotOpen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, entry.Path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", entry.Path, err)
	}

	fileID := generateID()
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO files (id, path, hash, indexed_at) VALUES (?, ?, ?, ?)`,
		fileID, entry.Path, entry.Hash, time.Now().UTC(),
	); err != nil {
		return fmt.Errorf("failed to insert file %s: %w", entry.Path, err)
	}

	for _, obj := range entry.Objects {
		objectID := generateID()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO objects (id, file_id, schema_name, name, kind, start_offset, end_offset) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			objectID, fileID, catalog.Normalize(obj.Schema), catalog.Normalize(obj.Name), obj.Kind, obj.Range.Start, obj.Range.End,
		); err != nil {
			return fmt.Errorf("failed to insert object %s: %w", obj.Name, err)
		}
		for _, p := range obj.Parameters {
			if _, err = tx.ExecContext(ctx,
				`INSERT INTO parameters (object_id, position, name, type) VALUES (?, ?, ?, ?)`,
				objectID, p.Position, p.Name, p.Type,
			); err != nil {
				return fmt.Errorf("failed to insert parameter %s of %s: %w", p.Name, obj.Name, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file %s: %w", entry.Path, err)
	}
	return nil
}

// RemoveFile deletes a file and its objects.
func (s *Store) RemoveFile(ctx context.Context, path string) error {
	if s.db == nil {
		return ErrNotOpen
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM files WHERE path = ?`, path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}
	return nil
}

// FileHash returns the content hash recorded for path.
func (s *Store) FileHash(ctx context.Context, path string) (string, bool, error) {
	if s.db == nil {
		return "", false, ErrNotOpen
	}

	var hash string
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM files WHERE path = ?`, path).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get hash of %s: %w", path, err)
	}
	return hash, true, nil
}

// Files lists indexed files ordered by path.
func (s *Store) Files(ctx context.Context) ([]File, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, path, hash, indexed_at FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var files []File
	for rows.Next() {
		var f File
		if err := rows.Scan(&f.ID, &f.Path, &f.Hash, &f.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

const objectColumns = `o.id, f.path, o.schema_name, o.name, o.kind, o.start_offset, o.end_offset`

func scanObjects(rows *sql.Rows) ([]Object, error) {
	defer func() { _ = rows.Close() }()

	var objects []Object
	for rows.Next() {
		var o Object
		if err := rows.Scan(&o.ID, &o.Path, &o.Schema, &o.Name, &o.Kind, &o.Range.Start, &o.Range.End); err != nil {
			return nil, fmt.Errorf("failed to scan object: %w", err)
		}
		objects = append(objects, o)
	}
	return objects, rows.Err()
}

// Objects returns the objects defined in the file at path.
func (s *Store) Objects(ctx context.Context, path string) ([]Object, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+objectColumns+` FROM objects o JOIN files f ON f.id = o.file_id
		WHERE f.path = ? ORDER BY o.start_offset`, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list objects of %s: %w", path, err)
	}
	return scanObjects(rows)
}

// FindObjects returns objects named name in schema. An empty schema
// matches any schema. Names are expected in the form catalog.Normalize
// produces, which is how they are stored.
func (s *Store) FindObjects(ctx context.Context, schema, name string) ([]catalog.ObjectInfo, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+objectColumns+` FROM objects o JOIN files f ON f.id = o.file_id
		WHERE o.name = ? AND (? = '' OR o.schema_name = ?)
		ORDER BY f.path, o.start_offset`,
		name, schema, schema)
	if err != nil {
		return nil, fmt.Errorf("failed to find %s.%s: %w", schema, name, err)
	}
	objects, err := scanObjects(rows)
	if err != nil {
		return nil, err
	}

	infos := make([]catalog.ObjectInfo, 0, len(objects))
	for _, o := range objects {
		infos = append(infos, catalog.ObjectInfo{Schema: o.Schema, Name: o.Name, Kind: o.Kind, Source: o.Path})
	}
	return infos, nil
}

// SearchObjects returns objects whose name contains query, ignoring case.
// A limit of zero or less returns every match.
func (s *Store) SearchObjects(ctx context.Context, query string, limit int) ([]Object, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}
	if limit <= 0 {
		limit = -1
	}

	pattern := "%" + escapeLike(strings.ToUpper(query)) + "%"
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+objectColumns+` FROM objects o JOIN files f ON f.id = o.file_id
		WHERE upper(o.name) LIKE ? ESCAPE '\'
		ORDER BY o.name, o.schema_name, f.path LIMIT ?`,
		pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search objects: %w", err)
	}
	return scanObjects(rows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// Parameters returns the parameters of an object ordered by position.
func (s *Store) Parameters(ctx context.Context, objectID string) ([]Parameter, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, name, type FROM parameters WHERE object_id = ? ORDER BY position`, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parameters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var params []Parameter
	for rows.Next() {
		var p Parameter
		if err := rows.Scan(&p.Position, &p.Name, &p.Type); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		params = append(params, p)
	}
	return params, rows.Err()
}
