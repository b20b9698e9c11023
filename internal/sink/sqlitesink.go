package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteSink executes statements against a local SQLite database, for
// embeddable migration rehearsal (SQLite's json_each/->> operators stand
// in for PostgreSQL's jsonb_array_elements/->>). SQLite has no
// schema-comment mechanism, so
// metadata is kept in a small dorm_metadata table instead of
// relational.py's COMMENT ON SCHEMA trick.
type SQLiteSink struct {
	db  *sql.DB
	log *zap.Logger
}

func NewSQLiteSink(path string, log *zap.Logger) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("sink: opening sqlite database: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS dorm_metadata (key TEXT PRIMARY KEY, value TEXT)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("sink: creating metadata table: %w", err)
	}
	return &SQLiteSink{db: db, log: log}, nil
}

func (s *SQLiteSink) Execute(ctx context.Context, statements []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sink: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		s.log.Debug("executing statement", zap.String("sql", stmt))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sink: executing statement %q: %w", stmt, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteSink) ReadMetadata(ctx context.Context) (Metadata, error) {
	var value sql.NullString
	row := s.db.QueryRowContext(ctx, `SELECT value FROM dorm_metadata WHERE key = 'catalog'`)
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return Metadata{}, nil
		}
		return Metadata{}, fmt.Errorf("sink: reading metadata: %w", err)
	}
	if !value.Valid || value.String == "" {
		return Metadata{}, nil
	}
	var m Metadata
	if err := json.Unmarshal([]byte(value.String), &m); err != nil {
		return Metadata{}, fmt.Errorf("sink: decoding metadata: %w", err)
	}
	return m, nil
}

func (s *SQLiteSink) WriteMetadata(ctx context.Context, m Metadata) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("sink: encoding metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO dorm_metadata (key, value) VALUES ('catalog', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, string(payload))
	if err != nil {
		return fmt.Errorf("sink: writing metadata: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
