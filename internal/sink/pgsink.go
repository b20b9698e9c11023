package sink

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

// PostgresSink executes statements against PostgreSQL via the pgx
// stdlib driver, matching cmd/conduit/migrate.go's registration of
// "pgx" and internal/orm/migrate/runner.go's transaction-wrapped
// execution style. Schema metadata is persisted with COMMENT ON SCHEMA,
// the same mechanism relational.py uses.
type PostgresSink struct {
	db     *sql.DB
	schema string
	log    *zap.Logger
}

// NewPostgresSink opens a pgx-backed *sql.DB against dsn and targets the
// given schema for metadata storage.
func NewPostgresSink(dsn, schema string, log *zap.Logger) (*PostgresSink, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sink: opening postgres connection: %w", err)
	}
	return newPostgresSink(db, schema, log), nil
}

// newPostgresSink wraps an already-open *sql.DB, letting tests inject a
// sqlmock-backed connection without a real pgx dial.
func newPostgresSink(db *sql.DB, schema string, log *zap.Logger) *PostgresSink {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresSink{db: db, schema: schema, log: log}
}

func (s *PostgresSink) Execute(ctx context.Context, statements []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sink: beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range statements {
		s.log.Debug("executing statement", zap.String("schema", s.schema), zap.String("sql", stmt))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sink: executing statement %q: %w", stmt, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sink: committing transaction: %w", err)
	}
	return nil
}

func (s *PostgresSink) ReadMetadata(ctx context.Context) (Metadata, error) {
	var comment sql.NullString
	row := s.db.QueryRowContext(ctx, `
		SELECT obj_description(n.oid)
		FROM pg_namespace n
		WHERE n.nspname = $1`, s.schema)
	if err := row.Scan(&comment); err != nil {
		return Metadata{}, fmt.Errorf("sink: reading schema comment: %w", err)
	}
	if !comment.Valid || comment.String == "" {
		return Metadata{}, nil
	}

	var m Metadata
	if err := json.Unmarshal([]byte(comment.String), &m); err != nil {
		return Metadata{}, fmt.Errorf("sink: decoding schema metadata: %w", err)
	}
	return m, nil
}

func (s *PostgresSink) WriteMetadata(ctx context.Context, m Metadata) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("sink: encoding schema metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`COMMENT ON SCHEMA %q IS %s`, s.schema, quoteLiteral(string(payload))))
	if err != nil {
		return fmt.Errorf("sink: writing schema comment: %w", err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}

func quoteLiteral(s string) string {
	escaped := ""
	for _, r := range s {
		if r == '\'' {
			escaped += "''"
		} else {
			escaped += string(r)
		}
	}
	return "'" + escaped + "'"
}
