package sink

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPostgresSinkExecuteCommitsOnSuccess(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE "users"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	s := newPostgresSink(db, "public", nil)
	if err := s.Execute(context.Background(), []string{`CREATE TABLE "users" (id UUID);`}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkExecuteRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TABLE "users"`).WillReturnError(errBoom)
	mock.ExpectRollback()

	s := newPostgresSink(db, "public", nil)
	if err := s.Execute(context.Background(), []string{`CREATE TABLE "users" (id UUID);`}); err == nil {
		t.Fatal("expected an error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestPostgresSinkWriteMetadataCommentsOnSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(`COMMENT ON SCHEMA`).WillReturnResult(sqlmock.NewResult(0, 0))

	s := newPostgresSink(db, "public", nil)
	want := Metadata{Domain: "d1", Design: "design1", TablesCreated: true, HasData: true}
	if err := s.WriteMetadata(context.Background(), want); err != nil {
		t.Fatalf("write metadata: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

var errBoom = sqlmockErr("boom")

type sqlmockErr string

func (e sqlmockErr) Error() string { return string(e) }
