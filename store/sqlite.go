package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/arkantrust/abassist/models"
)

// SQLiteLog writes generation records to the "logs" table of a SQLite file.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog opens the SQLite database at path and creates the logs table
// when it does not exist yet.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	s := &SQLiteLog{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteLog) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		template_name TEXT NOT NULL,
		submitted_data TEXT NOT NULL,
		generated_xml TEXT NOT NULL
	);`
	_, err := s.db.ExecContext(context.Background(), query)
	return err
}

// Close closes the underlying database.
func (s *SQLiteLog) Close() error {
	return s.db.Close()
}

// Append inserts rec and returns the stored copy with its ID set.
func (s *SQLiteLog) Append(ctx context.Context, rec *models.GenerationRecord) (*models.GenerationRecord, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO logs (timestamp, template_name, submitted_data, generated_xml) VALUES (?, ?, ?, ?)`,
		rec.Timestamp, rec.TemplateName, rec.SubmittedData, rec.GeneratedXML)
	if err != nil {
		return nil, fmt.Errorf("insert log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert log: %w", err)
	}

	result := *rec
	result.ID = uint64(id)
	return &result, nil
}

// Get retrieves a single record by ID.
// Returns ErrNotFound if the row does not exist.
func (s *SQLiteLog) Get(ctx context.Context, id uint64) (*models.GenerationRecord, error) {
	var rec models.GenerationRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT id, timestamp, template_name, submitted_data, generated_xml FROM logs WHERE id = ?`, id).
		Scan(&rec.ID, &rec.Timestamp, &rec.TemplateName, &rec.SubmittedData, &rec.GeneratedXML)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
