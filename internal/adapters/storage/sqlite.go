package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

// SQLiteRepository is a SQLite implementation of the IncidentRepository interface
type SQLiteRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteRepository creates a new SQLite incident repository
func NewSQLiteRepository(dbPath string, logger *zap.Logger) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS incidents (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			sender_email TEXT,
			subject TEXT,
			body TEXT,
			urls TEXT,
			status TEXT NOT NULL,
			threat_level TEXT NOT NULL,
			confidence_score REAL,
			detected_at TIMESTAMP,
			resolved_at TIMESTAMP,
			report TEXT
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_incidents_user_id ON incidents(user_id)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	return &SQLiteRepository{db: db, logger: logger}, nil
}

// Close closes the database connection
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// GetByID retrieves an incident by id
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*core.Incident, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, sender_email, subject, body, urls,
		       status, threat_level, confidence_score, detected_at, resolved_at, report
		FROM incidents WHERE id = ?
	`, id)
	return scanIncident(row)
}

// Save upserts an incident
func (r *SQLiteRepository) Save(ctx context.Context, incident *core.Incident) error {
	row, err := rowFromIncident(incident)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO incidents
			(id, user_id, sender_email, subject, body, urls,
			 status, threat_level, confidence_score, detected_at, resolved_at, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			threat_level = excluded.threat_level,
			confidence_score = excluded.confidence_score,
			resolved_at = excluded.resolved_at,
			report = excluded.report
	`, row.id, row.userID, row.sender, row.subject, row.body, row.urls,
		row.status, row.threat, row.score, row.detectedAt, row.resolvedAt, row.report)
	if err != nil {
		return fmt.Errorf("failed to save incident: %w", err)
	}
	return nil
}

// ListByUser returns all incidents belonging to a user, newest first
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]*core.Incident, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, sender_email, subject, body, urls,
		       status, threat_level, confidence_score, detected_at, resolved_at, report
		FROM incidents WHERE user_id = ?
		ORDER BY detected_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()
	return scanIncidents(rows)
}

// rowScanner abstracts sql.Row and sql.Rows for shared scanning
type rowScanner interface {
	Scan(dest ...any) error
}

func scanIncident(scanner rowScanner) (*core.Incident, error) {
	var row incidentRow
	err := scanner.Scan(&row.id, &row.userID, &row.sender, &row.subject, &row.body, &row.urls,
		&row.status, &row.threat, &row.score, &row.detectedAt, &row.resolvedAt, &row.report)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrIncidentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan incident: %w", err)
	}
	return row.toIncident()
}

func scanIncidents(rows *sql.Rows) ([]*core.Incident, error) {
	incidents := make([]*core.Incident, 0)
	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, err
		}
		incidents = append(incidents, incident)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate incidents: %w", err)
	}
	return incidents, nil
}
