package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

// PostgresRepository is a PostgreSQL implementation of the IncidentRepository interface
type PostgresRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPostgresRepository creates a new PostgreSQL incident repository
func NewPostgresRepository(dsn string, logger *zap.Logger) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS incidents (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			sender_email TEXT,
			subject TEXT,
			body TEXT,
			urls JSONB,
			status VARCHAR(32) NOT NULL,
			threat_level VARCHAR(16) NOT NULL,
			confidence_score DOUBLE PRECISION,
			detected_at TIMESTAMPTZ,
			resolved_at TIMESTAMPTZ,
			report JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_incidents_user_id ON incidents(user_id);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &PostgresRepository{db: db, logger: logger}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// GetByID retrieves an incident by id
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*core.Incident, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, sender_email, subject, body, urls::text,
		       status, threat_level, confidence_score, detected_at, resolved_at, report::text
		FROM incidents WHERE id = $1
	`, id)
	return scanIncident(row)
}

// Save upserts an incident
func (r *PostgresRepository) Save(ctx context.Context, incident *core.Incident) error {
	row, err := rowFromIncident(incident)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO incidents
			(id, user_id, sender_email, subject, body, urls,
			 status, threat_level, confidence_score, detected_at, resolved_at, report)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			threat_level = EXCLUDED.threat_level,
			confidence_score = EXCLUDED.confidence_score,
			resolved_at = EXCLUDED.resolved_at,
			report = EXCLUDED.report
	`, row.id, row.userID, row.sender, row.subject, row.body, row.urls,
		row.status, row.threat, row.score, row.detectedAt, row.resolvedAt, row.report)
	if err != nil {
		return fmt.Errorf("failed to save incident: %w", err)
	}
	return nil
}

// ListByUser returns all incidents belonging to a user, newest first
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*core.Incident, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, sender_email, subject, body, urls::text,
		       status, threat_level, confidence_score, detected_at, resolved_at, report::text
		FROM incidents WHERE user_id = $1
		ORDER BY detected_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()
	return scanIncidents(rows)
}
