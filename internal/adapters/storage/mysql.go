package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/secureguard/phishguard/internal/core"
)

// MySQLRepository is a MySQL implementation of the IncidentRepository interface
type MySQLRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLRepository creates a new MySQL incident repository
func NewMySQLRepository(dsn string, logger *zap.Logger) (*MySQLRepository, error) {
	db, err := sql.Open("mysql", dsn+"?parseTime=true")
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS incidents (
			id VARCHAR(36) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL,
			sender_email TEXT,
			subject TEXT,
			body MEDIUMTEXT,
			urls TEXT,
			status VARCHAR(32) NOT NULL,
			threat_level VARCHAR(16) NOT NULL,
			confidence_score DOUBLE,
			detected_at TIMESTAMP NULL,
			resolved_at TIMESTAMP NULL,
			report MEDIUMTEXT,
			INDEX idx_incidents_user_id (user_id)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLRepository{db: db, logger: logger}, nil
}

// Close closes the database connection
func (r *MySQLRepository) Close() error {
	return r.db.Close()
}

// GetByID retrieves an incident by id
func (r *MySQLRepository) GetByID(ctx context.Context, id string) (*core.Incident, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, sender_email, subject, body, urls,
		       status, threat_level, confidence_score, detected_at, resolved_at, report
		FROM incidents WHERE id = ?
	`, id)
	return scanIncident(row)
}

// Save upserts an incident
func (r *MySQLRepository) Save(ctx context.Context, incident *core.Incident) error {
	row, err := rowFromIncident(incident)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO incidents
			(id, user_id, sender_email, subject, body, urls,
			 status, threat_level, confidence_score, detected_at, resolved_at, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			status = VALUES(status),
			threat_level = VALUES(threat_level),
			confidence_score = VALUES(confidence_score),
			resolved_at = VALUES(resolved_at),
			report = VALUES(report)
	`, row.id, row.userID, row.sender, row.subject, row.body, row.urls,
		row.status, row.threat, row.score, row.detectedAt, row.resolvedAt, row.report)
	if err != nil {
		return fmt.Errorf("failed to save incident: %w", err)
	}
	return nil
}

// ListByUser returns all incidents belonging to a user, newest first
func (r *MySQLRepository) ListByUser(ctx context.Context, userID string) ([]*core.Incident, error) {
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
