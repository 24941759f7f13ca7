package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/jobpilot/jobpilot/internal/jobs"

	"go.uber.org/zap"
)

const applicationsSchema = `
CREATE TABLE IF NOT EXISTS job_applications (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	platform   TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL DEFAULT '',
	record     JSONB NOT NULL
)`

type applicationRow struct {
	ID        string `db:"id"`
	Status    string `db:"status"`
	Platform  string `db:"platform"`
	CreatedAt string `db:"created_at"`
	Record    []byte `db:"record"`
}

// PostgresStore keeps application records in a single job_applications table
// with the full record as a JSONB column. An alternative to FSStore for
// multi-host deployments.
type PostgresStore struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewPostgresStore connects with the given DSN and ensures the schema exists.
func NewPostgresStore(dsn string, logger *zap.Logger) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := db.Exec(applicationsSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure applications schema: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{db: db, logger: logger}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SaveApplication upserts the record keyed by its id.
func (s *PostgresStore) SaveApplication(app *jobs.Application) error {
	if app == nil || app.ID == "" {
		return fmt.Errorf("application record needs an id")
	}

	raw, err := json.Marshal(app)
	if err != nil {
		return fmt.Errorf("encode application %s: %w", app.ID, err)
	}

	query := `
		INSERT INTO job_applications (id, status, platform, created_at, record)
		VALUES (:id, :status, :platform, :created_at, :record)
		ON CONFLICT (id) DO UPDATE SET
			status     = EXCLUDED.status,
			platform   = EXCLUDED.platform,
			created_at = EXCLUDED.created_at,
			record     = EXCLUDED.record
	`

	_, err = s.db.NamedExec(query, &applicationRow{
		ID:        app.ID,
		Status:    app.Status,
		Platform:  app.Platform,
		CreatedAt: app.Timestamp,
		Record:    raw,
	})
	if err != nil {
		return fmt.Errorf("save application %s: %w", app.ID, err)
	}

	s.logger.Debug("saved application record",
		zap.String("job_id", app.ID),
		zap.String("status", app.Status),
	)
	return nil
}

// LoadApplication reads one record by id.
func (s *PostgresStore) LoadApplication(id string) (*jobs.Application, error) {
	var row applicationRow
	err := s.db.Get(&row, `SELECT id, status, platform, created_at, record FROM job_applications WHERE id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("load application %s: %w", id, err)
	}

	var app jobs.Application
	if err := json.Unmarshal(row.Record, &app); err != nil {
		return nil, fmt.Errorf("decode application %s: %w", id, err)
	}
	return &app, nil
}

// ListApplications returns every stored record, oldest id first. Rows whose
// JSONB payload no longer decodes degrade to an id-and-status stub.
func (s *PostgresStore) ListApplications() ([]*jobs.Application, error) {
	var rows []applicationRow
	err := s.db.Select(&rows, `SELECT id, status, platform, created_at, record FROM job_applications ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	apps := make([]*jobs.Application, 0, len(rows))
	for _, row := range rows {
		var app jobs.Application
		if err := json.Unmarshal(row.Record, &app); err != nil {
			s.logger.Warn("unreadable application record",
				zap.String("job_id", row.ID),
				zap.Error(err),
			)
			apps = append(apps, &jobs.Application{ID: row.ID, Status: row.Status})
			continue
		}
		apps = append(apps, &app)
	}
	return apps, nil
}
