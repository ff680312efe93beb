package runs

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	_ "github.com/tursodatabase/go-libsql"
)

// SQLiteStore records training runs in a libsql/SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or initializes the run database at the given DSN.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("libsql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open run database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping run database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	slog.Info("Run database ready", "dsn", dsn)
	return s, nil
}

// init sets up the run tables.
func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY UNIQUE,
		started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		epochs INTEGER,
		batch_size INTEGER,
		learning_rate REAL,
		seed INTEGER,
		provider TEXT,
		dimensions INTEGER,
		dev_accuracy REAL,
		test_accuracy REAL,
		finished_at DATETIME
	)`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	_, err = s.db.Exec(`CREATE TABLE IF NOT EXISTS epochs (
		run_id TEXT NOT NULL,
		epoch INTEGER NOT NULL,
		loss REAL,
		dev_accuracy REAL,
		PRIMARY KEY (run_id, epoch),
		FOREIGN KEY (run_id) REFERENCES runs(id)
	)`)
	if err != nil {
		return fmt.Errorf("create epochs table: %w", err)
	}
	return nil
}

// StartRun inserts a new run row and returns its id.
func (s *SQLiteStore) StartRun(ctx context.Context, params Params) (string, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, epochs, batch_size, learning_rate, seed, provider, dimensions)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, params.Epochs, params.BatchSize, params.LearningRate, params.Seed, params.Provider, params.Dimensions)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// RecordEpoch stores one epoch's metrics for a run.
func (s *SQLiteStore) RecordEpoch(ctx context.Context, runID string, m EpochMetric) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO epochs (run_id, epoch, loss, dev_accuracy) VALUES (?, ?, ?, ?)`,
		runID, m.Epoch, m.Loss, m.DevAccuracy)
	if err != nil {
		return fmt.Errorf("insert epoch %d for run %s: %w", m.Epoch, runID, err)
	}
	return nil
}

// FinishRun stamps the run with its final accuracies.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, devAccuracy, testAccuracy float64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET dev_accuracy = ?, test_accuracy = ?, finished_at = CURRENT_TIMESTAMP WHERE id = ?`,
		devAccuracy, testAccuracy, runID)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", runID, err)
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
