package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/repotally/repotally/internal/contract"
	"github.com/repotally/repotally/schema"
)

// Table names for fetch-run tracking.
const (
	fetchRunsTable     = "repotally_fetch_runs"
	metricResultsTable = "repotally_metric_results"
)

// RunsStoreImpl implements the RunsStore interface.
type RunsStoreImpl struct {
	db         *sql.DB
	backend    schema.DatabaseBackend
	driverName string
}

var _ contract.RunsStore = &RunsStoreImpl{} // Compile-time check

// NewRunsStore creates a new RunsStore with the specified backend.
func NewRunsStore(backend schema.DatabaseBackend, connStr string) (contract.RunsStore, error) {
	var db *sql.DB
	var err error
	var driverName string

	switch backend {
	case schema.SQLiteBackend:
		driverName = "sqlite"
		dbPath := connStr
		if dbPath == "" {
			dbPath = GetRunsDBFilePath()
		}
		db, err = sql.Open(driverName, dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite database at %q: %w. Check that the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		driverName = "mysql"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open MySQL database: %w. Check connection string format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		driverName = "pgx"
		db, err = sql.Open(driverName, connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to open PostgreSQL database: %w. Check connection string format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		// Return a no-op store for disabled tracking
		return &RunsStoreImpl{
			db:         nil,
			backend:    backend,
			driverName: "",
		}, nil

	default:
		return nil, fmt.Errorf("unsupported backend: %s", backend)
	}

	// Ping to verify connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		var connDetail string
		switch backend {
		case schema.MySQLBackend:
			connDetail = "Check that MySQL is running and the connection string is correct. Ensure user/password are valid."
		case schema.PostgreSQLBackend:
			connDetail = "Check that PostgreSQL is running and the connection string is correct. Ensure user/password are valid."
		default:
			connDetail = "Verify the database server is running and accessible."
		}
		return nil, fmt.Errorf("failed to connect to %s database: %w. %s", backend, err, connDetail)
	}

	// Create the table schemas
	if err := createRunsTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tracking tables: %w", err)
	}

	return &RunsStoreImpl{
		db:         db,
		backend:    backend,
		driverName: driverName,
	}, nil
}

// createRunsTables creates the fetch-run tracking tables.
func createRunsTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{fetchRunsTable, getCreateFetchRunsQuery(backend)},
		{metricResultsTable, getCreateMetricResultsQuery(backend)},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}

	return nil
}

// getCreateFetchRunsQuery returns the CREATE TABLE query for repotally_fetch_runs.
func getCreateFetchRunsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(fetchRunsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms INT,
				repos_processed INT,
				observations_merged INT,
				config_params TEXT
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms INT,
				repos_processed INT,
				observations_merged INT,
				config_params TEXT
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				repos_processed INTEGER,
				observations_merged INTEGER,
				config_params TEXT
			);
		`, quotedTableName)
	}
}

// getCreateMetricResultsQuery returns the CREATE TABLE query for repotally_metric_results.
func getCreateMetricResultsQuery(backend schema.DatabaseBackend) string {
	quotedTableName := quoteTableName(metricResultsTable, backend)

	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				repo_name VARCHAR(255) NOT NULL,
				metric_name VARCHAR(100) NOT NULL,
				fetch_status VARCHAR(50) NOT NULL,
				points_merged INT NOT NULL,
				fetched_at DATETIME(6) NOT NULL,
				detail TEXT,
				PRIMARY KEY (run_id, repo_name, metric_name)
			);
		`, quotedTableName)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				repo_name TEXT NOT NULL,
				metric_name TEXT NOT NULL,
				fetch_status TEXT NOT NULL,
				points_merged INT NOT NULL,
				fetched_at TIMESTAMPTZ NOT NULL,
				detail TEXT,
				PRIMARY KEY (run_id, repo_name, metric_name)
			);
		`, quotedTableName)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				repo_name TEXT NOT NULL,
				metric_name TEXT NOT NULL,
				fetch_status TEXT NOT NULL,
				points_merged INTEGER NOT NULL,
				fetched_at TEXT NOT NULL,
				detail TEXT,
				PRIMARY KEY (run_id, repo_name, metric_name)
			);
		`, quotedTableName)
	}
}

// BeginRun creates a new fetch run and returns its unique ID.
func (rs *RunsStoreImpl) BeginRun(startTime time.Time, configParams map[string]any) (int64, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return 0, nil
	}

	// Serialize config params to JSON
	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quotedTableName := quoteTableName(fetchRunsTable, rs.backend)

	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES ($1, $2) RETURNING run_id`, quotedTableName)
		err = rs.db.QueryRow(query, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (start_time, config_params) VALUES (?, ?)`, quotedTableName)
		var result sql.Result
		result, err = rs.db.Exec(query, formatTime(startTime, rs.backend), string(configJSON))
		if err != nil {
			return 0, err
		}
		runID, err = result.LastInsertId()
	}

	if err != nil {
		return 0, fmt.Errorf("failed to insert fetch run: %w", err)
	}

	return runID, nil
}

// EndRun updates the fetch run with completion data.
func (rs *RunsStoreImpl) EndRun(runID int64, endTime time.Time, reposProcessed, observationsMerged int) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	// First, get the start_time to calculate duration
	quotedTableName := quoteTableName(fetchRunsTable, rs.backend)
	var startTime time.Time

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = $1`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = ?`, quotedTableName)
	}

	row := rs.db.QueryRow(query, runID)

	// Handle different time storage formats per backend
	switch rs.backend {
	case schema.SQLiteBackend:
		var startTimeStr string
		if err := row.Scan(&startTimeStr); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
		var err error
		startTime, err = parseStoredTime(startTimeStr)
		if err != nil {
			return err
		}
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&startTime); err != nil {
			return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
		}
	}

	// Calculate duration in milliseconds
	durationMs := endTime.Sub(startTime).Milliseconds()

	// Update the fetch run with completion data
	var updateQuery string
	var args []any

	switch rs.backend {
	case schema.PostgreSQLBackend:
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = $1, run_duration_ms = $2, repos_processed = $3, observations_merged = $4 WHERE run_id = $5`, quotedTableName)
		args = []any{endTime, durationMs, reposProcessed, observationsMerged, runID}
	default: // SQLite and MySQL
		updateQuery = fmt.Sprintf(`UPDATE %s SET end_time = ?, run_duration_ms = ?, repos_processed = ?, observations_merged = ? WHERE run_id = ?`, quotedTableName)
		args = []any{formatTime(endTime, rs.backend), durationMs, reposProcessed, observationsMerged, runID}
	}

	_, err := rs.db.Exec(updateQuery, args...)
	if err != nil {
		return fmt.Errorf("failed to update fetch run: %w", err)
	}

	return nil
}

// RecordMetricResult stores the outcome of one (repo, metric) fetch.
func (rs *RunsStoreImpl) RecordMetricResult(runID int64, outcome schema.MetricOutcome) error {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil
	}

	quotedTableName := quoteTableName(metricResultsTable, rs.backend)
	fetchedAt := formatTime(time.Now().UTC(), rs.backend)

	var detail *string
	if outcome.Detail != "" {
		detail = &outcome.Detail
	}

	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf(`
			INSERT INTO %s (run_id, repo_name, metric_name, fetch_status, points_merged, fetched_at, detail)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf(`
			INSERT INTO %s (run_id, repo_name, metric_name, fetch_status, points_merged, fetched_at, detail)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, quotedTableName)
	}

	args := []any{runID, outcome.Repo, string(outcome.Metric), string(outcome.Status), outcome.PointsMerged, fetchedAt, detail}

	_, err := rs.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert metric result: %w", err)
	}

	return nil
}

// ListRuns returns the most recent fetch runs, newest first.
func (rs *RunsStoreImpl) ListRuns(limit int) ([]schema.FetchRunRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(fetchRunsTable, rs.backend)
	query := fmt.Sprintf("SELECT run_id, start_time, end_time, run_duration_ms, repos_processed, observations_merged, config_params FROM %s ORDER BY run_id DESC", quotedTableName)
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.FetchRunRecord

	for rows.Next() {
		var record schema.FetchRunRecord
		var reposProcessed, observationsMerged sql.NullInt32

		switch rs.backend {
		case schema.SQLiteBackend:
			var startTimeStr string
			var endTimeStr *string
			if err := rows.Scan(&record.RunID, &startTimeStr, &endTimeStr, &record.RunDurationMs, &reposProcessed, &observationsMerged, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan fetch run: %w", err)
			}
			startTime, err := parseStoredTime(startTimeStr)
			if err != nil {
				return nil, err
			}
			record.StartTime = startTime
			if endTimeStr != nil {
				endTime, err := parseStoredTime(*endTimeStr)
				if err != nil {
					return nil, err
				}
				record.EndTime = &endTime
			}
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.StartTime, &record.EndTime, &record.RunDurationMs, &reposProcessed, &observationsMerged, &record.ConfigParams); err != nil {
				return nil, fmt.Errorf("failed to scan fetch run: %w", err)
			}
		}

		record.ReposProcessed = reposProcessed.Int32
		record.ObservationsMerged = observationsMerged.Int32
		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating fetch runs: %w", err)
	}

	return results, nil
}

// ListMetricResults returns the per-metric rows for one run.
func (rs *RunsStoreImpl) ListMetricResults(runID int64) ([]schema.MetricResultRecord, error) {
	// Skip for NoneBackend
	if rs.backend == schema.NoneBackend || rs.db == nil {
		return nil, nil
	}

	quotedTableName := quoteTableName(metricResultsTable, rs.backend)
	var query string
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query = fmt.Sprintf("SELECT run_id, repo_name, metric_name, fetch_status, points_merged, fetched_at, detail FROM %s WHERE run_id = $1 ORDER BY repo_name, metric_name", quotedTableName)
	default: // SQLite and MySQL
		query = fmt.Sprintf("SELECT run_id, repo_name, metric_name, fetch_status, points_merged, fetched_at, detail FROM %s WHERE run_id = ? ORDER BY repo_name, metric_name", quotedTableName)
	}

	rows, err := rs.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query metric results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.MetricResultRecord

	for rows.Next() {
		var record schema.MetricResultRecord

		switch rs.backend {
		case schema.SQLiteBackend:
			var fetchedAtStr string
			if err := rows.Scan(&record.RunID, &record.Repo, &record.Metric, &record.Status, &record.PointsMerged, &fetchedAtStr, &record.Detail); err != nil {
				return nil, fmt.Errorf("failed to scan metric result: %w", err)
			}
			fetchedAt, err := parseStoredTime(fetchedAtStr)
			if err != nil {
				return nil, err
			}
			record.FetchedAt = fetchedAt
		default: // MySQL and PostgreSQL
			if err := rows.Scan(&record.RunID, &record.Repo, &record.Metric, &record.Status, &record.PointsMerged, &record.FetchedAt, &record.Detail); err != nil {
				return nil, fmt.Errorf("failed to scan metric result: %w", err)
			}
		}

		results = append(results, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating metric results: %w", err)
	}

	return results, nil
}

// Close closes the underlying connection.
func (rs *RunsStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the runs store.
func (rs *RunsStoreImpl) GetStatus() (schema.RunsStatus, error) {
	status := schema.RunsStatus{
		Backend:   string(rs.backend),
		Connected: rs.db != nil,
	}

	if rs.backend == schema.NoneBackend || rs.db == nil {
		return status, nil
	}

	// Get total runs
	runsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(fetchRunsTable, rs.backend))
	row := rs.db.QueryRow(runsQuery)
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	// Get total per-metric results
	resultsQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(metricResultsTable, rs.backend))
	row = rs.db.QueryRow(resultsQuery)
	if err := row.Scan(&status.TotalResults); err != nil {
		return status, fmt.Errorf("failed to get total results: %w", err)
	}

	if status.TotalRuns == 0 {
		return status, nil
	}

	// Get last run time
	lastRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id DESC LIMIT 1", quoteTableName(fetchRunsTable, rs.backend))
	row = rs.db.QueryRow(lastRunQuery)

	switch rs.backend {
	case schema.SQLiteBackend:
		var lastRunTimeStr string
		if err := row.Scan(&lastRunTimeStr); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
		lastRunTime, err := parseStoredTime(lastRunTimeStr)
		if err != nil {
			return status, err
		}
		status.LastRunTime = lastRunTime
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&status.LastRunTime); err != nil {
			return status, fmt.Errorf("failed to get last run time: %w", err)
		}
	}

	// Get oldest run time
	oldestRunQuery := fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", quoteTableName(fetchRunsTable, rs.backend))
	row = rs.db.QueryRow(oldestRunQuery)

	switch rs.backend {
	case schema.SQLiteBackend:
		var oldestRunTimeStr string
		if err := row.Scan(&oldestRunTimeStr); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		oldestRunTime, err := parseStoredTime(oldestRunTimeStr)
		if err != nil {
			return status, err
		}
		status.OldestRunTime = oldestRunTime
	default: // MySQL and PostgreSQL store as native datetime
		if err := row.Scan(&status.OldestRunTime); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
	}

	return status, nil
}
