// Package history persists completed audit runs in SQLite so past results
// survive restarts and can be listed without re-auditing.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/webyes/a11ycheck/internal/dbopen"
	"github.com/webyes/a11ycheck/report"

	_ "modernc.org/sqlite"
)

// Run is a summary row for listing past audits.
type Run struct {
	ID         string   `json:"id"`
	URL        string   `json:"url"`
	StartedAt  int64    `json:"started_at"`
	Devices    []string `json:"devices"`
	IssueCount int      `json:"issue_count"`
}

// Store records audit runs. A nil *Store is valid and drops everything, so
// callers need no branching when history is disabled.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates or opens the history database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := dbopen.Open(path, dbopen.WithMkdirAll(), dbopen.WithSchema(schema))
	if err != nil {
		return nil, fmt.Errorf("history: %w", err)
	}
	return New(db, logger), nil
}

// New wraps an already opened database. The schema must be applied by the
// caller (Open does both).
func New(db *sql.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

// Save records a completed audit run and its flattened issues.
func (s *Store) Save(ctx context.Context, result *report.AuditResult) error {
	if s == nil {
		return nil
	}

	resultJSON, err := report.MarshalResult(result)
	if err != nil {
		return fmt.Errorf("history: marshal result: %w", err)
	}
	devices := make([]string, 0, len(result.Devices))
	for _, d := range result.Devices {
		devices = append(devices, d.Name)
	}
	devicesJSON, _ := json.Marshal(devices)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("history: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audit_runs (id, url, started_at, devices_json, issue_count, result_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		result.ID, result.URL, result.StartedAt, string(devicesJSON),
		result.IssueCount(), string(resultJSON))
	if err != nil {
		return fmt.Errorf("history: insert run: %w", err)
	}

	for device, issues := range result.Issues {
		for _, issue := range issues {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO audit_issues (run_id, device, rule_id, severity, wcag_level, wcag_version, standard_code, item_count)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				result.ID, device, issue.IssueID, issue.Severity,
				issue.WCAGLevel, issue.WCAGVersion, issue.StandardCode, len(issue.Items))
			if err != nil {
				return fmt.Errorf("history: insert issue: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("history: commit: %w", err)
	}
	s.logger.Debug("history: run saved", "id", result.ID, "url", result.URL)
	return nil
}

// Recent lists the latest runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if s == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, url, started_at, devices_json, issue_count
		 FROM audit_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var devicesJSON string
		if err := rows.Scan(&r.ID, &r.URL, &r.StartedAt, &devicesJSON, &r.IssueCount); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(devicesJSON), &r.Devices); err != nil {
			r.Devices = nil
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get loads a full stored result by run ID. Returns sql.ErrNoRows when the
// run is unknown.
func (s *Store) Get(ctx context.Context, id string) (*report.AuditResult, error) {
	if s == nil {
		return nil, sql.ErrNoRows
	}

	var resultJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM audit_runs WHERE id = ?`, id).Scan(&resultJSON)
	if err != nil {
		return nil, fmt.Errorf("history: load run %s: %w", id, err)
	}
	return report.UnmarshalResult([]byte(resultJSON))
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
