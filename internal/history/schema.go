package history

// schema holds the audit run history tables.
const schema = `
-- One row per completed audit run
CREATE TABLE IF NOT EXISTS audit_runs (
    id           TEXT PRIMARY KEY,
    url          TEXT NOT NULL,
    started_at   INTEGER NOT NULL,
    devices_json TEXT NOT NULL DEFAULT '[]',
    issue_count  INTEGER NOT NULL DEFAULT 0,
    result_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_audit_runs_time ON audit_runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_audit_runs_url ON audit_runs(url);

-- Flattened issues for querying without decoding the full result
CREATE TABLE IF NOT EXISTS audit_issues (
    run_id        TEXT NOT NULL REFERENCES audit_runs(id) ON DELETE CASCADE,
    device        TEXT NOT NULL,
    rule_id       TEXT NOT NULL,
    severity      TEXT NOT NULL,
    wcag_level    TEXT NOT NULL DEFAULT '',
    wcag_version  TEXT NOT NULL DEFAULT '',
    standard_code TEXT NOT NULL DEFAULT '',
    item_count    INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_audit_issues_run ON audit_issues(run_id);
CREATE INDEX IF NOT EXISTS idx_audit_issues_rule ON audit_issues(rule_id);
`
