// Package store persists analysis runs to SQLite: one drive_tests row
// per run, with the per-type reports, problem areas, and findings as
// child rows.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/drivesight/drivesight/internal/model"
)

// Store wraps SQLite access for analysis history.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and applies the
// schema, backfilling columns added since the database was created.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS drive_tests (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			filename TEXT,
			file_format TEXT,
			upload_date TIMESTAMP,
			record_count INTEGER,
			start_time TIMESTAMP,
			end_time TIMESTAMP,
			avg_rsrp REAL,
			avg_rsrq REAL,
			avg_sinr REAL,
			avg_throughput_dl REAL
		);`,
		`CREATE TABLE IF NOT EXISTS analysis_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			drive_test_id INTEGER REFERENCES drive_tests(id),
			analysis_type TEXT,
			report_date TIMESTAMP,
			threshold_values TEXT,
			results TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS problem_areas (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			drive_test_id INTEGER REFERENCES drive_tests(id),
			problem_type TEXT,
			latitude REAL,
			longitude REAL,
			avg_rsrp REAL,
			avg_rsrq REAL,
			avg_sinr REAL,
			cell_id TEXT,
			severity TEXT,
			description TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS findings (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			drive_test_id INTEGER REFERENCES drive_tests(id),
			issue TEXT,
			severity TEXT,
			description TEXT,
			recommendation TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_reports_test ON analysis_reports(drive_test_id);`,
		`CREATE INDEX IF NOT EXISTS idx_areas_test ON problem_areas(drive_test_id);`,
		`CREATE INDEX IF NOT EXISTS idx_findings_test ON findings(drive_test_id);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	// Columns added after the initial schema; older databases upgrade
	// in place.
	backfills := map[string]map[string]string{
		"drive_tests": {
			"degraded":        "INTEGER DEFAULT 0",
			"degraded_reason": "TEXT DEFAULT ''",
		},
	}
	for table, cols := range backfills {
		if err := s.ensureColumns(table, cols); err != nil {
			return err
		}
	}
	return nil
}

// ensureColumns adds any of cols missing from the table.
func (s *Store) ensureColumns(table string, cols map[string]string) error {
	rows, err := s.db.Query(fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return err
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var cid int
		var name, typ string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for name, decl := range cols {
		if existing[name] {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, name, decl)
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// TestRow is one stored drive test as listed by History.
type TestRow struct {
	ID             int64
	Filename       string
	Format         string
	UploadDate     time.Time
	RecordCount    int
	Start, End     time.Time
	AvgRSRP        sql.NullFloat64
	AvgRSRQ        sql.NullFloat64
	AvgSINR        sql.NullFloat64
	AvgDL          sql.NullFloat64
	Degraded       bool
	DegradedReason string
}

// SaveRun stores the run and all of its child rows in one transaction,
// returning the new drive test id.
func (s *Store) SaveRun(ctx context.Context, run *model.Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.ExecContext(ctx, `INSERT INTO drive_tests
		(filename, file_format, upload_date, record_count, start_time, end_time,
		 avg_rsrp, avg_rsrq, avg_sinr, avg_throughput_dl, degraded, degraded_reason)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		run.Source, run.Format, now, run.SampleCount, run.Start, run.End,
		nullable(run.AvgRSRP), nullable(run.AvgRSRQ), nullable(run.AvgSINR),
		nullable(run.AvgThroughputDL), run.Degraded, run.DegradedReason)
	if err != nil {
		return 0, fmt.Errorf("store: insert test: %w", err)
	}
	testID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("store: test id: %w", err)
	}

	thresholds, err := json.Marshal(run.Thresholds)
	if err != nil {
		return 0, fmt.Errorf("store: marshal thresholds: %w", err)
	}
	for _, r := range run.Results {
		blob, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("store: marshal %s result: %w", r.Type, err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO analysis_reports
			(drive_test_id, analysis_type, report_date, threshold_values, results)
			VALUES (?,?,?,?,?)`,
			testID, r.Type, now, string(thresholds), string(blob)); err != nil {
			return 0, fmt.Errorf("store: insert report: %w", err)
		}
		for _, a := range r.Areas {
			if _, err := tx.ExecContext(ctx, `INSERT INTO problem_areas
				(drive_test_id, problem_type, latitude, longitude,
				 avg_rsrp, avg_rsrq, avg_sinr, cell_id, severity, description)
				VALUES (?,?,?,?,?,?,?,?,?,?)`,
				testID, a.Type, a.CenterLat, a.CenterLon,
				nullable(a.AvgRSRP), nullable(a.AvgRSRQ), nullable(a.AvgSINR),
				a.CellID, a.Severity, a.Description); err != nil {
				return 0, fmt.Errorf("store: insert area: %w", err)
			}
		}
	}
	for _, f := range run.Findings {
		if _, err := tx.ExecContext(ctx, `INSERT INTO findings
			(drive_test_id, issue, severity, description, recommendation)
			VALUES (?,?,?,?,?)`,
			testID, f.Issue, f.Severity, f.Description, f.Recommendation); err != nil {
			return 0, fmt.Errorf("store: insert finding: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("store: commit: %w", err)
	}
	return testID, nil
}

// ListTests returns stored drive tests, newest first.
func (s *Store) ListTests(ctx context.Context) ([]TestRow, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, filename, file_format,
		upload_date, record_count, start_time, end_time,
		avg_rsrp, avg_rsrq, avg_sinr, avg_throughput_dl, degraded, degraded_reason
		FROM drive_tests ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []TestRow
	for rows.Next() {
		var t TestRow
		if err := rows.Scan(&t.ID, &t.Filename, &t.Format, &t.UploadDate,
			&t.RecordCount, &t.Start, &t.End,
			&t.AvgRSRP, &t.AvgRSRQ, &t.AvgSINR, &t.AvgDL,
			&t.Degraded, &t.DegradedReason); err != nil {
			return nil, fmt.Errorf("store: scan test: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTest returns one stored drive test's summary row.
func (s *Store) GetTest(ctx context.Context, id int64) (TestRow, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, filename, file_format,
		upload_date, record_count, start_time, end_time,
		avg_rsrp, avg_rsrq, avg_sinr, avg_throughput_dl, degraded, degraded_reason
		FROM drive_tests WHERE id = ?`, id)

	var t TestRow
	err := row.Scan(&t.ID, &t.Filename, &t.Format, &t.UploadDate,
		&t.RecordCount, &t.Start, &t.End,
		&t.AvgRSRP, &t.AvgRSRQ, &t.AvgSINR, &t.AvgDL,
		&t.Degraded, &t.DegradedReason)
	if err == sql.ErrNoRows {
		return TestRow{}, fmt.Errorf("store: test %d: not found", id)
	}
	if err != nil {
		return TestRow{}, fmt.Errorf("store: get test %d: %w", id, err)
	}
	return t, nil
}

// GetRun reassembles a stored run: the test row plus its reports and
// findings. Problem areas are reloaded from the report JSON, which holds
// the full area records.
func (s *Store) GetRun(ctx context.Context, id int64) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT filename, file_format, record_count,
		start_time, end_time, avg_rsrp, avg_rsrq, avg_sinr, avg_throughput_dl,
		degraded, degraded_reason
		FROM drive_tests WHERE id = ?`, id)

	run := &model.Run{}
	var avgRSRP, avgRSRQ, avgSINR, avgDL sql.NullFloat64
	err := row.Scan(&run.Source, &run.Format, &run.SampleCount,
		&run.Start, &run.End, &avgRSRP, &avgRSRQ, &avgSINR, &avgDL,
		&run.Degraded, &run.DegradedReason)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("store: test %d: not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: get test %d: %w", id, err)
	}
	run.AvgRSRP = fromNull(avgRSRP)
	run.AvgRSRQ = fromNull(avgRSRQ)
	run.AvgSINR = fromNull(avgSINR)
	run.AvgThroughputDL = fromNull(avgDL)

	rows, err := s.db.QueryContext(ctx, `SELECT threshold_values, results
		FROM analysis_reports WHERE drive_test_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("store: reports for %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var thresholds, blob string
		if err := rows.Scan(&thresholds, &blob); err != nil {
			return nil, fmt.Errorf("store: scan report: %w", err)
		}
		if err := json.Unmarshal([]byte(thresholds), &run.Thresholds); err != nil {
			return nil, fmt.Errorf("store: decode thresholds: %w", err)
		}
		var result model.Result
		if err := json.Unmarshal([]byte(blob), &result); err != nil {
			return nil, fmt.Errorf("store: decode result: %w", err)
		}
		run.Results = append(run.Results, &result)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	frows, err := s.db.QueryContext(ctx, `SELECT issue, severity, description,
		recommendation FROM findings WHERE drive_test_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, fmt.Errorf("store: findings for %d: %w", id, err)
	}
	defer frows.Close()
	for frows.Next() {
		var f model.Finding
		if err := frows.Scan(&f.Issue, &f.Severity, &f.Description, &f.Recommendation); err != nil {
			return nil, fmt.Errorf("store: scan finding: %w", err)
		}
		run.Findings = append(run.Findings, f)
	}
	return run, frows.Err()
}

// DeleteTest removes a stored test and all of its child rows.
func (s *Store) DeleteTest(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM findings WHERE drive_test_id = ?`,
		`DELETE FROM problem_areas WHERE drive_test_id = ?`,
		`DELETE FROM analysis_reports WHERE drive_test_id = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("store: delete children of %d: %w", id, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM drive_tests WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("store: delete test %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("store: test %d: not found", id)
	}
	return tx.Commit()
}

func nullable(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
