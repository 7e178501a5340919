package statestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/specialistvlad/deploygrid/internal/component"
	"github.com/specialistvlad/deploygrid/internal/orchestrator"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Store reads and writes run reports.
type Store struct {
	DB *sql.DB
}

// Run is a persisted report.
type Run struct {
	ID         string
	PlanHash   string
	State      orchestrator.State
	StartedAt  time.Time
	FinishedAt time.Time
	Entries    []RunEntry
}

// RunEntry is one persisted component outcome.
type RunEntry struct {
	Name     string
	Sequence int
	Status   orchestrator.Status
	Handle   component.Handle
	Error    string
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.DB.Close()
}

// SaveReport writes report, replacing any earlier save of the same run.
func (s *Store) SaveReport(ctx context.Context, report *orchestrator.Report) error {
	var planHash string
	if report.Plan != nil {
		planHash = report.Plan.Hash()
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, plan_hash, state, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   plan_hash = excluded.plan_hash,
		   state = excluded.state,
		   started_at = excluded.started_at,
		   finished_at = excluded.finished_at`,
		report.RunID, planHash, string(report.State), formatTime(report.Started), nullTime(report.Finished),
	)
	if err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_entries WHERE run_id = ?`, report.RunID); err != nil {
		return fmt.Errorf("clear run entries: %w", err)
	}
	for _, e := range report.Entries {
		var errText sql.NullString
		if e.Err != nil {
			errText = sql.NullString{String: e.Err.Error(), Valid: true}
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO run_entries (run_id, name, seq, status, handle, error)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			report.RunID, e.Name, e.Sequence, string(e.Status), nullString(string(e.Handle)), errText,
		)
		if err != nil {
			return fmt.Errorf("insert entry %q: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run: %w", err)
	}
	return nil
}

// GetRun loads a run and its entries ordered by sequence.
func (s *Store) GetRun(ctx context.Context, runID string) (Run, error) {
	var (
		run        Run
		state      string
		startedAt  string
		finishedAt sql.NullString
	)
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, plan_hash, state, started_at, finished_at FROM runs WHERE id = ?`, runID,
	).Scan(&run.ID, &run.PlanHash, &state, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %q: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	run.State = orchestrator.State(state)
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return Run{}, err
	}
	if finishedAt.Valid {
		if run.FinishedAt, err = parseTime(finishedAt.String); err != nil {
			return Run{}, err
		}
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT name, seq, status, handle, error FROM run_entries WHERE run_id = ? ORDER BY seq`, runID,
	)
	if err != nil {
		return Run{}, fmt.Errorf("list run entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			e       RunEntry
			status  string
			handle  sql.NullString
			errText sql.NullString
		)
		if err := rows.Scan(&e.Name, &e.Sequence, &status, &handle, &errText); err != nil {
			return Run{}, fmt.Errorf("scan run entry: %w", err)
		}
		e.Status = orchestrator.Status(status)
		e.Handle = component.Handle(handle.String)
		e.Error = errText.String
		run.Entries = append(run.Entries, e)
	}
	return run, rows.Err()
}

// LoadResolved returns the handles of every component the run deployed or
// reused. Failed entries are left out.
func (s *Store) LoadResolved(ctx context.Context, runID string) (map[string]component.Handle, error) {
	run, err := s.GetRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]component.Handle, len(run.Entries))
	for _, e := range run.Entries {
		if e.Status == orchestrator.StatusFailed || e.Handle == "" {
			continue
		}
		out[e.Name] = e.Handle
	}
	return out, nil
}
