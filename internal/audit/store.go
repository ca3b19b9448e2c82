// internal/audit/store.go

// Package audit persists correction runs and their complete attempt trails.
// Every run is recorded regardless of outcome; escalated runs carry the final
// violation set so an operator can pick up where the loop stopped.
package audit

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/parcelforge/parcelforge/internal/core/db"
	"github.com/parcelforge/parcelforge/internal/correction"
	"github.com/parcelforge/parcelforge/internal/schema"
	"github.com/parcelforge/parcelforge/internal/types"
)

// ErrRunNotFound indicates the requested run ID has no audit record.
var ErrRunNotFound = errors.New("correction run not found")

// Run is a persisted correction run with its full attempt trail.
type Run struct {
	ID                   types.RunID
	TemplateName         string
	Outcome              correction.Outcome
	Attempts             []correction.Attempt
	RequiresConfirmation bool
	FinalTemplate        string
	Errors               []schema.ValidationError
	CreatedAt            time.Time
}

// RunSummary is a listing row without attempt bodies.
type RunSummary struct {
	ID           types.RunID
	TemplateName string
	Outcome      correction.Outcome
	Attempts     int
	CreatedAt    time.Time
}

// Store records and retrieves correction runs.
type Store struct {
	queries *db.Queries
}

// NewStore wraps a loaded query set.
func NewStore(queries *db.Queries) *Store {
	return &Store{queries: queries}
}

// Row structs mirror the audit schema column names for sqlx scanning.
// Timestamps are stored as RFC3339 text on both drivers so ordering and
// scanning behave identically.
type runRow struct {
	RunID                string `db:"run_id"`
	TemplateName         string `db:"template_name"`
	Outcome              string `db:"outcome"`
	Attempts             int    `db:"attempts"`
	RequiresConfirmation bool   `db:"requires_confirmation"`
	FinalTemplate        string `db:"final_template"`
	Errors               string `db:"errors"`
	CreatedAt            string `db:"created_at"`
}

type attemptRow struct {
	RunID          string `db:"run_id"`
	AttemptNumber  int    `db:"attempt_number"`
	InputTemplate  string `db:"input_template"`
	Errors         string `db:"errors"`
	OutputTemplate string `db:"output_template"`
	HasOutput      bool   `db:"has_output"`
	Succeeded      bool   `db:"succeeded"`
}

// RecordRun persists a correction result under a fresh run ID.
// The run row and all attempt rows commit in one transaction; a run with a
// partial attempt trail never becomes visible.
func (s *Store) RecordRun(templateName string, res *correction.Result) (types.RunID, error) {
	id := types.NewRunID()
	createdAt := time.Now().UTC().Format(time.RFC3339)

	finalErrors, err := marshalViolations(res.Errors)
	if err != nil {
		return "", fmt.Errorf("failed to encode run errors: %w", err)
	}

	tx, err := s.queries.Beginx()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	_, err = s.queries.ExecTx(tx, "insert-run",
		string(id), templateName, string(res.Outcome), len(res.Attempts),
		res.RequiresConfirmation, res.FinalTemplate, finalErrors, createdAt)
	if err != nil {
		tx.Rollback()
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	for _, a := range res.Attempts {
		attemptErrors, err := marshalViolations(a.Errors)
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("failed to encode attempt %d errors: %w", a.Number, err)
		}
		_, err = s.queries.ExecTx(tx, "insert-attempt",
			string(id), a.Number, a.InputTemplate, attemptErrors,
			a.OutputTemplate, a.HasOutput, a.Succeeded)
		if err != nil {
			tx.Rollback()
			return "", fmt.Errorf("failed to insert attempt %d: %w", a.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}

	return id, nil
}

// GetRun retrieves one run with its ordered attempt trail.
func (s *Store) GetRun(id types.RunID) (*Run, error) {
	var row runRow
	if err := s.queries.Get("get-run", &row, string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to query run: %w", err)
	}

	var attemptRows []attemptRow
	if err := s.queries.Select("list-attempts", &attemptRows, string(id)); err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}

	run, err := rowToRun(row)
	if err != nil {
		return nil, err
	}

	for _, ar := range attemptRows {
		violations, err := unmarshalViolations(ar.Errors)
		if err != nil {
			return nil, fmt.Errorf("corrupt attempt %d errors for run %s: %w", ar.AttemptNumber, id, err)
		}
		run.Attempts = append(run.Attempts, correction.Attempt{
			Number:         ar.AttemptNumber,
			InputTemplate:  ar.InputTemplate,
			Errors:         violations,
			OutputTemplate: ar.OutputTemplate,
			HasOutput:      ar.HasOutput,
			Succeeded:      ar.Succeeded,
		})
	}

	return run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []runRow
	if err := s.queries.Select("list-runs", &rows, limit); err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}

	summaries := make([]RunSummary, 0, len(rows))
	for _, row := range rows {
		createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("corrupt created_at for run %s: %w", row.RunID, err)
		}
		summaries = append(summaries, RunSummary{
			ID:           types.RunID(row.RunID),
			TemplateName: row.TemplateName,
			Outcome:      correction.Outcome(row.Outcome),
			Attempts:     row.Attempts,
			CreatedAt:    createdAt,
		})
	}

	return summaries, nil
}

func rowToRun(row runRow) (*Run, error) {
	createdAt, err := time.Parse(time.RFC3339, row.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("corrupt created_at for run %s: %w", row.RunID, err)
	}

	violations, err := unmarshalViolations(row.Errors)
	if err != nil {
		return nil, fmt.Errorf("corrupt errors for run %s: %w", row.RunID, err)
	}

	return &Run{
		ID:                   types.RunID(row.RunID),
		TemplateName:         row.TemplateName,
		Outcome:              correction.Outcome(row.Outcome),
		RequiresConfirmation: row.RequiresConfirmation,
		FinalTemplate:        row.FinalTemplate,
		Errors:               violations,
		CreatedAt:            createdAt,
	}, nil
}

// marshalViolations encodes a violation batch as JSON text. nil and empty
// both encode as "[]" so the column is never SQL NULL.
func marshalViolations(violations []schema.ValidationError) (string, error) {
	if len(violations) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(violations)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalViolations(data string) ([]schema.ValidationError, error) {
	var violations []schema.ValidationError
	if err := json.Unmarshal([]byte(data), &violations); err != nil {
		return nil, err
	}
	if len(violations) == 0 {
		return nil, nil
	}
	return violations, nil
}
