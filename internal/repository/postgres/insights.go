// Package postgres persists generated insights and the audit trail of
// executive edits.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq" // Postgres driver

	"github.com/ignite/exec-dashboard/internal/insight"
	"github.com/ignite/exec-dashboard/internal/kpi"
)

// InsightRepo implements the insight journal against PostgreSQL.
type InsightRepo struct{ db *sql.DB }

// NewInsightRepo creates a Postgres-backed insight repository.
func NewInsightRepo(db *sql.DB) *InsightRepo { return &InsightRepo{db: db} }

// Open connects to Postgres and verifies the connection.
func Open(ctx context.Context, databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return db, nil
}

// SaveBatch upserts a refresh cycle's insights. Ids repeat across cycles
// only for edited insights, which keep their row and flip back on conflict.
func (r *InsightRepo) SaveBatch(ctx context.Context, insights []insight.Insight) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insight batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO insights (id, kpi_id, title, observation, business_impact,
		                      recommended_action, priority, generated_at, is_auto_generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			observation = EXCLUDED.observation,
			business_impact = EXCLUDED.business_impact,
			recommended_action = EXCLUDED.recommended_action,
			priority = EXCLUDED.priority,
			is_auto_generated = EXCLUDED.is_auto_generated
	`)
	if err != nil {
		return fmt.Errorf("prepare insight upsert: %w", err)
	}
	defer stmt.Close()

	for _, ins := range insights {
		if _, err := stmt.ExecContext(ctx,
			ins.ID, string(ins.KPIID), ins.Title, ins.Observation, ins.BusinessImpact,
			ins.Action, string(ins.Priority), ins.GeneratedAt, ins.IsAutoGenerated,
		); err != nil {
			return fmt.Errorf("upsert insight %s: %w", ins.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insight batch: %w", err)
	}
	return nil
}

// RecordEdit appends an audit row for an executive edit, storing the
// applied patch as JSON alongside the resulting insight state.
func (r *InsightRepo) RecordEdit(ctx context.Context, insightID string, patch insight.Patch, result insight.Insight) error {
	patchJSON, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshal edit patch: %w", err)
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal edited insight: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO insight_edits (insight_id, patch, result, edited_at)
		VALUES ($1, $2, $3, $4)
	`, insightID, patchJSON, resultJSON, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record insight edit: %w", err)
	}
	return nil
}

// ListRecent returns the most recently generated insights, newest first.
func (r *InsightRepo) ListRecent(ctx context.Context, limit int) ([]insight.Insight, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, kpi_id, title, observation, business_impact,
		       recommended_action, priority, generated_at, is_auto_generated
		FROM insights
		ORDER BY generated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent insights: %w", err)
	}
	defer rows.Close()

	var out []insight.Insight
	for rows.Next() {
		var ins insight.Insight
		var kpiID, priority string
		if err := rows.Scan(
			&ins.ID, &kpiID, &ins.Title, &ins.Observation, &ins.BusinessImpact,
			&ins.Action, &priority, &ins.GeneratedAt, &ins.IsAutoGenerated,
		); err != nil {
			return nil, fmt.Errorf("scan insight row: %w", err)
		}
		ins.KPIID = kpi.ID(kpiID)
		ins.Priority = insight.Priority(priority)
		out = append(out, ins)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read insight rows: %w", err)
	}
	return out, nil
}
