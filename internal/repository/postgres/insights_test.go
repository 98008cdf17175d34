package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/ignite/exec-dashboard/internal/insight"
	"github.com/ignite/exec-dashboard/internal/kpi"
)

func sampleBatch() []insight.Insight {
	at := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	return []insight.Insight{
		{
			ID: "ins-1", KPIID: kpi.ProfitMargin, Title: "Profit Margin Erosion",
			Observation: "Margin at 8%", BusinessImpact: "No buffer", Action: "Pricing review",
			Priority: insight.PriorityHigh, GeneratedAt: at, IsAutoGenerated: true,
		},
		{
			ID: "ins-2", KPIID: kpi.ExpenseRatio, Title: "Rising Expense Ratio",
			Observation: "87.2% of revenue", BusinessImpact: "Compressing profit", Action: "Review spend",
			Priority: insight.PriorityMedium, GeneratedAt: at, IsAutoGenerated: true,
		},
	}
}

func TestSaveBatch(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO insights")
	prep.ExpectExec().
		WithArgs("ins-1", "profit-margin", "Profit Margin Erosion", "Margin at 8%",
			"No buffer", "Pricing review", "high", sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	prep.ExpectExec().
		WithArgs("ins-2", "expense-ratio", "Rising Expense Ratio", "87.2% of revenue",
			"Compressing profit", "Review spend", "medium", sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	repo := NewInsightRepo(db)
	if err := repo.SaveBatch(context.Background(), sampleBatch()); err != nil {
		t.Fatalf("SaveBatch: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestSaveBatchRollsBackOnError(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	prep := mock.ExpectPrepare("INSERT INTO insights")
	prep.ExpectExec().WillReturnError(errors.New("constraint violation"))
	mock.ExpectRollback()

	repo := NewInsightRepo(db)
	if err := repo.SaveBatch(context.Background(), sampleBatch()); err == nil {
		t.Fatal("failed exec should surface as an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRecordEdit(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("INSERT INTO insight_edits").
		WithArgs("ins-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	title := "Edited Title"
	patch := insight.Patch{Title: &title}
	result := sampleBatch()[0]
	result.Title = title
	result.IsAutoGenerated = false

	repo := NewInsightRepo(db)
	if err := repo.RecordEdit(context.Background(), "ins-1", patch, result); err != nil {
		t.Fatalf("RecordEdit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestListRecent(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	at := time.Date(2026, 8, 31, 6, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "kpi_id", "title", "observation", "business_impact",
		"recommended_action", "priority", "generated_at", "is_auto_generated",
	}).AddRow("ins-1", "profit-margin", "Profit Margin Erosion", "Margin at 8%",
		"No buffer", "Pricing review", "high", at, true)

	mock.ExpectQuery("SELECT id, kpi_id, title").
		WithArgs(25).
		WillReturnRows(rows)

	repo := NewInsightRepo(db)
	out, err := repo.ListRecent(context.Background(), 25)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(out))
	}
	if out[0].KPIID != kpi.ProfitMargin {
		t.Errorf("kpi id = %q", out[0].KPIID)
	}
	if out[0].Priority != insight.PriorityHigh {
		t.Errorf("priority = %q", out[0].Priority)
	}
	if !out[0].GeneratedAt.Equal(at) {
		t.Errorf("generated at = %v", out[0].GeneratedAt)
	}
}
