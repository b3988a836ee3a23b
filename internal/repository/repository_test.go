package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"textlens-cli/internal/db"
	"textlens-cli/internal/models"
	"textlens-cli/internal/utils"
)

func newTestRepository(t *testing.T) Repository {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.Migrate(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	return NewRepository(database)
}

func testRecord(op, input string, at time.Time) *models.Record {
	return &models.Record{
		ID:           utils.GenerateID(),
		Operation:    op,
		Input:        input,
		AnalysisType: "general",
		Response:     `{"success":true}`,
		CreatedAt:    at,
	}
}

func TestSaveAndRecent(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := testRecord(models.OpAnalyzeText, fmt.Sprintf("input %d", i), base.Add(time.Duration(i)*time.Minute))
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("save record %d: %v", i, err)
		}
	}

	records, err := repo.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].Input != "input 2" || records[1].Input != "input 1" {
		t.Errorf("wrong order: got %q then %q, want newest first", records[0].Input, records[1].Input)
	}
	if records[0].Response != `{"success":true}` {
		t.Errorf("response = %q, want the stored JSON verbatim", records[0].Response)
	}
}

func TestRecentDefaultsLimit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		if err := repo.Save(ctx, testRecord(models.OpChat, fmt.Sprintf("msg %d", i), base.Add(time.Duration(i)*time.Second))); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	records, err := repo.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want all 3 with the default limit", len(records))
	}
}

func TestLastByOperation(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	saves := []*models.Record{
		testRecord(models.OpChat, "first question", base),
		testRecord(models.OpAnalyzeText, "some text", base.Add(time.Minute)),
		testRecord(models.OpChat, "second question", base.Add(2*time.Minute)),
	}
	for _, rec := range saves {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	last, err := repo.LastByOperation(ctx, models.OpChat)
	if err != nil {
		t.Fatalf("last by operation: %v", err)
	}
	if last == nil {
		t.Fatal("got nil, want the latest chat record")
	}
	if last.Input != "second question" {
		t.Errorf("input = %q, want the most recent chat", last.Input)
	}
}

func TestLastByOperationWhenEmpty(t *testing.T) {
	repo := newTestRepository(t)

	last, err := repo.LastByOperation(context.Background(), models.OpUpload)
	if err != nil {
		t.Fatalf("last by operation: %v", err)
	}
	if last != nil {
		t.Errorf("got %+v, want nil for an operation with no records", last)
	}
}
