package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/skyvolt/aeroscope-backend/internal/logger"
	"github.com/skyvolt/aeroscope-backend/internal/types"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// A single connection keeps the in-memory database alive and serializes
	// writers the way a contended pool would.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(
		&types.PromptTemplate{},
		&types.Decision{},
		&types.AnalysisResult{},
		&types.UsageMetric{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestUsageMetricIncrement_CreatesThenAccumulates(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsageMetricRepo(db, logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	date := "2026-08-30"
	endpoint := "/analyze/report"

	if err := repo.Increment(ctx, nil, userID, date, endpoint, 100, 1500); err != nil {
		t.Fatalf("first increment: %v", err)
	}
	if err := repo.Increment(ctx, nil, userID, date, endpoint, 50, 500); err != nil {
		t.Fatalf("second increment: %v", err)
	}

	row, err := repo.Get(ctx, nil, userID, date, endpoint)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row == nil {
		t.Fatalf("expected row")
	}
	if row.RequestCount != 2 || row.TotalTokens != 150 || row.TotalProcessingTimeMs != 2000 {
		t.Fatalf("unexpected counters: %+v", row)
	}
}

func TestUsageMetricIncrement_SeparateKeysSeparateRows(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsageMetricRepo(db, logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	if err := repo.Increment(ctx, nil, userID, "2026-08-30", "/analyze/report", 10, 100); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := repo.Increment(ctx, nil, userID, "2026-08-30", "/summary/daily", 10, 100); err != nil {
		t.Fatalf("increment: %v", err)
	}
	if err := repo.Increment(ctx, nil, userID, "2026-08-31", "/analyze/report", 10, 100); err != nil {
		t.Fatalf("increment: %v", err)
	}

	rows, err := repo.ListForUserRange(ctx, nil, userID, "2026-08-01", "2026-08-31")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	for _, row := range rows {
		if row.RequestCount != 1 {
			t.Fatalf("cross-key bleed: %+v", row)
		}
	}
}

func TestUsageMetricIncrement_ConcurrentWritersLoseNothing(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsageMetricRepo(db, logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	date := "2026-08-30"
	endpoint := "/analyze/anomalies"

	const writers = 50
	var g errgroup.Group
	for i := 0; i < writers; i++ {
		g.Go(func() error {
			return repo.Increment(ctx, nil, userID, date, endpoint, 10, 100)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent increments: %v", err)
	}

	row, err := repo.Get(ctx, nil, userID, date, endpoint)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row == nil {
		t.Fatalf("expected row")
	}
	if row.RequestCount != writers {
		t.Fatalf("lost updates: expected %d, got %d", writers, row.RequestCount)
	}
	if row.TotalTokens != writers*10 || row.TotalProcessingTimeMs != writers*100 {
		t.Fatalf("counter mismatch: %+v", row)
	}
}

func TestUsageMetricGet_MissingRowIsNil(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsageMetricRepo(db, logger.NewNop())

	row, err := repo.Get(context.Background(), nil, uuid.New(), "2026-01-01", "/analyze/report")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if row != nil {
		t.Fatalf("expected nil, got %+v", row)
	}
}

func TestUsageMetricList_RangeIsInclusive(t *testing.T) {
	db := newTestDB(t)
	repo := NewUsageMetricRepo(db, logger.NewNop())
	ctx := context.Background()

	userID := uuid.New()
	for _, date := range []string{"2026-08-29", "2026-08-30", "2026-08-31", "2026-09-01"} {
		if err := repo.Increment(ctx, nil, userID, date, "/analyze/report", 1, 1); err != nil {
			t.Fatalf("increment: %v", err)
		}
	}

	rows, err := repo.ListForUserRange(ctx, nil, userID, "2026-08-30", "2026-08-31")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Date != "2026-08-30" || rows[1].Date != "2026-08-31" {
		t.Fatalf("wrong range or order: %+v", rows)
	}
}
