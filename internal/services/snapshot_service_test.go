package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/codyseavey/tcg-search/internal/database"
	"github.com/codyseavey/tcg-search/internal/models"
)

func newTestSnapshotService(t *testing.T, now time.Time) (*SnapshotService, *CollectionStore) {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	store := NewCollectionStore(database.NewKVStore(db))
	svc := NewSnapshotService(db, store, 23)
	svc.now = func() time.Time { return now }
	return svc, store
}

func TestTakeSnapshotReplacesSameDay(t *testing.T) {
	now := time.Date(2026, 10, 19, 23, 30, 0, 0, time.UTC)
	svc, store := newTestSnapshotService(t, now)

	store.Add(testCard("a", models.Float(4)))
	if err := svc.TakeSnapshot(); err != nil {
		t.Fatalf("TakeSnapshot failed: %v", err)
	}
	store.Add(testCard("b", nil))
	if err := svc.TakeSnapshot(); err != nil {
		t.Fatalf("TakeSnapshot failed: %v", err)
	}

	history, err := svc.GetHistory("all")
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("Expected 1 snapshot for the day, got %d", len(history))
	}
	got := history[0]
	if got.CardCount != 2 || got.PricedCount != 1 || got.PricelessCount != 1 {
		t.Errorf("Unexpected counts: %+v", got)
	}
	if got.TotalValue != 4 {
		t.Errorf("Expected total 4, got %.2f", got.TotalValue)
	}
	if !svc.LastSnapshotTime().Equal(now) {
		t.Errorf("Expected last snapshot time %s, got %s", now, svc.LastSnapshotTime())
	}
}

func TestCheckAndSnapshotWaitsForHour(t *testing.T) {
	now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	svc, _ := newTestSnapshotService(t, now)

	svc.checkAndSnapshot()
	if svc.hasSnapshotForDate(now) {
		t.Fatal("Expected no snapshot before the configured hour")
	}

	later := now.Add(14 * time.Hour)
	svc.now = func() time.Time { return later }
	svc.checkAndSnapshot()
	if !svc.hasSnapshotForDate(later) {
		t.Error("Expected a snapshot once the configured hour passed")
	}
}

func TestGetHistoryPeriods(t *testing.T) {
	today := time.Date(2026, 10, 19, 23, 0, 0, 0, time.UTC)
	svc, _ := newTestSnapshotService(t, today)

	for _, daysAgo := range []int{0, 3, 20, 200, 500} {
		day := today.AddDate(0, 0, -daysAgo)
		svc.now = func() time.Time { return day }
		if err := svc.TakeSnapshot(); err != nil {
			t.Fatalf("TakeSnapshot failed: %v", err)
		}
	}
	svc.now = func() time.Time { return today }

	tests := []struct {
		period string
		want   int
	}{
		{"week", 2},
		{"month", 3},
		{"", 3},
		{"year", 4},
		{"all", 5},
	}
	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			history, err := svc.GetHistory(tt.period)
			if err != nil {
				t.Fatalf("GetHistory failed: %v", err)
			}
			if len(history) != tt.want {
				t.Errorf("Expected %d snapshots, got %d", tt.want, len(history))
			}
		})
	}
}
