package aggregator

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/medjobs/jobquery/internal/analytics"
	"github.com/medjobs/jobquery/pkg/config"
	"github.com/medjobs/jobquery/pkg/postgres"
)

// newTestStore connects to the database named by TEST_POSTGRES_* and skips
// the test when it is unreachable.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	port, _ := strconv.Atoi(envOrDefault("TEST_POSTGRES_PORT", "5432"))
	cfg := config.PostgresConfig{
		Host:            envOrDefault("TEST_POSTGRES_HOST", "localhost"),
		Port:            port,
		Database:        envOrDefault("TEST_POSTGRES_DB", "jobquery_test"),
		User:            envOrDefault("TEST_POSTGRES_USER", "jobquery"),
		Password:        envOrDefault("TEST_POSTGRES_PASSWORD", "localdev"),
		SSLMode:         "disable",
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Minute,
	}
	ctx := context.Background()
	db, err := postgres.New(ctx, cfg)
	if err != nil {
		t.Skipf("skipping: postgres unavailable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if _, err := db.DB.ExecContext(ctx, `TRUNCATE job_query_snapshots`); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return store
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func TestStoreSnapshots(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	latest, err := store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot on empty table: %v", err)
	}
	if latest != nil {
		t.Fatalf("LatestSnapshot = %+v, want nil", latest)
	}

	for i := 1; i <= 3; i++ {
		stats := analytics.AggregatedStats{
			TotalParses:  int64(i * 10),
			TopLocations: []analytics.Count{{Value: "Pune", Count: int64(i)}},
		}
		if err := store.SaveSnapshot(ctx, stats); err != nil {
			t.Fatalf("SaveSnapshot: %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	latest, err = store.LatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest.TotalParses != 30 || latest.TopLocations[0].Count != 3 {
		t.Errorf("latest = %+v", latest)
	}

	list, err := store.ListSnapshots(ctx, 2)
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 2 || list[0].TotalParses != 30 || list[1].TotalParses != 20 {
		t.Errorf("ListSnapshots = %+v", list)
	}
}

type staticSource struct{ stats analytics.AggregatedStats }

func (s staticSource) Stats() analytics.AggregatedStats { return s.stats }

func TestStartPeriodicSaveFinalSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	store.StartPeriodicSave(ctx, staticSource{analytics.AggregatedStats{TotalParses: 42}}, time.Hour)
	cancel()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		latest, err := store.LatestSnapshot(context.Background())
		if err == nil && latest != nil {
			if latest.TotalParses != 42 {
				t.Errorf("final snapshot total_parses = %d, want 42", latest.TotalParses)
			}
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("final snapshot was not written after cancel")
}
