package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"translingo/internal/config"
	"translingo/internal/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sample(text string) models.NewTranslation {
	return models.NewTranslation{
		SourceText:     text,
		TranslatedText: text + " (es)",
		SourceLanguage: "auto",
		TargetLanguage: "es",
		Provider:       "mymemory",
	}
}

func ids(records []*models.Translation) []int64 {
	out := make([]int64, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// runStoreContract checks the behaviour every backend shares. The store must
// be empty and use clock for timestamps.
func runStoreContract(t *testing.T, store Store, clock *fakeClock) {
	t.Helper()
	ctx := context.Background()

	first, err := store.Create(ctx, sample("Hello"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if first.ID != 1 {
		t.Fatalf("first id = %d, want 1", first.ID)
	}
	if first.SourceText != "Hello" || first.TranslatedText != "Hello (es)" || first.Provider != "mymemory" {
		t.Fatalf("unexpected record %+v", first)
	}
	if !first.CreatedAt.Equal(clock.Now()) {
		t.Fatalf("createdAt = %v, want %v", first.CreatedAt, clock.Now())
	}

	clock.Advance(time.Second)
	if _, err := store.Create(ctx, sample("Good morning")); err != nil {
		t.Fatalf("create: %v", err)
	}
	// same timestamp as the previous record: ties break by id
	if _, err := store.Create(ctx, sample("Good night")); err != nil {
		t.Fatalf("create: %v", err)
	}

	recent, err := store.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if got := ids(recent); !equalIDs(got, []int64{3, 2, 1}) {
		t.Fatalf("recent ids = %v, want [3 2 1]", got)
	}
	if recent[2].SourceText != "Hello" || !recent[2].CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("stored record changed: %+v", recent[2])
	}

	recent, err = store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if got := ids(recent); !equalIDs(got, []int64{3, 2}) {
		t.Fatalf("recent(2) ids = %v, want [3 2]", got)
	}

	for i := 0; i < 10; i++ {
		clock.Advance(time.Millisecond)
		if _, err := store.Create(ctx, sample("bulk")); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	recent, err = store.Recent(ctx, -5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != DefaultRecentLimit {
		t.Fatalf("default limit returned %d records", len(recent))
	}
	if recent[0].ID != 13 {
		t.Fatalf("newest id = %d, want 13", recent[0].ID)
	}
}

func TestMemoryStoreContract(t *testing.T) {
	store := NewMemoryStore()
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store.now = clock.Now
	runStoreContract(t, store, clock)
}

func TestMemoryStoreEmpty(t *testing.T) {
	recent, err := NewMemoryStore().Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected empty history, got %d", len(recent))
	}
}

func TestMemoryStoreConcurrentCreatesAssignUniqueIDs(t *testing.T) {
	store := NewMemoryStore()
	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Create(context.Background(), sample("x")); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	recent, err := store.Recent(context.Background(), n)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	seen := make(map[int64]bool, n)
	for _, r := range recent {
		if r.ID < 1 || r.ID > n || seen[r.ID] {
			t.Fatalf("unexpected id %d", r.ID)
		}
		seen[r.ID] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d unique ids, want %d", len(seen), n)
	}
}

func TestMemoryStoreReturnsCopies(t *testing.T) {
	store := NewMemoryStore()
	rec, _ := store.Create(context.Background(), sample("Hello"))
	rec.TranslatedText = "mutated"

	recent, _ := store.Recent(context.Background(), 1)
	if recent[0].TranslatedText != "Hello (es)" {
		t.Fatalf("record mutated through returned pointer")
	}
}

func TestSQLiteStoreContract(t *testing.T) {
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: filepath.Join(t.TempDir(), "history.db")},
		},
	}
	db, err := Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	store := NewSQLStore(db, "sqlite3")
	defer store.Close()

	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store.now = clock.Now
	runStoreContract(t, store, clock)
}

func TestMigrateIsIdempotent(t *testing.T) {
	cfg := &config.Config{
		Databases: map[string]config.DatabaseConfig{
			"sqlite3": {DSN: filepath.Join(t.TempDir(), "history.db")},
		},
	}
	db, err := Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()
	for i := 0; i < 2; i++ {
		if err := Migrate(db, "sqlite3"); err != nil {
			t.Fatalf("migrate #%d: %v", i+1, err)
		}
	}
	if err := Migrate(db, "oracle"); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	store, err := New(cfg)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, ok := store.(*MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}

	cfg.BasicConfig.Storage = "sqlite3"
	cfg.Databases["sqlite3"] = config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "h.db")}
	store, err = New(cfg)
	if err != nil {
		t.Fatalf("new sqlite: %v", err)
	}
	defer store.Close()
	if _, ok := store.(*SQLStore); !ok {
		t.Fatalf("expected sql store, got %T", store)
	}

	cfg.BasicConfig.Storage = "cassandra"
	if _, err := New(cfg); !errors.Is(err, ErrUnsupportedBackend) {
		t.Fatalf("expected ErrUnsupportedBackend, got %v", err)
	}
}

func TestWithParseTime(t *testing.T) {
	cases := map[string]string{
		"":                       "parseTime=true",
		"charset=utf8mb4":        "charset=utf8mb4&parseTime=true",
		"parseTime=true&loc=UTC": "parseTime=true&loc=UTC",
	}
	for in, want := range cases {
		if got := withParseTime(in); got != want {
			t.Fatalf("withParseTime(%q) = %q, want %q", in, got, want)
		}
	}
}
