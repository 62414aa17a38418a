package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"translingo/internal/config"
	"translingo/internal/storage"
)

func TestNewDefaultApp(t *testing.T) {
	cfg := config.Default()
	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	if _, ok := a.Store.(*storage.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", a.Store)
	}
	if a.Remote != nil {
		t.Fatalf("external detection should be off by default")
	}

	statuses := a.Registry.Statuses()
	wantNames := []string{"deepl", "llm", "mymemory", "libretranslate"}
	wantAvailable := []bool{false, false, true, true}
	if len(statuses) != len(wantNames) {
		t.Fatalf("got %d providers, want %d", len(statuses), len(wantNames))
	}
	for i, s := range statuses {
		if s.Name != wantNames[i] || s.Available != wantAvailable[i] {
			t.Fatalf("provider %d = %+v, want %s available=%v", i, s, wantNames[i], wantAvailable[i])
		}
	}

	entries := a.Registry.Entries()
	for i, e := range entries {
		if e.RejectUntranslated != (i == len(entries)-1) {
			t.Fatalf("untranslated rejection must be set only on the final provider, entry %d", i)
		}
	}
}

func TestRegistryKeepsFallbacksWithoutProviderSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	body := `{"basic_config":{"storage":"memory"},"providers":{"deepl":{"api_key":""}}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	reg, libre, err := NewRegistry(context.Background(), cfg)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if !libre.Available() {
		t.Fatalf("libretranslate must default to the public instance")
	}
	statuses := reg.Statuses()
	wantNames := []string{"deepl", "llm", "mymemory", "libretranslate"}
	wantAvailable := []bool{false, false, true, true}
	if len(statuses) != len(wantNames) {
		t.Fatalf("got %d providers, want %d", len(statuses), len(wantNames))
	}
	for i, s := range statuses {
		if s.Name != wantNames[i] || s.Available != wantAvailable[i] {
			t.Fatalf("provider %d = %+v, want %s available=%v", i, s, wantNames[i], wantAvailable[i])
		}
	}
	entries := reg.Entries()
	if !entries[len(entries)-1].RejectUntranslated {
		t.Fatalf("final fallback must reject untranslated output")
	}
}

func TestNewAppWithKeysAndExternalDetection(t *testing.T) {
	cfg := config.Default()
	cfg.BasicConfig.ExternalDetection = true
	cfg.Providers[config.ProviderDeepL] = config.ProviderConfig{APIKey: "key:fx"}
	cfg.Providers[config.ProviderLLM] = config.ProviderConfig{APIKey: "sk-test", Kind: "openai", Model: "gpt-4o-mini"}

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()

	for _, s := range a.Registry.Statuses() {
		if !s.Available {
			t.Fatalf("expected %s available", s.Name)
		}
	}
	if a.Remote == nil {
		t.Fatalf("expected remote detector")
	}
}

func TestNewAppWithSQLiteStorage(t *testing.T) {
	cfg := config.Default()
	cfg.BasicConfig.Storage = "sqlite3"
	cfg.Databases["sqlite3"] = config.DatabaseConfig{DSN: filepath.Join(t.TempDir(), "history.db")}

	a, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	if _, ok := a.Store.(*storage.SQLStore); !ok {
		t.Fatalf("expected sql store, got %T", a.Store)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestRouterServesHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	defer a.Close()
	a.Logger.SetLevel(logrus.PanicLevel)

	rec := httptest.NewRecorder()
	a.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("health status %d: %s", rec.Code, rec.Body.String())
	}
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(config.BasicConfig{LogLevel: "debug", LogFormat: "json"})
	if err != nil {
		t.Fatalf("new logger: %v", err)
	}
	if logger.GetLevel() != logrus.DebugLevel {
		t.Fatalf("level = %s", logger.GetLevel())
	}
	if _, ok := logger.Formatter.(*logrus.JSONFormatter); !ok {
		t.Fatalf("expected json formatter, got %T", logger.Formatter)
	}

	if _, err := NewLogger(config.BasicConfig{LogLevel: "chatty"}); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}
