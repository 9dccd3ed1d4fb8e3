package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/codequest-labs/ai-tutorial-progress/internal/config"
	"github.com/codequest-labs/ai-tutorial-progress/pkg/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		StoreBackend:    config.BackendSQLite,
		SQLitePath:      filepath.Join(t.TempDir(), "nested", "progress.db"),
		RedisHost:       "localhost",
		RedisPort:       "6379",
		RedisMaxRetries: 1,
	}
}

func TestInitStoreBackend_Memory(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = config.BackendMemory

	backend, err := InitStoreBackend(context.Background(), cfg)
	if err != nil {
		t.Fatalf("InitStoreBackend() error = %v", err)
	}
	if _, ok := backend.(*store.MemoryBackend); !ok {
		t.Errorf("backend = %T, expected *store.MemoryBackend", backend)
	}
}

func TestInitStoreBackend_SQLite(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	backend, err := InitStoreBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("InitStoreBackend() error = %v", err)
	}
	defer backend.Close()

	if err := backend.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, err := backend.Get(ctx, "k")
	if err != nil || got != "v" {
		t.Errorf("Get() = %v, %v, expected v", got, err)
	}
	if _, err := os.Stat(cfg.SQLitePath); err != nil {
		t.Errorf("sqlite file not created: %v", err)
	}
}

func TestInitStoreBackend_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.StoreBackend = config.BackendRedis
	cfg.RedisHost = mr.Host()
	cfg.RedisPort = mr.Port()
	cfg.RedisKeyTTLDays = 7
	ctx := context.Background()

	backend, err := InitStoreBackend(ctx, cfg)
	if err != nil {
		t.Fatalf("InitStoreBackend() error = %v", err)
	}
	defer backend.Close()

	if err := backend.Set(ctx, "aiLearningUserState", "{}"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if !mr.Exists("ai_tutorial:aiLearningUserState") {
		t.Error("expected prefixed key in redis")
	}
	if ttl := mr.TTL("ai_tutorial:aiLearningUserState"); ttl <= 0 {
		t.Errorf("TTL = %v, expected positive", ttl)
	}
}

func TestInitRedisClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig(t)
	cfg.RedisHost = mr.Host()
	cfg.RedisPort = mr.Port()
	cfg.RedisMaxRetries = 0
	mr.Close()

	if _, err := InitRedisClient(context.Background(), cfg); err == nil {
		t.Error("InitRedisClient() expected error for closed server")
	}
}

func TestInitStoreBackend_Unknown(t *testing.T) {
	cfg := testConfig(t)
	cfg.StoreBackend = "etcd"

	if _, err := InitStoreBackend(context.Background(), cfg); err == nil {
		t.Error("InitStoreBackend() expected error for unknown backend")
	}
}

func TestInitCatalog(t *testing.T) {
	base, err := InitCatalog("")
	if err != nil {
		t.Fatalf("InitCatalog() error = %v", err)
	}

	t.Run("extension adds lessons", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "extra.yaml")
		content := `
lessons:
  - id: diffusion-models
    title: Diffusion Models
    required_coins: 40
    checker:
      type: contains
      substrings: ["noise"]
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cat, err := InitCatalog(path)
		if err != nil {
			t.Fatalf("InitCatalog() error = %v", err)
		}
		if cat.Len() != base.Len()+1 {
			t.Errorf("Len() = %v, expected %v", cat.Len(), base.Len()+1)
		}
		if !cat.HasLesson("diffusion-models") {
			t.Error("expected extension lesson to be present")
		}
	})

	t.Run("duplicate id falls back to base", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dup.yaml")
		content := `
lessons:
  - id: intro
    title: Duplicate Intro
    checker:
      type: contains
      substrings: ["x"]
`
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}

		cat, err := InitCatalog(path)
		if err != nil {
			t.Fatalf("InitCatalog() error = %v", err)
		}
		if cat.Len() != base.Len() {
			t.Errorf("Len() = %v, expected %v", cat.Len(), base.Len())
		}
	})

	t.Run("missing file falls back to base", func(t *testing.T) {
		cat, err := InitCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
		if err != nil {
			t.Fatalf("InitCatalog() error = %v", err)
		}
		if cat.Len() != base.Len() {
			t.Errorf("Len() = %v, expected %v", cat.Len(), base.Len())
		}
	})
}

func TestInitRuleEngine(t *testing.T) {
	cat, err := InitCatalog("")
	if err != nil {
		t.Fatalf("InitCatalog() error = %v", err)
	}

	engine, registry, err := InitRuleEngine(cat)
	if err != nil {
		t.Fatalf("InitRuleEngine() error = %v", err)
	}
	if engine == nil {
		t.Fatal("expected engine")
	}
	if registry.Count() != len(cat.Achievements()) {
		t.Errorf("Count() = %v, expected %v", registry.Count(), len(cat.Achievements()))
	}
	registered := make(map[string]bool)
	for _, r := range registry.GetEnabled() {
		registered[r.ID()] = true
	}
	for _, ach := range cat.Achievements() {
		if ach.Enabled && !registered[ach.ID] {
			t.Errorf("rule %s not registered", ach.ID)
		}
	}
}
