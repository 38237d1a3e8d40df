package config

import (
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %s", cfg.HTTPAddr)
	}
	if cfg.IngestBatchSize != 50 {
		t.Errorf("IngestBatchSize = %d", cfg.IngestBatchSize)
	}
	if cfg.MigrationsDir != "migrations" {
		t.Errorf("MigrationsDir = %s", cfg.MigrationsDir)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("INGEST_BATCH_SIZE", "25")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":9999" {
		t.Errorf("HTTPAddr = %s", cfg.HTTPAddr)
	}
	if cfg.NATSURL != "nats://broker:4222" {
		t.Errorf("NATSURL = %s", cfg.NATSURL)
	}
	if cfg.IngestBatchSize != 25 {
		t.Errorf("IngestBatchSize = %d", cfg.IngestBatchSize)
	}
}

func TestLoadRejectsNonPositiveBatchSize(t *testing.T) {
	t.Setenv("INGEST_BATCH_SIZE", "-3")

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IngestBatchSize != 50 {
		t.Errorf("IngestBatchSize = %d, want default 50", cfg.IngestBatchSize)
	}
}
