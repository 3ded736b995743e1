package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  port: 9000
  writeTimeout: 3s
redis:
  enabled: false
  cacheTTL: 2m
parser:
  maxQueryBytes: 1024
kafka:
  brokers: ["kafka-1:9092", "kafka-2:9092"]
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.WriteTimeout != 3*time.Second {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Redis.Enabled || cfg.Redis.CacheTTL != 2*time.Minute {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if cfg.Parser.MaxQueryBytes != 1024 || cfg.Parser.DefaultSuggestLimit != 8 {
		t.Errorf("parser = %+v", cfg.Parser)
	}
	if len(cfg.Kafka.Brokers) != 2 {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JQ_SERVER_PORT", "7070")
	t.Setenv("JQ_KAFKA_BROKERS", "a:1,b:2,c:3")
	t.Setenv("JQ_REDIS_ENABLED", "false")
	t.Setenv("JQ_LOGGING_LEVEL", "debug")
	t.Setenv("JQ_METRICS_PORT", "not-a-number")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if len(cfg.Kafka.Brokers) != 3 {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Redis.Enabled {
		t.Error("redis should be disabled")
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Metrics.Port != 9090 {
		t.Errorf("unparseable override changed metrics port to %d", cfg.Metrics.Port)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load of a missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load of malformed YAML should fail")
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Server.Port = 0
	cfg.Parser.MaxQueryBytes = 0
	cfg.Analytics.TopN = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate should fail")
	}
	for _, want := range []string{"server.port", "maxQueryBytes", "topN"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestDSN(t *testing.T) {
	dsn := Default().Postgres.DSN()
	for _, part := range []string{"host=localhost", "port=5432", "dbname=jobquery", "sslmode=disable"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("DSN %q missing %s", dsn, part)
		}
	}
}
