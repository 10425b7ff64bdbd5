package config

import (
	"log/slog"
	"strings"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(envMap(nil))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.HTTPAddr != ":8080" || cfg.DBPort != 5432 || cfg.DiasTolerancia != 90 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.StatusParcela != "CONCLUIDO" || cfg.StatusDetalhes != "ACORDO_FIRMADO" {
		t.Fatalf("unexpected status policy: %+v", cfg)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Fatalf("unexpected log level %v", cfg.LogLevel)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if err := cfg.ExigirServidor(); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestFromEnvDSN(t *testing.T) {
	cfg, err := FromEnv(envMap(map[string]string{
		"DB_HOST":             "db",
		"DB_PORT":             "6543",
		"DB_SSL_MODE_DISABLE": "true",
	}))
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	dsn := cfg.DSN()
	if !strings.Contains(dsn, "host=db") || !strings.Contains(dsn, "port=6543") || !strings.HasSuffix(dsn, "sslmode=disable") {
		t.Fatalf("unexpected dsn %q", dsn)
	}

	cfg, _ = FromEnv(envMap(map[string]string{"DATABASE_URL": "postgres://x"}))
	if cfg.DSN() != "postgres://x" {
		t.Fatalf("DATABASE_URL should win")
	}
}

func TestFromEnvInvalid(t *testing.T) {
	cases := []map[string]string{
		{"DB_PORT": "abc"},
		{"ACORDO_DIAS_TOLERANCIA": "-1"},
		{"STATUS_PROCESSO_PARCELA": "JULGADO"},
		{"LOG_LEVEL": "verbose"},
	}
	for _, env := range cases {
		if _, err := FromEnv(envMap(env)); err == nil {
			t.Fatalf("expected error for %v", env)
		}
	}
}
