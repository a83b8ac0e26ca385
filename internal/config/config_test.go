package config

import "testing"

func TestDatabaseConfigDSN(t *testing.T) {
	full := DatabaseConfig{
		URL:  "postgres://user:pass@db:5432/study",
		Host: "ignored",
	}
	if got := full.DSN(); got != full.URL {
		t.Errorf("DATABASE_URL should win: got %q", got)
	}

	assembled := DatabaseConfig{
		Host:    "db.internal",
		Port:    5433,
		Name:    "virads",
		User:    "reader",
		SSLMode: "require",
	}
	want := "host=db.internal port=5433 sslmode=require dbname=virads user=reader"
	if got := assembled.DSN(); got != want {
		t.Errorf("assembled DSN = %q, want %q", got, want)
	}

	if got := (DatabaseConfig{Port: 5432, SSLMode: "disable"}).DSN(); got != "" {
		t.Errorf("unconfigured database should yield empty DSN, got %q", got)
	}
}

func TestLoadRejectsBadAnalysisDefaults(t *testing.T) {
	t.Setenv("VIRADS_CUTOFF", "7")
	if _, err := Load(); err == nil {
		t.Error("expected out-of-range VIRADS_CUTOFF to fail validation")
	}
}
