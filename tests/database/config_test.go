package database_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dhg-platform/taxon/pkg/database"
)

func assertField(t *testing.T, field string, got, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", field, got, want)
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := database.Config{Name: "taxon", User: "taxon"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	assertField(t, "host", cfg.Host, "localhost")
	assertField(t, "port", cfg.Port, 5432)
	assertField(t, "ssl_mode", cfg.SSLMode, "disable")
	assertField(t, "max_open_conns", cfg.MaxOpenConns, 25)
	assertField(t, "max_idle_conns", cfg.MaxIdleConns, 5)
	assertField(t, "conn_max_lifetime", cfg.ConnMaxLifetime, "15m")
	assertField(t, "conn_timeout", cfg.ConnTimeout, "5s")

	assertField(t, "conn_max_lifetime duration", cfg.ConnMaxLifetimeDuration(), 15*time.Minute)
	assertField(t, "conn_timeout duration", cfg.ConnTimeoutDuration(), 5*time.Second)
}

func TestConfigEnvOverrides(t *testing.T) {
	vars := map[string]string{
		"TAXON_TEST_DB_HOST":     "db.internal",
		"TAXON_TEST_DB_PORT":     "5433",
		"TAXON_TEST_DB_NAME":     "envdb",
		"TAXON_TEST_DB_USER":     "envuser",
		"TAXON_TEST_DB_PASSWORD": "envpass",
		"TAXON_TEST_DB_SSL_MODE": "require",
		"TAXON_TEST_DB_MAX_OPEN": "50",
		"TAXON_TEST_DB_MAX_IDLE": "10",
		"TAXON_TEST_DB_LIFETIME": "30m",
		"TAXON_TEST_DB_TIMEOUT":  "10s",
	}
	for k, v := range vars {
		t.Setenv(k, v)
	}

	env := &database.Env{
		Host:            "TAXON_TEST_DB_HOST",
		Port:            "TAXON_TEST_DB_PORT",
		Name:            "TAXON_TEST_DB_NAME",
		User:            "TAXON_TEST_DB_USER",
		Password:        "TAXON_TEST_DB_PASSWORD",
		SSLMode:         "TAXON_TEST_DB_SSL_MODE",
		MaxOpenConns:    "TAXON_TEST_DB_MAX_OPEN",
		MaxIdleConns:    "TAXON_TEST_DB_MAX_IDLE",
		ConnMaxLifetime: "TAXON_TEST_DB_LIFETIME",
		ConnTimeout:     "TAXON_TEST_DB_TIMEOUT",
	}

	var cfg database.Config
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	assertField(t, "host", cfg.Host, "db.internal")
	assertField(t, "port", cfg.Port, 5433)
	assertField(t, "name", cfg.Name, "envdb")
	assertField(t, "user", cfg.User, "envuser")
	assertField(t, "password", cfg.Password, "envpass")
	assertField(t, "ssl_mode", cfg.SSLMode, "require")
	assertField(t, "max_open_conns", cfg.MaxOpenConns, 50)
	assertField(t, "max_idle_conns", cfg.MaxIdleConns, 10)
	assertField(t, "conn_max_lifetime", cfg.ConnMaxLifetime, "30m")
	assertField(t, "conn_timeout", cfg.ConnTimeout, "10s")
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     database.Config
		wantErr string
	}{
		{
			name:    "missing name",
			cfg:     database.Config{User: "taxon"},
			wantErr: "name required",
		},
		{
			name:    "missing user",
			cfg:     database.Config{Name: "taxon"},
			wantErr: "user required",
		},
		{
			name:    "malformed conn_max_lifetime",
			cfg:     database.Config{Name: "taxon", User: "taxon", ConnMaxLifetime: "fifteen"},
			wantErr: "invalid conn_max_lifetime",
		},
		{
			name:    "malformed conn_timeout",
			cfg:     database.Config{Name: "taxon", User: "taxon", ConnTimeout: "soon"},
			wantErr: "invalid conn_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestConfigMerge(t *testing.T) {
	base := database.Config{
		Host:         "localhost",
		Port:         5432,
		Name:         "basedb",
		User:         "baseuser",
		MaxOpenConns: 25,
	}

	base.Merge(&database.Config{
		Host: "db.internal",
		Port: 5433,
		Name: "overlaydb",
	})

	assertField(t, "host", base.Host, "db.internal")
	assertField(t, "port", base.Port, 5433)
	assertField(t, "name", base.Name, "overlaydb")
	assertField(t, "user untouched", base.User, "baseuser")
	assertField(t, "max_open_conns untouched", base.MaxOpenConns, 25)

	// an all-zero overlay must not clobber anything
	base.Merge(&database.Config{})
	assertField(t, "host after empty merge", base.Host, "db.internal")
	assertField(t, "port after empty merge", base.Port, 5433)
}

func TestConfigDsn(t *testing.T) {
	cfg := database.Config{
		Host:     "localhost",
		Port:     5432,
		Name:     "taxon",
		User:     "taxon",
		Password: "taxonpass",
		SSLMode:  "disable",
	}

	want := "host=localhost port=5432 dbname=taxon user=taxon password=taxonpass sslmode=disable"
	if dsn := cfg.Dsn(); dsn != want {
		t.Errorf("dsn:\ngot  %s\nwant %s", dsn, want)
	}
}
