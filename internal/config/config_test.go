package config

import (
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/cinelog")
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.TokenTTLHours != 24 {
		t.Errorf("TokenTTLHours = %d, want 24", cfg.TokenTTLHours)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 2 {
		t.Errorf("pool bounds = (%d, %d), want (20, 2)", cfg.DBMaxConns, cfg.DBMinConns)
	}
	if cfg.MetadataURL != "" {
		t.Errorf("MetadataURL = %q, want empty default", cfg.MetadataURL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_URL", "postgres://localhost/cinelog")
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PORT", "9999")
	t.Setenv("TOKEN_TTL_HOURS", "6")
	t.Setenv("DB_MAX_CONNS", "5")
	t.Setenv("DB_MIN_CONNS", "1")
	t.Setenv("METADATA_URL", "http://localhost:7000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9999" || cfg.TokenTTLHours != 6 {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.DBMaxConns != 5 || cfg.DBMinConns != 1 {
		t.Errorf("pool overrides not applied: %+v", cfg)
	}
	if cfg.MetadataURL != "http://localhost:7000" {
		t.Errorf("MetadataURL = %q", cfg.MetadataURL)
	}
}

func TestLoadValidation(t *testing.T) {
	cases := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing db url",
			env:     map[string]string{"JWT_SECRET": "secret"},
			wantErr: "DB_URL",
		},
		{
			name:    "missing jwt secret",
			env:     map[string]string{"DB_URL": "postgres://localhost/x"},
			wantErr: "JWT_SECRET",
		},
		{
			name: "non-positive ttl",
			env: map[string]string{
				"DB_URL": "postgres://localhost/x", "JWT_SECRET": "secret",
				"TOKEN_TTL_HOURS": "0",
			},
			wantErr: "TOKEN_TTL_HOURS",
		},
		{
			name: "zero max conns",
			env: map[string]string{
				"DB_URL": "postgres://localhost/x", "JWT_SECRET": "secret",
				"DB_MAX_CONNS": "0",
			},
			wantErr: "DB_MAX_CONNS",
		},
		{
			name: "min above max",
			env: map[string]string{
				"DB_URL": "postgres://localhost/x", "JWT_SECRET": "secret",
				"DB_MAX_CONNS": "2", "DB_MIN_CONNS": "5",
			},
			wantErr: "DB_MIN_CONNS",
		},
		{
			name: "negative statement cache",
			env: map[string]string{
				"DB_URL": "postgres://localhost/x", "JWT_SECRET": "secret",
				"DB_STATEMENT_CACHE_CAPACITY": "-1",
			},
			wantErr: "DB_STATEMENT_CACHE_CAPACITY",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Clear the required vars so only tc.env applies.
			t.Setenv("DB_URL", "")
			t.Setenv("JWT_SECRET", "")
			for key, val := range tc.env {
				t.Setenv(key, val)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}
