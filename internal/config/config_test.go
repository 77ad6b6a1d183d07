package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(*testing.T, *Config)
	}{
		{
			name: "default values",
			env:  map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "8080" {
					t.Errorf("expected port 8080, got %s", cfg.Port)
				}
				if cfg.LogLevel != "info" {
					t.Errorf("expected log level info, got %s", cfg.LogLevel)
				}
				if cfg.FUBBaseURL != "https://api.followupboss.com/v1" {
					t.Errorf("unexpected FUB base URL: %s", cfg.FUBBaseURL)
				}
				if cfg.ScheduleHour != 4 {
					t.Errorf("expected schedule hour 4, got %d", cfg.ScheduleHour)
				}
				if cfg.ScheduleTZ != time.UTC {
					t.Errorf("expected UTC schedule timezone, got %v", cfg.ScheduleTZ)
				}
				if cfg.SelectionsFile != "selections.json" {
					t.Errorf("unexpected selections file: %s", cfg.SelectionsFile)
				}
			},
		},
		{
			name: "custom values",
			env: map[string]string{
				"PORT":            "9000",
				"LOG_LEVEL":       "debug",
				"FUB_API_KEY":     "fka_test",
				"FUB_SYSTEM_KEY":  "syskey",
				"SCHEDULE_HOUR":   "6",
				"SCHEDULE_TZ":     "America/New_York",
				"ALLOWED_ORIGINS": "http://example.com, http://test.com",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Port != "9000" {
					t.Errorf("expected port 9000, got %s", cfg.Port)
				}
				if cfg.FUBAPIKey != "fka_test" {
					t.Errorf("expected API key fka_test, got %s", cfg.FUBAPIKey)
				}
				if cfg.ScheduleHour != 6 {
					t.Errorf("expected schedule hour 6, got %d", cfg.ScheduleHour)
				}
				if cfg.ScheduleTZ.String() != "America/New_York" {
					t.Errorf("expected America/New_York, got %v", cfg.ScheduleTZ)
				}
				if len(cfg.AllowedOrigins) != 2 {
					t.Errorf("expected 2 allowed origins, got %d", len(cfg.AllowedOrigins))
				}
				if cfg.AllowedOrigins[1] != "http://test.com" {
					t.Errorf("expected origins trimmed, got %q", cfg.AllowedOrigins[1])
				}
			},
		},
		{
			name: "invalid SCHEDULE_HOUR",
			env: map[string]string{
				"SCHEDULE_HOUR": "invalid",
			},
			wantErr: true,
		},
		{
			name: "SCHEDULE_HOUR out of range",
			env: map[string]string{
				"SCHEDULE_HOUR": "24",
			},
			wantErr: true,
		},
		{
			name: "invalid SCHEDULE_TZ",
			env: map[string]string{
				"SCHEDULE_TZ": "Not/AZone",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Clear environment
			os.Clearenv()

			// Set test environment variables
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Load config
			cfg, err := Load()

			// Check error
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			// Run custom checks
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}
