package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("expected driver %q, got %q", DriverPostgres, cfg.Database.Driver)
	}
	if cfg.Evaluation.WeightStrictMode {
		t.Error("weight strict mode should be off by default")
	}
	if cfg.Evaluation.MaxTotalWeight != 100 {
		t.Errorf("expected max total weight 100, got %v", cfg.Evaluation.MaxTotalWeight)
	}
	if cfg.Evaluation.ReorderStrictParent {
		t.Error("strict parent check should be off by default")
	}
	if cfg.Server.TimeoutRead != 15*time.Second {
		t.Errorf("expected read timeout 15s, got %v", cfg.Server.TimeoutRead)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_DRIVER", "MEMORY")
	t.Setenv("WEIGHT_STRICT_MODE", "true")
	t.Setenv("WEIGHT_MAX_TOTAL", "120.5")
	t.Setenv("REORDER_STRICT_PARENT", "1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_DURATION", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Driver != DriverMemory {
		t.Errorf("expected driver %q, got %q", DriverMemory, cfg.Database.Driver)
	}
	if !cfg.Evaluation.WeightStrictMode || !cfg.Evaluation.ReorderStrictParent {
		t.Error("expected strict flags to be enabled")
	}
	if cfg.Evaluation.MaxTotalWeight != 120.5 {
		t.Errorf("expected max total weight 120.5, got %v", cfg.Evaluation.MaxTotalWeight)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("unexpected origins: %v", cfg.CORS.AllowedOrigins)
	}
	if cfg.RateLimit.Duration != 30*time.Second {
		t.Errorf("expected 30s, got %v", cfg.RateLimit.Duration)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"missing jwt secret", func(c *Config) { c.JWT.Secret = "" }, true},
		{"unknown driver", func(c *Config) { c.Database.Driver = "mysql" }, true},
		{"memory in production", func(c *Config) {
			c.Database.Driver = DriverMemory
			c.App.Env = "production"
		}, true},
		{"missing password in production", func(c *Config) {
			c.App.Env = "production"
			c.Database.Password = ""
		}, true},
		{"non-positive max weight", func(c *Config) { c.Evaluation.MaxTotalWeight = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Database:   DatabaseConfig{Driver: DriverPostgres, Password: "secret"},
				JWT:        JWTConfig{Secret: "secret"},
				App:        AppConfig{Env: "development"},
				Evaluation: EvaluationConfig{MaxTotalWeight: 100},
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
