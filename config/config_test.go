package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MemoryDrivers(t *testing.T) {
	t.Setenv("AUTH_DRIVER", "memory")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, AuthMemory, cfg.Firebase.AuthDriver)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, "users", cfg.Store.Collection)
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.Equal(t, float64(1), cfg.RateLimit.RPS, "invalid values fall back to the default")
	assert.Equal(t, 24*time.Hour, cfg.Redis.DraftTTL)
}

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: "8080"},
		Firebase:  FirebaseConfig{AuthDriver: AuthFirebase, CredentialsPath: "/secrets/sa.json"},
		Store:     StoreConfig{Driver: StoreFirestore, Collection: "users"},
		Session:   SessionConfig{TTL: 24 * time.Hour},
		RateLimit: RateLimitConfig{RPS: 1, Burst: 5},
		App:       AppConfig{Environment: "production"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing credentials", func(c *Config) { c.Firebase.CredentialsPath = "" }, "FIREBASE_CREDENTIALS_PATH"},
		{"memory auth in production", func(c *Config) { c.Firebase.AuthDriver = AuthMemory }, "not allowed in production"},
		{"memory store in production", func(c *Config) { c.Store.Driver = StoreMemory }, "not allowed in production"},
		{"postgres without dsn", func(c *Config) { c.Store.Driver = StorePostgres }, "DB_DSN"},
		{"unknown store", func(c *Config) { c.Store.Driver = "mongo" }, "unknown STORE_DRIVER"},
		{"session too short", func(c *Config) { c.Session.TTL = time.Minute }, "SESSION_TTL"},
		{"session too long", func(c *Config) { c.Session.TTL = 30 * 24 * time.Hour }, "SESSION_TTL"},
		{"zero burst", func(c *Config) { c.RateLimit.Burst = 0 }, "RATE_LIMIT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
