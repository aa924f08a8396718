package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("STARTING_BALANCE", "")
	t.Setenv("MIN_ENTRY_FEE", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, StorageMemory, cfg.StorageBackend)
	assert.Equal(t, int64(100), cfg.StartingBalance)
	assert.Equal(t, int64(10), cfg.MinEntryFee)
	assert.Equal(t, int64(10), cfg.MinTopUp)
	assert.Equal(t, int64(20), cfg.PlatformFeePercent)
	assert.Equal(t, 30*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STARTING_BALANCE", "250")
	t.Setenv("MIN_ENTRY_FEE", "25")
	t.Setenv("RECONCILE_INTERVAL", "5s")
	t.Setenv("STORAGE_BACKEND", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432")
	t.Setenv("DATABASE_NAME", "arena")
	t.Setenv("ADMIN_USER_IDS", " ops-1, ,ops-2 ")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(250), cfg.StartingBalance)
	assert.Equal(t, int64(25), cfg.MinEntryFee)
	assert.Equal(t, 5*time.Second, cfg.ReconcileInterval)
	assert.Equal(t, StoragePostgres, cfg.StorageBackend)
	assert.Equal(t, "postgres://u:p@localhost:5432/arena?sslmode=disable", cfg.GetDatabaseURL())
	assert.Equal(t, []string{"ops-1", "ops-2"}, cfg.AdminUserIDs)
}

func TestLoad_InvalidNumberFallsBackToDefault(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("STORAGE_BACKEND", "")
	t.Setenv("STARTING_BALANCE", "lots")

	cfg, err := load()
	require.NoError(t, err)
	assert.Equal(t, int64(100), cfg.StartingBalance)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "test config is valid", mutate: func(c *Config) {}},
		{
			name:    "postgres needs a URL",
			mutate:  func(c *Config) { c.StorageBackend = StoragePostgres },
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "redis needs a URL",
			mutate:  func(c *Config) { c.StorageBackend = StorageRedis },
			wantErr: "REDIS_URL is required",
		},
		{
			name:    "unknown backend",
			mutate:  func(c *Config) { c.StorageBackend = "etcd" },
			wantErr: "unknown STORAGE_BACKEND",
		},
		{
			name:    "fee percent out of range",
			mutate:  func(c *Config) { c.PlatformFeePercent = 100 },
			wantErr: "PLATFORM_FEE_PERCENT",
		},
		{
			name:    "non-positive minimum entry fee",
			mutate:  func(c *Config) { c.MinEntryFee = 0 },
			wantErr: "MIN_ENTRY_FEE",
		},
		{
			name: "jwt secret required outside test",
			mutate: func(c *Config) {
				c.Environment = "production"
				c.JWTSecret = ""
			},
			wantErr: "JWT_SECRET is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
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

func TestSetTestConfig(t *testing.T) {
	defer ResetConfig()

	custom := NewTestConfig()
	custom.StartingBalance = 42
	SetTestConfig(custom)

	assert.Same(t, custom, Get())
	assert.Equal(t, int64(42), Get().StartingBalance)
}
