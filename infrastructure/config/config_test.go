package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		orig, had := os.LookupEnv(k)
		os.Unsetenv(k)
		t.Cleanup(func() {
			if had {
				os.Setenv(k, orig)
			}
		})
	}
}

func TestLoadConfigAppliesDefaults(t *testing.T) {
	clearEnv(t, "ENVIRONMENT", "JWT_SECRET", "DYNAMODB_TABLE", "EVENT_BUS_NAME", "CACHE_MAX_BYTES")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, int64(256<<20), cfg.CacheMaxBytes)
	assert.True(t, cfg.IsDevelopment())
}

func TestValidateRequiresJWTSecretInProduction(t *testing.T) {
	cfg := &Config{Environment: "production", DynamoDBTable: "t", EventBusName: "b", CacheMaxBytes: 1, DefaultCostBudget: 1}
	err := cfg.Validate()
	assert.Error(t, err)

	cfg.JWTSecret = "secret"
	assert.NoError(t, cfg.Validate())
}

func TestValidateRejectsNonPositiveCacheBudget(t *testing.T) {
	cfg := &Config{Environment: "development", CacheMaxBytes: 0, DefaultCostBudget: 1}
	assert.Error(t, cfg.Validate())
}

func TestGetEnvBoolAcceptsCommonTruthyForms(t *testing.T) {
	for _, v := range []string{"true", "1", "yes"} {
		os.Setenv("GRAPHD_TEST_BOOL", v)
		assert.True(t, getEnvBool("GRAPHD_TEST_BOOL", false))
	}
	os.Unsetenv("GRAPHD_TEST_BOOL")
	assert.True(t, getEnvBool("GRAPHD_TEST_BOOL", true))
}
