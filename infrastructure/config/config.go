// Package config loads graphd's process configuration from environment
// variables, in the teacher's getEnv/getEnvInt/getEnvBool idiom
// (2lar-b2/backend2's infrastructure/config/config.go), retargeted from
// the teacher's graph-API knobs to the engine's cache/xstate/cost-budget
// knobs plus the same AWS/admin-surface knobs where graphd still uses
// them (DynamoDB-backed primitive store, EventBridge fan-out, admin HTTP,
// WS push, Lambda cold start).
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all process configuration.
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// AWS configuration
	AWSRegion     string
	DynamoDBTable string
	EventBusName  string

	// Lambda configuration
	IsLambda           bool
	LambdaFunctionName string
	ColdStartTimeout   int // milliseconds

	// WebSocket configuration (deferred-query-ready push, interfaces/ws)
	WebSocketEndpoint string
	ConnectionsTable  string

	// Logging
	LogLevel string

	// Authentication (admin surface)
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool
	EnableCORS    bool

	// Engine knobs (graphd-specific)
	CacheMaxBytes      int64 // internal/storable.Cache byte budget
	XStateQueueDepth   int   // internal/xstate pending-ticket queue depth
	DefaultCostBudget  int64 // internal/iterator.Budget default per request
	OutstandingWindow  int   // internal/loaderlang.Window ceiling override, 0 = default
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		AWSRegion:     getEnv("AWS_REGION", "us-west-2"),
		DynamoDBTable: getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", "graphd-primitives")),
		EventBusName:  getEnv("EVENT_BUS_NAME", "graphd-events"),

		IsLambda:           getEnvBool("IS_LAMBDA", false),
		LambdaFunctionName: getEnv("AWS_LAMBDA_FUNCTION_NAME", ""),
		ColdStartTimeout:   getEnvInt("COLD_START_TIMEOUT", 3000),

		WebSocketEndpoint: getEnv("WEBSOCKET_ENDPOINT", ""),
		ConnectionsTable:  getEnv("CONNECTIONS_TABLE", "graphd-connections"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "graphd"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", false),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		CacheMaxBytes:     int64(getEnvInt("CACHE_MAX_BYTES", 256<<20)),
		XStateQueueDepth:  getEnvInt("XSTATE_QUEUE_DEPTH", 4096),
		DefaultCostBudget: int64(getEnvInt("DEFAULT_COST_BUDGET", 1_000_000)),
		OutstandingWindow: getEnvInt("OUTSTANDING_WINDOW", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig for backwards compatibility.
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present.
func (c *Config) Validate() error {
	if c.Environment == "production" {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.DynamoDBTable == "" {
			return fmt.Errorf("DYNAMODB_TABLE is required")
		}
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required")
		}
	}
	if c.CacheMaxBytes <= 0 {
		return fmt.Errorf("CACHE_MAX_BYTES must be positive")
	}
	if c.DefaultCostBudget <= 0 {
		return fmt.Errorf("DEFAULT_COST_BUDGET must be positive")
	}
	return nil
}

// IsDevelopment checks if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
