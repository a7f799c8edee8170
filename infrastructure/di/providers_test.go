// Package di provider tests, grounded on the teacher's sibling module
// (2lar-b2/backend) internal/di/container_test.go: plain testing.T,
// no testify, exercising the provider functions that don't require a
// live AWS endpoint (ProvideAWSConfig and the client constructors are
// left untested here for the same reason the teacher's own
// infrastructure/persistence layer carries no unit tests of its own —
// they are thin SDK wrappers, verified by the integration surface).
package di

import (
	"context"
	"testing"

	"graphd/infrastructure/config"
)

func testConfig() *config.Config {
	return &config.Config{
		ServerAddress: ":8080",
		Environment:   "production",
		CacheMaxBytes: 1 << 20,
	}
}

func TestProvideCacheAndArbiter(t *testing.T) {
	cfg := testConfig()
	logger, err := ProvideLogger(&config.Config{Environment: "development"})
	if err != nil {
		t.Fatalf("ProvideLogger: %v", err)
	}

	cache := ProvideCache(cfg, logger)
	if cache == nil {
		t.Fatal("ProvideCache returned nil")
	}

	arbiter := ProvideArbiter()
	if arbiter == nil {
		t.Fatal("ProvideArbiter returned nil")
	}
	if arbiter.Len() != 0 {
		t.Errorf("new arbiter should have an empty queue, got length %d", arbiter.Len())
	}

	pc := ProvideProcCtx(cache, logger)
	if pc.Cache != cache {
		t.Error("ProvideProcCtx did not wire the given cache through")
	}
}

func TestProvideJWTValidatorDisabledWithoutSecret(t *testing.T) {
	cfg := testConfig()
	cfg.JWTSecret = ""
	if v := ProvideJWTValidator(cfg); v != nil {
		t.Error("expected a nil validator when no JWT secret is configured")
	}

	cfg.JWTSecret = "s3cr3t"
	cfg.JWTIssuer = "graphd"
	if v := ProvideJWTValidator(cfg); v == nil {
		t.Error("expected a non-nil validator once a JWT secret is configured")
	}
}

func TestProvideRateLimiterDisabledInDevelopment(t *testing.T) {
	cfg := testConfig()
	cfg.Environment = "development"
	if l := ProvideRateLimiter(cfg); l != nil {
		t.Error("expected rate limiting disabled in development")
	}

	cfg.Environment = "production"
	limiter := ProvideRateLimiter(cfg)
	if limiter == nil {
		t.Fatal("expected a rate limiter in production")
	}
	ok, err := limiter.Allow(context.Background(), "test-caller")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if !ok {
		t.Error("first request under a fresh limiter should be allowed")
	}
}
