//go:build wireinject
// +build wireinject

// This file is never part of a normal build (see the wireinject build
// tag). It documents the provider graph BuildContainer's hand-written
// sequence follows, the same way the teacher's (2lar-b2/backend2)
// infrastructure/di/wire.go guards its own google/wire injector behind
// this tag and checks in no generated wire_gen.go. Run
// `wire ./infrastructure/di` to regenerate a real injector from this
// set if the hand-written BuildContainer ever drifts from it.
package di

import (
	"context"

	"github.com/google/wire"

	"graphd/infrastructure/config"
)

// SuperSet lists every provider BuildContainer calls, in the shape
// `wire` needs to derive the same construction order by itself.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideCache,
	ProvideArbiter,
	ProvideProcCtx,
	ProvideDynamoDBClient,
	ProvidePrimitiveStore,
	ProvideConnectionStore,
	ProvideEventBridgeClient,
	ProvideEventPublisher,
	ProvideMetricsRegistry,
	ProvideCloudWatchClient,
	ProvideCloudWatchExporter,
	ProvideTracer,
	ProvideJWTValidator,
	ProvideRateLimiter,
	ProvideAPIGatewayManagementClient,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer is the wire-generated entry point this file
// declares but never implements; `wire` fills in its body on
// `go generate`. BuildContainer in wire.go is the hand-written
// equivalent actually compiled into graphd.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil
}
