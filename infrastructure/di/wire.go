// Container composition. The teacher's (2lar-b2/backend2)
// infrastructure/di/wire.go guards a google/wire injector behind a
// "//go:build wireinject" tag and checks in no generated wire_gen.go;
// graphd keeps that same shape in spirit but skips the code-generation
// step entirely, per internal/procctx's own preference for a
// hand-written constructor. BuildContainer is that hand-written
// injector: it calls the Provide* functions in dependency order, the
// same sequence google/wire would have produced.
package di

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"graphd/infrastructure/config"
	"graphd/infrastructure/eventbus/eventbridge"
	"graphd/infrastructure/metrics"
	dynamostore "graphd/infrastructure/store/dynamodb"
	"graphd/infrastructure/tracing"
	"graphd/interfaces/http/rest"
	"graphd/interfaces/http/rest/handlers"
	"graphd/interfaces/ws"
	"graphd/internal/procctx"
	"graphd/internal/storable"
	"graphd/internal/xstate"
	"graphd/pkg/auth"
)

// Container holds every long-lived handle a graphd process needs,
// assembled once at startup and threaded explicitly from there on —
// no package-level globals, matching internal/procctx's own rule.
type Container struct {
	Config  *config.Config
	Logger  *zap.Logger
	ProcCtx *procctx.Context
	Arbiter *xstate.Arbiter
	Cache   *storable.Cache

	Store           *dynamostore.Store
	ConnectionStore *dynamostore.ConnectionStore
	Publisher       *eventbridge.Publisher
	Metrics         *metrics.Registry
	CloudWatch      *metrics.CloudWatchExporter
	Tracer          *tracing.Tracer

	Validator *auth.JWTValidator
	Limiter   auth.RateLimiter
	Pusher    *ws.Pusher

	Router *rest.Deps
}

// BuildContainer assembles a Container from cfg, in the order each
// provider's dependencies become available. Callers (cmd/graphd,
// cmd/graphd-lambda) own the Container's lifetime: Publisher.Run must
// be started in a goroutine and Publisher.Close called on shutdown.
func BuildContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	logger, err := ProvideLogger(cfg)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	awsCfg, err := ProvideAWSConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	cache := ProvideCache(cfg, logger)
	arbiter := ProvideArbiter()
	pc := ProvideProcCtx(cache, logger)

	ddbClient := ProvideDynamoDBClient(awsCfg)
	store := ProvidePrimitiveStore(ddbClient, cfg, logger)
	connStore := ProvideConnectionStore(ddbClient, cfg, logger)

	ebClient := ProvideEventBridgeClient(awsCfg)
	publisher := ProvideEventPublisher(ebClient, cfg, logger)

	registry := ProvideMetricsRegistry()
	cwClient := ProvideCloudWatchClient(awsCfg)
	cwExporter := ProvideCloudWatchExporter(cwClient, logger)

	tracer := ProvideTracer()

	validator := ProvideJWTValidator(cfg)
	limiter := ProvideRateLimiter(cfg)

	agmClient, err := ProvideAPIGatewayManagementClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("build apigatewaymanagementapi client: %w", err)
	}
	var pusher *ws.Pusher
	if agmClient != nil {
		pusher = ws.New(agmClient, connStore, logger)
	}

	deps := &rest.Deps{
		Logger:    logger,
		Validator: validator,
		Limiter:   limiter,
		Debug:     handlers.DebugHandler{Cache: cache, Arbiter: arbiter},
		DebugMode: cfg.IsDevelopment(),
	}

	return &Container{
		Config: cfg, Logger: logger, ProcCtx: pc, Arbiter: arbiter, Cache: cache,
		Store: store, ConnectionStore: connStore, Publisher: publisher,
		Metrics: registry, CloudWatch: cwExporter, Tracer: tracer,
		Validator: validator, Limiter: limiter, Pusher: pusher,
		Router: deps,
	}, nil
}

// Shutdown stops background workers started on Container's behalf. It
// does not close AWS SDK clients, which need no explicit teardown.
func (c *Container) Shutdown() {
	if c.Publisher != nil {
		c.Publisher.Close()
	}
	_ = c.Logger.Sync()
}
