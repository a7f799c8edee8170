// graphd-lambda is the Lambda entrypoint, adapting the same chi.Mux
// built for cmd/graphd onto API Gateway v2 HTTP events via
// awslabs/aws-lambda-go-api-proxy. Grounded on the teacher's
// (2lar-b2/backend2) cmd/lambda/main.go cold-start/adapter shape,
// stripped of its Supabase-specific header rewriting (graphd's admin
// surface authenticates directly via pkg/auth.JWTValidator, so no
// upstream-authorizer bypass header is needed).
package main

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"go.uber.org/zap"

	"graphd/infrastructure/config"
	"graphd/infrastructure/di"
	"graphd/interfaces/http/rest"
)

var (
	chiLambda     *chiadapter.ChiLambdaV2
	container     *di.Container
	coldStart     = true
	coldStartTime time.Time
)

func init() {
	coldStartTime = time.Now()
	log.Println("graphd-lambda cold start initiated")

	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	container, err = di.BuildContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to build dependency container: %v", err)
	}
	go container.Publisher.Run(ctx)

	router := rest.NewRouter(*container.Router)
	chiLambda = chiadapter.NewV2(router)

	log.Printf("graphd-lambda cold start completed in %v", time.Since(coldStartTime))
}

// Handler adapts one API Gateway v2 HTTP event through the chi router.
func Handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	resp, err := chiLambda.ProxyWithContextV2(ctx, req)

	if resp.Headers == nil {
		resp.Headers = make(map[string]string)
	}
	if coldStart {
		resp.Headers["X-Cold-Start"] = "true"
		coldStart = false
	} else {
		resp.Headers["X-Cold-Start"] = "false"
	}
	resp.Headers["X-Request-ID"] = req.RequestContext.RequestID

	if container != nil && container.Logger != nil {
		container.Logger.Info("lambda request",
			zap.String("method", req.RequestContext.HTTP.Method),
			zap.String("path", req.RequestContext.HTTP.Path),
			zap.String("request_id", req.RequestContext.RequestID),
			zap.Int("status_code", resp.StatusCode),
		)
	}

	return resp, err
}

func main() {
	lambda.Start(Handler)
}
