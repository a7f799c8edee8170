// Package ws pushes "your deferred query is ready to resume"
// notifications to subscribed WebSocket connections via
// apigatewaymanagementapi, grounded on the teacher's (2lar-b2/backend2)
// cmd/ws-send-message/main.go connection-broadcast shape, retargeted
// from domain-event fan-out onto C6's suspend/resume transitions. This
// is a convenience layer over cursor-based resumption (spec.md §4.8),
// never a replacement for it: a client that never receives (or never
// subscribes to) a push can still resume by replaying its cursor.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"go.uber.org/zap"
)

// ConnectionStore resolves a query's subscribed connection ids. graphd
// itself does not own WebSocket connection bookkeeping (that lives in
// whatever gateway-facing store the deployment wires up); this is the
// narrow read interface the pusher needs from it.
type ConnectionStore interface {
	ConnectionsFor(ctx context.Context, queryID string) ([]string, error)
	RemoveConnection(ctx context.Context, connectionID string) error
}

// ReadyNotification is the payload pushed when a deferred query
// (internal/engine.DeferredBase) becomes resumable.
type ReadyNotification struct {
	Type    string `json:"type"`
	QueryID string `json:"query_id"`
	Cursor  string `json:"cursor,omitempty"`
}

// Pusher sends ReadyNotifications to a query's subscribed connections.
type Pusher struct {
	client *apigatewaymanagementapi.Client
	conns  ConnectionStore
	logger *zap.Logger
}

// New builds a Pusher against the API Gateway Management API endpoint
// already baked into client (one client per WebSocket API stage, same
// as the teacher's per-endpoint client construction).
func New(client *apigatewaymanagementapi.Client, conns ConnectionStore, logger *zap.Logger) *Pusher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pusher{client: client, conns: conns, logger: logger}
}

// NotifyReady pushes a ready notification to every connection currently
// subscribed to queryID. Delivery is best-effort per connection: a gone
// connection is logged and cleaned up, never surfaced as a caller error,
// since the engine's own cursor stays the resumption path of record.
func (p *Pusher) NotifyReady(ctx context.Context, queryID, cursorStr string) error {
	connIDs, err := p.conns.ConnectionsFor(ctx, queryID)
	if err != nil {
		return fmt.Errorf("resolve connections for query %s: %w", queryID, err)
	}
	if len(connIDs) == 0 {
		return nil
	}

	body, err := json.Marshal(ReadyNotification{Type: "query_ready", QueryID: queryID, Cursor: cursorStr})
	if err != nil {
		return fmt.Errorf("marshal ready notification: %w", err)
	}

	var sent, failed int
	for _, connID := range connIDs {
		if err := p.send(ctx, connID, body); err != nil {
			failed++
			p.logger.Warn("ws push failed", zap.String("connection_id", connID), zap.Error(err))
			continue
		}
		sent++
	}
	if sent == 0 && failed > 0 {
		return fmt.Errorf("all %d ws pushes failed for query %s", failed, queryID)
	}
	return nil
}

func (p *Pusher) send(ctx context.Context, connID string, body []byte) error {
	_, err := p.client.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connID),
		Data:         body,
	})
	if err != nil {
		var gone *apigwtypes.GoneException
		if errors.As(err, &gone) {
			return p.conns.RemoveConnection(ctx, connID)
		}
		return err
	}
	return nil
}
