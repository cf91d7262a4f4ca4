// Package main implements the graph-change fanout Lambda. It consumes the
// domain events published to EventBridge and pushes a graph-changed message
// to every live WebSocket the affected user holds.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/infrastructure/messaging/websocket"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"go.uber.org/zap"
)

var (
	notifier ports.GraphNotifier
	logger   *zap.Logger
)

// eventDetail covers the fields shared by every published domain event that
// should trigger a client refresh.
type eventDetail struct {
	ProjectID string `json:"project_id"`
	UserID    string `json:"user_id"`
	EventType string `json:"event_type"`
}

func init() {
	var err error
	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	endpoint := os.Getenv("WEBSOCKET_ENDPOINT")
	if endpoint == "" {
		logger.Fatal("WEBSOCKET_ENDPOINT is required")
	}
	connectionsTable := os.Getenv("CONNECTIONS_TABLE")
	if connectionsTable == "" {
		connectionsTable = "snipgraph-connections"
	}

	notifier = websocket.NewNotifier(cfg, endpoint, connectionsTable, logger)
}

func handler(ctx context.Context, event events.CloudWatchEvent) error {
	var detail eventDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return fmt.Errorf("failed to decode event detail: %w", err)
	}

	if detail.UserID == "" || detail.ProjectID == "" {
		// Events without a user scope (project deletions carry the user in
		// the aggregate) cannot be routed to a socket.
		logger.Debug("Skipping event without user scope",
			zap.String("type", event.DetailType),
		)
		return nil
	}

	reason := detail.EventType
	if reason == "" {
		reason = event.DetailType
	}

	if err := notifier.NotifyGraphChanged(ctx, detail.UserID, detail.ProjectID, reason); err != nil {
		logger.Warn("Failed to notify sockets",
			zap.String("userID", detail.UserID),
			zap.String("projectID", detail.ProjectID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func main() {
	lambda.Start(handler)
}
