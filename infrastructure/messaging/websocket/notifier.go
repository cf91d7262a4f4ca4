package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"snipgraph-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi"
	apigwtypes "github.com/aws/aws-sdk-go-v2/service/apigatewaymanagementapi/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Notifier implements ports.GraphNotifier over API Gateway WebSocket
// connections. Open canvases register their connection id in a dedicated
// connections table (written by the connect/disconnect handlers); a graph
// change fans one small "refresh" message out to every connection of the
// owning user, and the client reacts by re-reading and reconciling.
//
// Failures here never fail the triggering operation; the client falls back
// to its next poll.
type Notifier struct {
	apiClient        *apigatewaymanagementapi.Client
	dynamoClient     *dynamodb.Client
	connectionsTable string
	logger           *zap.Logger
}

// NewNotifier creates a Notifier. endpoint is the API Gateway management
// endpoint of the WebSocket stage.
func NewNotifier(cfg aws.Config, endpoint, connectionsTable string, logger *zap.Logger) ports.GraphNotifier {
	apiClient := apigatewaymanagementapi.NewFromConfig(cfg, func(o *apigatewaymanagementapi.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return &Notifier{
		apiClient:        apiClient,
		dynamoClient:     dynamodb.NewFromConfig(cfg),
		connectionsTable: connectionsTable,
		logger:           logger,
	}
}

// graphChangedMessage is the wire format pushed to canvas clients
type graphChangedMessage struct {
	Type      string `json:"type"`
	ProjectID string `json:"project_id"`
	Reason    string `json:"reason"`
	Timestamp int64  `json:"timestamp"`
}

// NotifyGraphChanged pushes a refresh hint to every open canvas of the user
func (n *Notifier) NotifyGraphChanged(ctx context.Context, userID, projectID, reason string) error {
	connectionIDs, err := n.connectionsForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(connectionIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(graphChangedMessage{
		Type:      "graph-changed",
		ProjectID: projectID,
		Reason:    reason,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	sent, failed := 0, 0
	for _, connectionID := range connectionIDs {
		if err := n.post(ctx, connectionID, payload); err != nil {
			n.logger.Warn("Failed to notify connection",
				zap.String("connectionID", connectionID),
				zap.Error(err),
			)
			failed++
			continue
		}
		sent++
	}

	n.logger.Debug("Graph change notified",
		zap.String("userID", userID),
		zap.String("projectID", projectID),
		zap.String("reason", reason),
		zap.Int("sent", sent),
		zap.Int("failed", failed),
	)

	if sent == 0 && failed > 0 {
		return fmt.Errorf("all %d notification sends failed", failed)
	}
	return nil
}

func (n *Notifier) post(ctx context.Context, connectionID string, payload []byte) error {
	_, err := n.apiClient.PostToConnection(ctx, &apigatewaymanagementapi.PostToConnectionInput{
		ConnectionId: aws.String(connectionID),
		Data:         payload,
	})
	if err != nil {
		var gone *apigwtypes.GoneException
		if errors.As(err, &gone) {
			// Client disconnected without a clean disconnect event.
			n.removeStaleConnection(ctx, connectionID)
			return nil
		}
		return fmt.Errorf("failed to post to connection: %w", err)
	}
	return nil
}

// connectionsForUser queries the user index of the connections table
func (n *Notifier) connectionsForUser(ctx context.Context, userID string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(n.connectionsTable),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("GSI1PK = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
		},
	}

	result, err := n.dynamoClient.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query websocket connections: %w", err)
	}

	ids := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if v, ok := item["ConnectionID"].(*types.AttributeValueMemberS); ok {
			ids = append(ids, v.Value)
		}
	}
	return ids, nil
}

func (n *Notifier) removeStaleConnection(ctx context.Context, connectionID string) {
	_, err := n.dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(n.connectionsTable),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("WSCONN#%s", connectionID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		n.logger.Warn("Failed to remove stale connection",
			zap.String("connectionID", connectionID),
			zap.Error(err),
		)
		return
	}
	n.logger.Debug("Removed stale connection", zap.String("connectionID", connectionID))
}
