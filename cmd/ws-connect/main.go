// Package main implements the WebSocket $connect and $disconnect Lambda.
// Connections are authenticated with the same HS256 tokens as the REST API
// and recorded in the connections table so graph-change notifications can
// find every live socket for a user.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"snipgraph-backend/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

var (
	dynamoClient *dynamodb.Client
	validator    *auth.JWTValidator
	tableName    string
)

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	dynamoClient = dynamodb.NewFromConfig(cfg)

	tableName = os.Getenv("CONNECTIONS_TABLE")
	if tableName == "" {
		tableName = "snipgraph-connections"
	}

	validator, err = auth.NewJWTValidator(auth.JWTConfig{
		SecretKey: os.Getenv("JWT_SECRET"),
		Issuer:    os.Getenv("JWT_ISSUER"),
	})
	if err != nil {
		log.Fatalf("Failed to create token validator: %v", err)
	}
}

// storeConnection records a live socket. The TTL reaps records whose
// $disconnect was never delivered.
func storeConnection(ctx context.Context, connectionID, userID, endpoint string) error {
	now := time.Now()
	item := map[string]types.AttributeValue{
		"PK":           &types.AttributeValueMemberS{Value: fmt.Sprintf("WSCONN#%s", connectionID)},
		"SK":           &types.AttributeValueMemberS{Value: "METADATA"},
		"ConnectionID": &types.AttributeValueMemberS{Value: connectionID},
		"UserID":       &types.AttributeValueMemberS{Value: userID},
		"GSI1PK":       &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", userID)},
		"GSI1SK":       &types.AttributeValueMemberS{Value: fmt.Sprintf("WSCONN#%s", connectionID)},
		"ConnectedAt":  &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		"Endpoint":     &types.AttributeValueMemberS{Value: endpoint},
		"TTL":          &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", now.Add(24*time.Hour).Unix())},
	}

	_, err := dynamoClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to store connection: %w", err)
	}
	return nil
}

func deleteConnection(ctx context.Context, connectionID string) error {
	_, err := dynamoClient.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("WSCONN#%s", connectionID)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	return err
}

func handler(ctx context.Context, request events.APIGatewayWebsocketProxyRequest) (events.APIGatewayProxyResponse, error) {
	connectionID := request.RequestContext.ConnectionID

	switch request.RequestContext.RouteKey {
	case "$disconnect":
		if err := deleteConnection(ctx, connectionID); err != nil {
			log.Printf("Failed to delete connection %s: %v", connectionID, err)
		}
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil

	default: // $connect
		token := request.QueryStringParameters["token"]
		if token == "" {
			token = request.Headers["Authorization"]
		}
		if token == "" {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusUnauthorized,
				Body:       `{"error": "missing authentication token"}`,
			}, nil
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			log.Printf("Authentication failed for connection %s: %v", connectionID, err)
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusUnauthorized,
				Body:       `{"error": "unauthorized"}`,
			}, nil
		}

		endpoint := fmt.Sprintf("%s/%s", request.RequestContext.DomainName, request.RequestContext.Stage)
		if err := storeConnection(ctx, connectionID, claims.UserID, endpoint); err != nil {
			log.Printf("Failed to store connection: %v", err)
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       `{"error": "internal server error"}`,
			}, nil
		}

		log.Printf("WebSocket connection %s established for user %s", connectionID, claims.UserID)
		return events.APIGatewayProxyResponse{StatusCode: http.StatusOK}, nil
	}
}

func main() {
	lambda.Start(handler)
}
