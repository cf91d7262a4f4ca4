package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/core/entities"
	"snipgraph-backend/domain/core/valueobjects"
	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ConnectionRepository implements ports.ConnectionRepository on the single
// table. Connections live under the project partition with two GSIs so
// per-endpoint lookups never scan:
//
//	PK     = PROJECT#<projectID>  SK     = CONN#<connectionID>
//	GSI1PK = SRC#<sourceID>       GSI1SK = CONN#<connectionID>
//	GSI2PK = TGT#<targetID>       GSI2SK = CONN#<connectionID>
type ConnectionRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ConnectionRepository {
	return &ConnectionRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// connectionItem represents the DynamoDB item structure for a connection
type connectionItem struct {
	PK           string            `dynamodbav:"PK"`
	SK           string            `dynamodbav:"SK"`
	GSI1PK       string            `dynamodbav:"GSI1PK"`
	GSI1SK       string            `dynamodbav:"GSI1SK"`
	GSI2PK       string            `dynamodbav:"GSI2PK"`
	GSI2SK       string            `dynamodbav:"GSI2SK"`
	EntityType   string            `dynamodbav:"EntityType"`
	ConnectionID string            `dynamodbav:"ConnectionID"`
	ProjectID    string            `dynamodbav:"ProjectID"`
	UserID       string            `dynamodbav:"UserID"`
	SourceID     string            `dynamodbav:"SourceID"`
	TargetID     string            `dynamodbav:"TargetID"`
	Label        string            `dynamodbav:"Label,omitempty"`
	Description  string            `dynamodbav:"Description,omitempty"`
	Metadata     map[string]string `dynamodbav:"Metadata,omitempty"`
	CreatedAt    string            `dynamodbav:"CreatedAt"`
}

func toConnectionItem(c *entities.Connection) connectionItem {
	return connectionItem{
		PK:           fmt.Sprintf("PROJECT#%s", c.ProjectID),
		SK:           fmt.Sprintf("CONN#%s", c.ID),
		GSI1PK:       fmt.Sprintf("SRC#%s", c.SourceID.String()),
		GSI1SK:       fmt.Sprintf("CONN#%s", c.ID),
		GSI2PK:       fmt.Sprintf("TGT#%s", c.TargetID.String()),
		GSI2SK:       fmt.Sprintf("CONN#%s", c.ID),
		EntityType:   "CONNECTION",
		ConnectionID: c.ID,
		ProjectID:    c.ProjectID,
		UserID:       c.UserID,
		SourceID:     c.SourceID.String(),
		TargetID:     c.TargetID.String(),
		Label:        c.Label,
		Description:  c.Description,
		Metadata:     c.Metadata,
		CreatedAt:    c.CreatedAt.Format(time.RFC3339Nano),
	}
}

func fromConnectionItem(item connectionItem) (*entities.Connection, error) {
	sourceID, err := valueobjects.NewSnippetIDFromString(item.SourceID)
	if err != nil {
		return nil, fmt.Errorf("invalid source id %q: %w", item.SourceID, err)
	}
	targetID, err := valueobjects.NewSnippetIDFromString(item.TargetID)
	if err != nil {
		return nil, fmt.Errorf("invalid target id %q: %w", item.TargetID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt %q: %w", item.CreatedAt, err)
	}

	return &entities.Connection{
		ID:          item.ConnectionID,
		ProjectID:   item.ProjectID,
		UserID:      item.UserID,
		SourceID:    sourceID,
		TargetID:    targetID,
		Label:       item.Label,
		Description: item.Description,
		Metadata:    item.Metadata,
		CreatedAt:   createdAt,
	}, nil
}

// Create persists a new connection
func (r *ConnectionRepository) Create(ctx context.Context, conn *entities.Connection) error {
	av, err := attributevalue.MarshalMap(toConnectionItem(conn))
	if err != nil {
		return fmt.Errorf("failed to marshal connection: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.NewConflictError("connection already exists").WithCode("DUPLICATE")
		}
		r.logger.Error("Failed to save connection to DynamoDB",
			zap.Error(err),
			zap.String("connectionID", conn.ID),
		)
		return pkgerrors.NewDatabaseError("put connection", err)
	}

	r.logger.Debug("Connection saved",
		zap.String("connectionID", conn.ID),
		zap.String("sourceID", conn.SourceID.String()),
		zap.String("targetID", conn.TargetID.String()),
	)

	return nil
}

// Query retrieves connections matching the filter. A source or target filter
// routes the query through the matching GSI; everything else narrows the
// project partition with a filter expression.
func (r *ConnectionRepository) Query(ctx context.Context, filter ports.ConnectionFilter) ([]*entities.Connection, error) {
	if filter.ProjectID == "" {
		return nil, pkgerrors.NewValidationError("projectID is required")
	}

	var keyCond expression.KeyConditionBuilder
	var indexName *string

	switch {
	case filter.SourceID != "":
		indexName = aws.String("GSI1")
		keyCond = expression.Key("GSI1PK").Equal(expression.Value(fmt.Sprintf("SRC#%s", filter.SourceID)))
	case filter.TargetID != "":
		indexName = aws.String("GSI2")
		keyCond = expression.Key("GSI2PK").Equal(expression.Value(fmt.Sprintf("TGT#%s", filter.TargetID)))
	default:
		keyCond = expression.Key("PK").Equal(expression.Value(fmt.Sprintf("PROJECT#%s", filter.ProjectID))).
			And(expression.Key("SK").BeginsWith("CONN#"))
	}

	// The GSIs span sources and targets across projects, so the project is
	// re-checked as a filter whenever an index is used.
	filterCond := expression.Name("EntityType").Equal(expression.Value("CONNECTION"))
	if indexName != nil {
		filterCond = filterCond.And(expression.Name("ProjectID").Equal(expression.Value(filter.ProjectID)))
	}
	if filter.Label != "" {
		filterCond = filterCond.And(expression.Name("Label").Equal(expression.Value(filter.Label)))
	}
	if filter.SourceID != "" && filter.TargetID != "" {
		// Source routed through GSI1; target narrows as a filter.
		filterCond = filterCond.And(expression.Name("TargetID").Equal(expression.Value(filter.TargetID)))
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(keyCond).
		WithFilter(filterCond).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build connection query: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 indexName,
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	connections := make([]*entities.Connection, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query connections", err)
		}
		for _, raw := range page.Items {
			var item connectionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal connection item", zap.Error(err))
				continue
			}
			conn, err := fromConnectionItem(item)
			if err != nil {
				r.logger.Warn("Failed to reconstruct connection",
					zap.String("connectionID", item.ConnectionID),
					zap.Error(err),
				)
				continue
			}
			connections = append(connections, conn)
		}
	}

	return connections, nil
}

// Delete removes a connection row owned by the caller; absent rows are a
// no-op so cascade retries converge.
func (r *ConnectionRepository) Delete(ctx context.Context, projectID, connectionID, ownerID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROJECT#%s", projectID)},
			"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("CONN#%s", connectionID)},
		},
		ConditionExpression: aws.String("attribute_not_exists(PK) OR UserID = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerID},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.NewNotFoundError("connection")
		}
		return pkgerrors.NewDatabaseError("delete connection", err)
	}

	r.logger.Debug("Connection deleted",
		zap.String("connectionID", connectionID),
		zap.String("projectID", projectID),
	)

	return nil
}
