package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"snipgraph-backend/application/ports"
	"snipgraph-backend/domain/core/entities"
	pkgerrors "snipgraph-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ProjectRepository implements ports.ProjectRepository. Projects live under
// the owning user's partition, with a GSI for lookups by project id alone:
//
//	PK     = USER#<ownerID>       SK     = PROJECT#<projectID>
//	GSI1PK = PROJECT#<projectID>  GSI1SK = METADATA
//
// Keying on the user makes the owner part of the primary key, so a caller
// can only ever read or delete their own project rows.
type ProjectRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.ProjectRepository {
	return &ProjectRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// projectItem represents the DynamoDB item structure for a project
type projectItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	EntityType string `dynamodbav:"EntityType"`
	ProjectID  string `dynamodbav:"ProjectID"`
	UserID     string `dynamodbav:"UserID"`
	Name       string `dynamodbav:"Name"`
	CreatedAt  string `dynamodbav:"CreatedAt"`
	UpdatedAt  string `dynamodbav:"UpdatedAt"`
}

func projectKey(projectID, ownerID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", ownerID)},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROJECT#%s", projectID)},
	}
}

// Create persists a new project
func (r *ProjectRepository) Create(ctx context.Context, project *entities.Project) error {
	item := projectItem{
		PK:         fmt.Sprintf("USER#%s", project.UserID),
		SK:         fmt.Sprintf("PROJECT#%s", project.ID),
		GSI1PK:     fmt.Sprintf("PROJECT#%s", project.ID),
		GSI1SK:     "METADATA",
		EntityType: "PROJECT",
		ProjectID:  project.ID,
		UserID:     project.UserID,
		Name:       project.Name,
		CreatedAt:  project.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:  project.UpdatedAt.Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.NewConflictError("project already exists").WithCode("DUPLICATE")
		}
		r.logger.Error("Failed to save project to DynamoDB",
			zap.Error(err),
			zap.String("projectID", project.ID),
		)
		return pkgerrors.NewDatabaseError("put project", err)
	}

	r.logger.Info("Project created",
		zap.String("projectID", project.ID),
		zap.String("userID", project.UserID),
	)

	return nil
}

// GetByID retrieves a project scoped to its owner
func (r *ProjectRepository) GetByID(ctx context.Context, projectID, ownerID string) (*entities.Project, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       projectKey(projectID, ownerID),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get project", err)
	}

	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("project")
	}

	var item projectItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}

	return fromProjectItem(item)
}

// ListByUser retrieves all projects owned by a user
func (r *ProjectRepository) ListByUser(ctx context.Context, ownerID string) ([]*entities.Project, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("USER#%s", ownerID)},
			":sk": &types.AttributeValueMemberS{Value: "PROJECT#"},
		},
	}

	projects := make([]*entities.Project, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query projects", err)
		}
		for _, raw := range page.Items {
			var item projectItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal project item", zap.Error(err))
				continue
			}
			project, err := fromProjectItem(item)
			if err != nil {
				r.logger.Warn("Failed to reconstruct project",
					zap.String("projectID", item.ProjectID),
					zap.Error(err),
				)
				continue
			}
			projects = append(projects, project)
		}
	}

	return projects, nil
}

// Delete removes the project row. Unlike snippet and connection deletes this
// one requires the row to exist: project deletion is the root of a cascade
// and a missing root means the caller got the id or owner wrong.
func (r *ProjectRepository) Delete(ctx context.Context, projectID, ownerID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 projectKey(projectID, ownerID),
		ConditionExpression: aws.String("attribute_exists(PK) AND UserID = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerID},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.NewNotFoundError("project")
		}
		return pkgerrors.NewDatabaseError("delete project", err)
	}

	r.logger.Info("Project deleted",
		zap.String("projectID", projectID),
		zap.String("userID", ownerID),
	)

	return nil
}

func fromProjectItem(item projectItem) (*entities.Project, error) {
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt %q: %w", item.CreatedAt, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid UpdatedAt %q: %w", item.UpdatedAt, err)
	}

	return &entities.Project{
		ID:        item.ProjectID,
		UserID:    item.UserID,
		Name:      item.Name,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}
