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
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// SnippetRepository implements ports.SnippetRepository on a single DynamoDB
// table. Snippets live under their project partition:
//
//	PK = PROJECT#<projectID>   SK = SNIPPET#<snippetID>
//
// Ownership is enforced in two layers: reads compare the stored UserID and
// map a mismatch to the same not-found error as an absent row, and writes
// carry a conditional expression so a row can never be updated or deleted by
// a non-owner even if the service layer is bypassed.
type SnippetRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewSnippetRepository creates a new SnippetRepository
func NewSnippetRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.SnippetRepository {
	return &SnippetRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// snippetItem represents the DynamoDB item structure for a snippet
type snippetItem struct {
	PK          string            `dynamodbav:"PK"`
	SK          string            `dynamodbav:"SK"`
	EntityType  string            `dynamodbav:"EntityType"`
	SnippetID   string            `dynamodbav:"SnippetID"`
	ProjectID   string            `dynamodbav:"ProjectID"`
	UserID      string            `dynamodbav:"UserID"`
	Title       string            `dynamodbav:"Title"`
	Text        string            `dynamodbav:"Text"`
	Fields      map[string]string `dynamodbav:"Fields,omitempty"`
	ImageURL    string            `dynamodbav:"ImageURL,omitempty"`
	ImageMime   string            `dynamodbav:"ImageMime,omitempty"`
	ImageWidth  int               `dynamodbav:"ImageWidth,omitempty"`
	ImageHeight int               `dynamodbav:"ImageHeight,omitempty"`
	VideoURL    string            `dynamodbav:"VideoURL,omitempty"`
	VideoMime   string            `dynamodbav:"VideoMime,omitempty"`
	PositionX   float64           `dynamodbav:"PositionX"`
	PositionY   float64           `dynamodbav:"PositionY"`
	Version     int               `dynamodbav:"Version"`
	CreatedAt   string            `dynamodbav:"CreatedAt"`
	UpdatedAt   string            `dynamodbav:"UpdatedAt"`
}

func snippetKey(projectID, snippetID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("PROJECT#%s", projectID)},
		"SK": &types.AttributeValueMemberS{Value: fmt.Sprintf("SNIPPET#%s", snippetID)},
	}
}

func toSnippetItem(s *entities.Snippet) snippetItem {
	content := s.Content()
	image := content.Image()
	video := content.Video()
	return snippetItem{
		PK:          fmt.Sprintf("PROJECT#%s", s.ProjectID()),
		SK:          fmt.Sprintf("SNIPPET#%s", s.ID().String()),
		EntityType:  "SNIPPET",
		SnippetID:   s.ID().String(),
		ProjectID:   s.ProjectID(),
		UserID:      s.UserID(),
		Title:       s.Title(),
		Text:        content.Text(),
		Fields:      content.Fields(),
		ImageURL:    image.URL,
		ImageMime:   image.MimeType,
		ImageWidth:  image.Width,
		ImageHeight: image.Height,
		VideoURL:    video.URL,
		VideoMime:   video.MimeType,
		PositionX:   s.Position().X,
		PositionY:   s.Position().Y,
		Version:     s.Version(),
		CreatedAt:   s.CreatedAt().Format(time.RFC3339Nano),
		UpdatedAt:   s.UpdatedAt().Format(time.RFC3339Nano),
	}
}

func fromSnippetItem(item snippetItem) (*entities.Snippet, error) {
	id, err := valueobjects.NewSnippetIDFromString(item.SnippetID)
	if err != nil {
		return nil, fmt.Errorf("invalid snippet id %q: %w", item.SnippetID, err)
	}

	content, err := valueobjects.NewSnippetContent(item.Text, item.Fields)
	if err != nil {
		return nil, fmt.Errorf("invalid snippet content: %w", err)
	}
	if item.ImageURL != "" {
		content = content.WithImage(valueobjects.MediaRef{
			URL:      item.ImageURL,
			MimeType: item.ImageMime,
			Width:    item.ImageWidth,
			Height:   item.ImageHeight,
		})
	}
	if item.VideoURL != "" {
		content = content.WithVideo(valueobjects.MediaRef{
			URL:      item.VideoURL,
			MimeType: item.VideoMime,
		})
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt %q: %w", item.CreatedAt, err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid UpdatedAt %q: %w", item.UpdatedAt, err)
	}

	return entities.ReconstructSnippet(
		id,
		item.ProjectID,
		item.UserID,
		item.Title,
		content,
		valueobjects.NewPosition(item.PositionX, item.PositionY),
		item.Version,
		createdAt,
		updatedAt,
	)
}

// Create persists a new snippet. A condition on the key rejects overwriting
// an existing row so retried creates surface as conflicts instead of silent
// data loss.
func (r *SnippetRepository) Create(ctx context.Context, snippet *entities.Snippet) error {
	av, err := attributevalue.MarshalMap(toSnippetItem(snippet))
	if err != nil {
		return fmt.Errorf("failed to marshal snippet: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.NewConflictError("snippet already exists").WithCode("DUPLICATE")
		}
		r.logger.Error("Failed to save snippet to DynamoDB",
			zap.Error(err),
			zap.String("snippetID", snippet.ID().String()),
		)
		return pkgerrors.NewDatabaseError("put snippet", err)
	}

	r.logger.Debug("Snippet saved",
		zap.String("snippetID", snippet.ID().String()),
		zap.String("projectID", snippet.ProjectID()),
		zap.Int("version", snippet.Version()),
	)

	return nil
}

// GetByID retrieves a snippet scoped to its owner. A row owned by someone
// else is reported as not found, never as forbidden.
func (r *SnippetRepository) GetByID(ctx context.Context, projectID, id, ownerID string) (*entities.Snippet, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       snippetKey(projectID, id),
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get snippet", err)
	}

	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("snippet")
	}

	var item snippetItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snippet: %w", err)
	}

	if item.UserID != ownerID {
		return nil, pkgerrors.NewNotFoundError("snippet")
	}

	return fromSnippetItem(item)
}

// ListByProject retrieves all snippets in a project owned by ownerID
func (r *SnippetRepository) ListByProject(ctx context.Context, projectID, ownerID string) ([]*entities.Snippet, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		FilterExpression:       aws.String("UserID = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":    &types.AttributeValueMemberS{Value: fmt.Sprintf("PROJECT#%s", projectID)},
			":sk":    &types.AttributeValueMemberS{Value: "SNIPPET#"},
			":owner": &types.AttributeValueMemberS{Value: ownerID},
		},
	}

	snippets := make([]*entities.Snippet, 0)
	paginator := dynamodb.NewQueryPaginator(r.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query snippets", err)
		}
		for _, raw := range page.Items {
			var item snippetItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal snippet item", zap.Error(err))
				continue
			}
			snippet, err := fromSnippetItem(item)
			if err != nil {
				r.logger.Warn("Failed to reconstruct snippet",
					zap.String("snippetID", item.SnippetID),
					zap.Error(err),
				)
				continue
			}
			snippets = append(snippets, snippet)
		}
	}

	return snippets, nil
}

// BatchGet retrieves multiple snippets in one round trip. Missing IDs are
// absent from the result map; unprocessed keys are retried until the batch
// drains.
func (r *SnippetRepository) BatchGet(ctx context.Context, projectID string, ids []string) (map[string]*entities.Snippet, error) {
	out := make(map[string]*entities.Snippet, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	// BatchGetItem caps at 100 keys per request.
	const batchSize = 100
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, id := range ids[start:end] {
			keys = append(keys, snippetKey(projectID, id))
		}

		for len(keys) > 0 {
			input := &dynamodb.BatchGetItemInput{
				RequestItems: map[string]types.KeysAndAttributes{
					r.tableName: {Keys: keys},
				},
			}

			result, err := r.client.BatchGetItem(ctx, input)
			if err != nil {
				return nil, pkgerrors.NewDatabaseError("batch get snippets", err)
			}

			for _, raw := range result.Responses[r.tableName] {
				var item snippetItem
				if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
					r.logger.Warn("Failed to unmarshal snippet item", zap.Error(err))
					continue
				}
				snippet, err := fromSnippetItem(item)
				if err != nil {
					r.logger.Warn("Failed to reconstruct snippet",
						zap.String("snippetID", item.SnippetID),
						zap.Error(err),
					)
					continue
				}
				out[item.SnippetID] = snippet
			}

			keys = nil
			if unprocessed, ok := result.UnprocessedKeys[r.tableName]; ok {
				keys = unprocessed.Keys
			}
		}
	}

	return out, nil
}

// Update persists a modified snippet. The conditional expression requires the
// row to exist and still belong to the caller.
func (r *SnippetRepository) Update(ctx context.Context, snippet *entities.Snippet) error {
	av, err := attributevalue.MarshalMap(toSnippetItem(snippet))
	if err != nil {
		return fmt.Errorf("failed to marshal snippet: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(PK) AND UserID = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: snippet.UserID()},
		},
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.NewNotFoundError("snippet")
		}
		r.logger.Error("Failed to update snippet in DynamoDB",
			zap.Error(err),
			zap.String("snippetID", snippet.ID().String()),
		)
		return pkgerrors.NewDatabaseError("update snippet", err)
	}

	return nil
}

// Delete removes the snippet row. The condition allows deleting only rows
// owned by the caller; an absent row passes through as a no-op so cascade
// retries stay idempotent.
func (r *SnippetRepository) Delete(ctx context.Context, projectID, id, ownerID string) error {
	input := &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 snippetKey(projectID, id),
		ConditionExpression: aws.String("attribute_not_exists(PK) OR UserID = :owner"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":owner": &types.AttributeValueMemberS{Value: ownerID},
		},
	}

	if _, err := r.client.DeleteItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			// Row exists but belongs to someone else; report it as absent.
			return pkgerrors.NewNotFoundError("snippet")
		}
		return pkgerrors.NewDatabaseError("delete snippet", err)
	}

	r.logger.Debug("Snippet deleted",
		zap.String("snippetID", id),
		zap.String("projectID", projectID),
	)

	return nil
}
