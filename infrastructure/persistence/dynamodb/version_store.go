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

// VersionStore persists immutable snippet snapshots as an append-only stream
// per snippet:
//
//	PK = SNIPPET#<snippetID>   SK = VERSION#<version, zero-padded to 10>
//
// Zero-padding makes the native SK sort order equal the numeric version
// order, so ListBySnippet needs no client-side sort. Records are never
// rewritten; a duplicate version number means two writers raced one snippet
// update and is surfaced as a conflict.
type VersionStore struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewVersionStore creates a new VersionStore
func NewVersionStore(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.VersionStore {
	return &VersionStore{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// versionItem represents the DynamoDB item structure for a version record
type versionItem struct {
	PK         string            `dynamodbav:"PK"`
	SK         string            `dynamodbav:"SK"`
	EntityType string            `dynamodbav:"EntityType"`
	RecordID   string            `dynamodbav:"RecordID"`
	SnippetID  string            `dynamodbav:"SnippetID"`
	Version    int               `dynamodbav:"Version"`
	Title      string            `dynamodbav:"Title"`
	Text       string            `dynamodbav:"Text"`
	Fields     map[string]string `dynamodbav:"Fields,omitempty"`
	ImageURL   string            `dynamodbav:"ImageURL,omitempty"`
	VideoURL   string            `dynamodbav:"VideoURL,omitempty"`
	UserID     string            `dynamodbav:"UserID"`
	CreatedAt  string            `dynamodbav:"CreatedAt"`
}

func versionSK(version int) string {
	return fmt.Sprintf("VERSION#%010d", version)
}

// Append writes one version record. The existence condition keeps the stream
// append-only: rewriting an existing version fails loudly instead of
// silently replacing history.
func (s *VersionStore) Append(ctx context.Context, record *entities.VersionRecord) error {
	item := versionItem{
		PK:         fmt.Sprintf("SNIPPET#%s", record.SnippetID.String()),
		SK:         versionSK(record.Version),
		EntityType: "VERSION",
		RecordID:   record.ID,
		SnippetID:  record.SnippetID.String(),
		Version:    record.Version,
		Title:      record.Title,
		Text:       record.Text,
		Fields:     record.Fields,
		ImageURL:   record.ImageURL,
		VideoURL:   record.VideoURL,
		UserID:     record.UserID,
		CreatedAt:  record.CreatedAt.Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal version record: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}

	if _, err := s.client.PutItem(ctx, input); err != nil {
		var condErr *types.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return pkgerrors.NewConflictError(
				fmt.Sprintf("version %d already recorded for snippet %s", record.Version, record.SnippetID.String()),
			)
		}
		return pkgerrors.NewDatabaseError("append version record", err)
	}

	s.logger.Debug("Version record appended",
		zap.String("snippetID", record.SnippetID.String()),
		zap.Int("version", record.Version),
	)

	return nil
}

// ListBySnippet returns all records for a snippet ordered by version
func (s *VersionStore) ListBySnippet(ctx context.Context, snippetID string) ([]*entities.VersionRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: fmt.Sprintf("SNIPPET#%s", snippetID)},
			":sk": &types.AttributeValueMemberS{Value: "VERSION#"},
		},
	}

	records := make([]*entities.VersionRecord, 0)
	paginator := dynamodb.NewQueryPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("query version records", err)
		}
		for _, raw := range page.Items {
			var item versionItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				s.logger.Warn("Failed to unmarshal version item", zap.Error(err))
				continue
			}
			record, err := fromVersionItem(item)
			if err != nil {
				s.logger.Warn("Failed to reconstruct version record",
					zap.String("recordID", item.RecordID),
					zap.Error(err),
				)
				continue
			}
			records = append(records, record)
		}
	}

	return records, nil
}

// DeleteForSnippet removes every record the owner wrote for a snippet. Keys
// are collected first, then drained through BatchWriteItem; records written
// by other users stay untouched, and an empty stream is a no-op.
func (s *VersionStore) DeleteForSnippet(ctx context.Context, snippetID, ownerID string) error {
	all, err := s.ListBySnippet(ctx, snippetID)
	if err != nil {
		return err
	}

	records := make([]*entities.VersionRecord, 0, len(all))
	for _, record := range all {
		if record.UserID == ownerID {
			records = append(records, record)
		}
	}
	if len(records) == 0 {
		return nil
	}

	// BatchWriteItem caps at 25 requests per call.
	const batchSize = 25
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}

		writes := make([]types.WriteRequest, 0, end-start)
		for _, record := range records[start:end] {
			writes = append(writes, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": &types.AttributeValueMemberS{Value: fmt.Sprintf("SNIPPET#%s", snippetID)},
						"SK": &types.AttributeValueMemberS{Value: versionSK(record.Version)},
					},
				},
			})
		}

		for len(writes) > 0 {
			result, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
				RequestItems: map[string][]types.WriteRequest{
					s.tableName: writes,
				},
			})
			if err != nil {
				return pkgerrors.NewDatabaseError("delete version records", err)
			}
			writes = result.UnprocessedItems[s.tableName]
		}
	}

	s.logger.Debug("Version history deleted",
		zap.String("snippetID", snippetID),
		zap.Int("records", len(records)),
	)

	return nil
}

func fromVersionItem(item versionItem) (*entities.VersionRecord, error) {
	snippetID, err := valueobjects.NewSnippetIDFromString(item.SnippetID)
	if err != nil {
		return nil, fmt.Errorf("invalid snippet id %q: %w", item.SnippetID, err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt %q: %w", item.CreatedAt, err)
	}

	return &entities.VersionRecord{
		ID:        item.RecordID,
		SnippetID: snippetID,
		Version:   item.Version,
		Title:     item.Title,
		Text:      item.Text,
		Fields:    item.Fields,
		ImageURL:  item.ImageURL,
		VideoURL:  item.VideoURL,
		UserID:    item.UserID,
		CreatedAt: createdAt,
	}, nil
}
