package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	dbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog"

	"github.com/slzapp/slz-dashboard/backend/internal/types"
)

// DynamoDBStore implements Store using AWS DynamoDB
type DynamoDBStore struct {
	client *dynamodb.Client
	config DynamoConfig
	logger zerolog.Logger
}

// NewDynamoDBStore creates a new DynamoDB store
func NewDynamoDBStore(ctx context.Context, cfg DynamoConfig, logger zerolog.Logger) (*DynamoDBStore, error) {
	var client *dynamodb.Client

	if cfg.Mode == DynamoModeLocal {
		// For local mode, build the client directly without LoadDefaultConfig.
		// LoadDefaultConfig probes the EC2 IMDS endpoint which hangs on EC2
		// instances when static credentials are intended.
		client = dynamodb.New(dynamodb.Options{
			Region:       cfg.Region,
			BaseEndpoint: aws.String(cfg.Endpoint),
			Credentials:  credentials.NewStaticCredentialsProvider("local", "local", ""),
		})
	} else {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		client = dynamodb.NewFromConfig(awsCfg)
	}

	store := &DynamoDBStore{
		client: client,
		config: cfg,
		logger: logger,
	}

	// Create tables in local mode
	if cfg.Mode == DynamoModeLocal {
		if err := CreateTablesIfNotExist(ctx, client, cfg, logger); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("mode", string(cfg.Mode)).
		Str("region", cfg.Region).
		Msg("DynamoDB store initialized")

	return store, nil
}

func (s *DynamoDBStore) SaveDailyLog(entry types.DailyLogEntry) error {
	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal daily log entry: %w", err)
	}

	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.config.DailyLogsTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save daily log entry: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) ListDailyLogs() ([]types.DailyLogEntry, error) {
	var entries []types.DailyLogEntry
	var lastKey map[string]dbtypes.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName: aws.String(s.config.DailyLogsTable),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Scan(context.Background(), input)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily logs: %w", err)
		}

		var page []types.DailyLogEntry
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal daily logs: %w", err)
		}
		entries = append(entries, page...)

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	return entries, nil
}

func (s *DynamoDBStore) GetAgentDailyLogs(agentID string) ([]types.DailyLogEntry, error) {
	keyCond := expression.Key("AgentID").Equal(expression.Value(agentID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	result, err := s.client.Query(context.Background(), &dynamodb.QueryInput{
		TableName:                 aws.String(s.config.DailyLogsTable),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query agent daily logs: %w", err)
	}

	var entries []types.DailyLogEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal agent daily logs: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.Before(entries[j].Date)
	})
	return entries, nil
}

// DeleteLogsForDay removes every entry whose date falls within
// [start, end). The window check happens client-side so entries written
// under different UTC offsets compare correctly.
func (s *DynamoDBStore) DeleteLogsForDay(start, end time.Time) error {
	var lastKey map[string]dbtypes.AttributeValue
	deleted := 0

	for {
		input := &dynamodb.ScanInput{
			TableName: aws.String(s.config.DailyLogsTable),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Scan(context.Background(), input)
		if err != nil {
			return fmt.Errorf("failed to scan daily logs: %w", err)
		}

		var page []types.DailyLogEntry
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return fmt.Errorf("failed to unmarshal daily logs: %w", err)
		}

		var requests []dbtypes.WriteRequest
		for _, entry := range page {
			if entry.Date.Before(start) || !entry.Date.Before(end) {
				continue
			}
			requests = append(requests, dbtypes.WriteRequest{
				DeleteRequest: &dbtypes.DeleteRequest{
					Key: map[string]dbtypes.AttributeValue{
						"AgentID": &dbtypes.AttributeValueMemberS{Value: entry.AgentID},
						"EntryID": &dbtypes.AttributeValueMemberS{Value: entry.EntryID},
					},
				},
			})
		}

		if err := s.batchDelete(s.config.DailyLogsTable, requests); err != nil {
			return err
		}
		deleted += len(requests)

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	s.logger.Debug().
		Time("start", start).
		Time("end", end).
		Int("deleted", deleted).
		Msg("cleared daily logs for day")
	return nil
}

// DeleteAllLogs deletes all daily log entries (scan + batch delete)
func (s *DynamoDBStore) DeleteAllLogs() error {
	if err := s.truncateTable(s.config.DailyLogsTable, "AgentID", "EntryID"); err != nil {
		return fmt.Errorf("failed to truncate %s: %w", s.config.DailyLogsTable, err)
	}
	return nil
}

func (s *DynamoDBStore) SaveColumnOrder(order types.ColumnOrder) error {
	item, err := attributevalue.MarshalMap(order)
	if err != nil {
		return fmt.Errorf("failed to marshal column order: %w", err)
	}

	_, err = s.client.PutItem(context.Background(), &dynamodb.PutItemInput{
		TableName: aws.String(s.config.ColumnOrdersTable),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to save column order: %w", err)
	}
	return nil
}

func (s *DynamoDBStore) GetColumnOrder(userID string) ([]string, error) {
	result, err := s.client.GetItem(context.Background(), &dynamodb.GetItemInput{
		TableName: aws.String(s.config.ColumnOrdersTable),
		Key: map[string]dbtypes.AttributeValue{
			"UserID": &dbtypes.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get column order: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var order types.ColumnOrder
	if err := attributevalue.UnmarshalMap(result.Item, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal column order: %w", err)
	}
	return order.Order, nil
}

func (s *DynamoDBStore) truncateTable(tableName, pk, sk string) error {
	var lastKey map[string]dbtypes.AttributeValue

	for {
		input := &dynamodb.ScanInput{
			TableName:            aws.String(tableName),
			ProjectionExpression: aws.String("#pk, #sk"),
			ExpressionAttributeNames: map[string]string{
				"#pk": pk,
				"#sk": sk,
			},
			Limit: aws.Int32(500),
		}
		if lastKey != nil {
			input.ExclusiveStartKey = lastKey
		}

		result, err := s.client.Scan(context.Background(), input)
		if err != nil {
			return err
		}

		requests := make([]dbtypes.WriteRequest, 0, len(result.Items))
		for _, item := range result.Items {
			requests = append(requests, dbtypes.WriteRequest{
				DeleteRequest: &dbtypes.DeleteRequest{
					Key: map[string]dbtypes.AttributeValue{
						pk: item[pk],
						sk: item[sk],
					},
				},
			})
		}
		if err := s.batchDelete(tableName, requests); err != nil {
			return err
		}

		lastKey = result.LastEvaluatedKey
		if lastKey == nil {
			break
		}
	}

	s.logger.Info().Str("table", tableName).Msg("table truncated")
	return nil
}

// batchDelete issues delete requests in groups of 25, the BatchWriteItem cap.
func (s *DynamoDBStore) batchDelete(tableName string, requests []dbtypes.WriteRequest) error {
	for i := 0; i < len(requests); i += 25 {
		end := i + 25
		if end > len(requests) {
			end = len(requests)
		}

		_, err := s.client.BatchWriteItem(context.Background(), &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]dbtypes.WriteRequest{
				tableName: requests[i:end],
			},
		})
		if err != nil {
			return fmt.Errorf("failed to batch delete from %s: %w", tableName, err)
		}
	}
	return nil
}

// NewStore creates the appropriate store based on configuration
func NewStore(ctx context.Context, logger zerolog.Logger) (Store, error) {
	cfg := LoadDynamoConfig()

	switch cfg.Mode {
	case DynamoModeLocal, DynamoModeAWS:
		return NewDynamoDBStore(ctx, cfg, logger)
	default:
		logger.Info().Msg("DynamoDB disabled (DYNAMO_MODE=none), using in-memory store")
		return NewMemoryStore(), nil
	}
}
