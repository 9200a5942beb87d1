package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/qrdesk-api/internal/domain"
	"github.com/qrdesk-api/internal/pkg/id"
)

// ScanRepo is the append-only scan event log.
// PK: qr_id, SK: scan_id (ULID minted at scan time).
type ScanRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewScanRepo(client *dynamodb.Client, tableName string) *ScanRepo {
	return &ScanRepo{client: client, tableName: tableName}
}

func (r *ScanRepo) Put(ctx context.Context, ev *domain.ScanEvent) error {
	item, err := attributevalue.MarshalMap(ev)
	if err != nil {
		return fmt.Errorf("marshal scan event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByQRCode returns every scan of the code in scan order.
func (r *ScanRepo) ListByQRCode(ctx context.Context, qrID string) ([]domain.ScanEvent, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("qr_id = :q"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberS{Value: qrID},
		},
	})
}

// ListSince returns scans recorded at or after since.
func (r *ScanRepo) ListSince(ctx context.Context, qrID string, since time.Time) ([]domain.ScanEvent, error) {
	return r.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("qr_id = :q AND scan_id >= :s"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q": &types.AttributeValueMemberS{Value: qrID},
			":s": &types.AttributeValueMemberS{Value: id.LowerBound(since)},
		},
	})
}

func (r *ScanRepo) query(ctx context.Context, in *dynamodb.QueryInput) ([]domain.ScanEvent, error) {
	events := []domain.ScanEvent{}
	p := dynamodb.NewQueryPaginator(r.client, in)
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.ScanEvent
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		events = append(events, batch...)
	}
	return events, nil
}
