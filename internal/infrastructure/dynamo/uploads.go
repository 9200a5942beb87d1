package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/qrdesk-api/internal/domain"
)

// UploadRepo records every file relayed to object storage.
type UploadRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewUploadRepo(client *dynamodb.Client, tableName string) *UploadRepo {
	return &UploadRepo{client: client, tableName: tableName}
}

func (r *UploadRepo) Put(ctx context.Context, u *domain.Upload) error {
	item, err := attributevalue.MarshalMap(u)
	if err != nil {
		return fmt.Errorf("marshal upload: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListByUser returns every upload recorded for userID.
func (r *UploadRepo) ListByUser(ctx context.Context, userID string) ([]domain.Upload, error) {
	uploads := []domain.Upload{}
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.Upload
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		uploads = append(uploads, batch...)
	}
	return uploads, nil
}
