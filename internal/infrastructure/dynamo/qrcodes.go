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

// QRCodeRepo stores QR codes (PK qr_id) and their short-code reservations
// in a second table (PK short_code), always written together.
type QRCodeRepo struct {
	client          *dynamodb.Client
	tableName       string
	shortCodesTable string
}

func NewQRCodeRepo(client *dynamodb.Client, tableName, shortCodesTable string) *QRCodeRepo {
	return &QRCodeRepo{client: client, tableName: tableName, shortCodesTable: shortCodesTable}
}

// Create writes the code and reserves its short code in one transaction.
// Returns domain.ErrConflict when the short code is already reserved.
func (r *QRCodeRepo) Create(ctx context.Context, q *domain.QRCode) error {
	item, err := attributevalue.MarshalMap(q)
	if err != nil {
		return fmt.Errorf("marshal qr code: %w", err)
	}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName: aws.String(r.shortCodesTable),
				Item: map[string]types.AttributeValue{
					"short_code": &types.AttributeValueMemberS{Value: q.ShortCode},
					"qr_id":      &types.AttributeValueMemberS{Value: q.QRID},
				},
				ConditionExpression: aws.String("attribute_not_exists(short_code)"),
			}},
			{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(qr_id)"),
			}},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("short code %s taken: %w", q.ShortCode, domain.ErrConflict)
	}
	return err
}

func (r *QRCodeRepo) Get(ctx context.Context, qrID string) (*domain.QRCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("qr_id", qrID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("qr code not found: %w", domain.ErrNotFound)
	}
	var q domain.QRCode
	if err := attributevalue.UnmarshalMap(out.Item, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *QRCodeRepo) GetByShortCode(ctx context.Context, shortCode string) (*domain.QRCode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.shortCodesTable),
		Key:       strKey("short_code", shortCode),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("short code not found: %w", domain.ErrNotFound)
	}
	var ref struct {
		QRID string `dynamodbav:"qr_id"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &ref); err != nil {
		return nil, err
	}
	return r.Get(ctx, ref.QRID)
}

// ListByOwner returns the owner's codes, newest first.
func (r *QRCodeRepo) ListByOwner(ctx context.Context, userID string) ([]domain.QRCode, error) {
	codes := []domain.QRCode{}
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-created_at-index"),
		KeyConditionExpression: aws.String("user_id = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		var batch []domain.QRCode
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			return nil, err
		}
		codes = append(codes, batch...)
	}
	return codes, nil
}

// Update writes the user-editable fields of q. scan_count is never touched here.
func (r *QRCodeRepo) Update(ctx context.Context, q *domain.QRCode) error {
	return r.update(ctx, q.QRID, map[string]interface{}{
		fieldName:        q.Name,
		fieldContentType: q.ContentType,
		fieldTypeData:    q.TypeData,
		fieldStyling:     q.Styling,
		fieldIsDynamic:   q.IsDynamic,
		fieldExpiresAt:   q.ExpiresAt,
		fieldUpdatedAt:   q.UpdatedAt,
	})
}

func (r *QRCodeRepo) SetPaused(ctx context.Context, q *domain.QRCode) error {
	return r.update(ctx, q.QRID, map[string]interface{}{
		fieldIsPaused:  q.IsPaused,
		fieldUpdatedAt: q.UpdatedAt,
	})
}

// IncrementScanCount atomically adds one to scan_count.
func (r *QRCodeRepo) IncrementScanCount(ctx context.Context, qrID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("qr_id", qrID),
		UpdateExpression:         aws.String("ADD #c :one"),
		ConditionExpression:      aws.String("attribute_exists(qr_id)"),
		ExpressionAttributeNames: map[string]string{"#c": fieldScanCount},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("qr code not found: %w", domain.ErrNotFound)
	}
	return err
}

// Delete removes the code and releases its short code.
func (r *QRCodeRepo) Delete(ctx context.Context, q *domain.QRCode) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:           aws.String(r.tableName),
				Key:                 strKey("qr_id", q.QRID),
				ConditionExpression: aws.String("attribute_exists(qr_id)"),
			}},
			{Delete: &types.Delete{
				TableName: aws.String(r.shortCodesTable),
				Key:       strKey("short_code", q.ShortCode),
			}},
		},
	})
	if isConditionFailed(err) {
		return fmt.Errorf("qr code not found: %w", domain.ErrNotFound)
	}
	return err
}

func (r *QRCodeRepo) update(ctx context.Context, qrID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("qr_id", qrID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(qr_id)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if isConditionFailed(err) {
		return fmt.Errorf("qr code not found: %w", domain.ErrNotFound)
	}
	return err
}
