package dynamo

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/qrdesk-api/internal/domain"
)

// OTPRepo manages one-time codes.
// PK: user_id, SK: purpose. One live code per user and purpose.
type OTPRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOTPRepo(client *dynamodb.Client, tableName string) *OTPRepo {
	return &OTPRepo{client: client, tableName: tableName}
}

// Put stores c, replacing any code of the same purpose and resetting attempts.
func (r *OTPRepo) Put(ctx context.Context, c *domain.OneTimeCode) error {
	c.Attempts = 0
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal otp: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// Consume deletes the user's code for purpose when it equals code and has
// attempts left, and returns the deleted item. The conditional delete lets
// only one caller redeem a code. A rejected code counts as a failed attempt
// and yields domain.ErrInvalidOTP.
func (r *OTPRepo) Consume(ctx context.Context, userID string, purpose domain.OTPPurpose, code string) (*domain.OneTimeCode, error) {
	out, err := r.client.DeleteItem(ctx, consumeInput(r.tableName, userID, purpose, code))
	if isConditionFailed(err) {
		r.recordFailure(ctx, userID, purpose)
		return nil, fmt.Errorf("otp rejected: %w", domain.ErrInvalidOTP)
	}
	if err != nil {
		return nil, err
	}
	var c domain.OneTimeCode
	if err := attributevalue.UnmarshalMap(out.Attributes, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *OTPRepo) recordFailure(ctx context.Context, userID string, purpose domain.OTPPurpose) {
	_, err := r.client.UpdateItem(ctx, failureInput(r.tableName, userID, purpose))
	if err != nil && !isConditionFailed(err) {
		slog.Warn("failed to count otp attempt", "user_id", userID, "purpose", purpose, "err", err)
	}
}

func consumeInput(table, userID string, purpose domain.OTPPurpose, code string) *dynamodb.DeleteItemInput {
	return &dynamodb.DeleteItemInput{
		TableName:           aws.String(table),
		Key:                 compositeKey("user_id", userID, "purpose", string(purpose)),
		ConditionExpression: aws.String("#code = :c AND (attribute_not_exists(#attempts) OR #attempts < :max)"),
		ExpressionAttributeNames: map[string]string{
			"#code":     "code",
			"#attempts": "attempts",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberS{Value: code},
			":max": &types.AttributeValueMemberN{Value: strconv.Itoa(domain.MaxOTPAttempts)},
		},
		ReturnValues: types.ReturnValueAllOld,
	}
}

// failureInput increments attempts on an existing code only.
func failureInput(table, userID string, purpose domain.OTPPurpose) *dynamodb.UpdateItemInput {
	return &dynamodb.UpdateItemInput{
		TableName:                aws.String(table),
		Key:                      compositeKey("user_id", userID, "purpose", string(purpose)),
		UpdateExpression:         aws.String("ADD #attempts :one"),
		ConditionExpression:      aws.String("attribute_exists(user_id)"),
		ExpressionAttributeNames: map[string]string{"#attempts": "attempts"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
	}
}
