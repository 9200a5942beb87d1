package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/qrdesk-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeInput_ConditionalDeleteReturnsOldItem(t *testing.T) {
	in := consumeInput("otps", "u1", domain.OTPForgotPassword, "123456")

	assert.Equal(t, "otps", *in.TableName)
	assert.Equal(t, types.ReturnValueAllOld, in.ReturnValues)
	assert.Equal(t, "#code = :c AND (attribute_not_exists(#attempts) OR #attempts < :max)", *in.ConditionExpression)

	pk, ok := in.Key["user_id"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "u1", pk.Value)
	sk, ok := in.Key["purpose"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "forgot_password", sk.Value)

	c, ok := in.ExpressionAttributeValues[":c"].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "123456", c.Value)
	limit, ok := in.ExpressionAttributeValues[":max"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "5", limit.Value)
}

func TestFailureInput_IncrementsExistingCodeOnly(t *testing.T) {
	in := failureInput("otps", "u1", domain.OTPEmailVerification)

	assert.Equal(t, "ADD #attempts :one", *in.UpdateExpression)
	assert.Equal(t, "attribute_exists(user_id)", *in.ConditionExpression)
	assert.Equal(t, "attempts", in.ExpressionAttributeNames["#attempts"])
	one, ok := in.ExpressionAttributeValues[":one"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1", one.Value)
	sk := in.Key["purpose"].(*types.AttributeValueMemberS)
	assert.Equal(t, "email_verification", sk.Value)
}
