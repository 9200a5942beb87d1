package domain

import "time"

// OTPPurpose scopes a one-time code to a single flow.
type OTPPurpose string

const (
	OTPEmailVerification OTPPurpose = "email_verification"
	OTPForgotPassword    OTPPurpose = "forgot_password"
)

// MaxOTPAttempts is the number of wrong guesses after which a code stops
// being redeemable, even with the right value.
const MaxOTPAttempts = 5

// OneTimeCode is a short-lived numeric code. A user holds at most one live
// code per purpose; issuing a new one replaces it.
// PK: user_id, SK: purpose. ExpiresAt is a Unix timestamp used as DynamoDB TTL.
type OneTimeCode struct {
	UserID    string     `json:"user_id" dynamodbav:"user_id"`
	Purpose   OTPPurpose `json:"purpose" dynamodbav:"purpose"`
	Code      string     `json:"code" dynamodbav:"code"`
	Attempts  int        `json:"attempts" dynamodbav:"attempts"`
	ExpiresAt int64      `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt time.Time  `json:"created" dynamodbav:"created_at"`
}

// Expired reports whether the code is past its expiry at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return c.ExpiresAt < now.Unix()
}
