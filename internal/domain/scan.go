package domain

import "time"

type Location struct {
	Country string `json:"country" dynamodbav:"country"`
	City    string `json:"city" dynamodbav:"city"`
}

// ScanEvent is one traversal of a dynamic code's redirect endpoint.
// PK: qr_id, SK: scan_id (ULID, so range order is scan order).
type ScanEvent struct {
	QRID       string    `json:"qr_id" dynamodbav:"qr_id"`
	ScanID     string    `json:"id" dynamodbav:"scan_id"`
	IP         string    `json:"ip" dynamodbav:"ip"`
	UserAgent  string    `json:"user_agent" dynamodbav:"user_agent"`
	DeviceType string    `json:"device_type" dynamodbav:"device_type"`
	Browser    string    `json:"browser" dynamodbav:"browser"`
	OS         string    `json:"os" dynamodbav:"os"`
	Referrer   *string   `json:"referrer" dynamodbav:"referrer"`
	Location   Location  `json:"location" dynamodbav:"location"`
	ScannedAt  time.Time `json:"scanned_at" dynamodbav:"scanned_at"`
}
