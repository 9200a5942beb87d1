package domain

import "time"

// UploadKind selects the storage folder of an uploaded file.
type UploadKind string

const (
	UploadLogo  UploadKind = "logo"
	UploadImage UploadKind = "image"
	UploadPDF   UploadKind = "pdf"
	UploadAudio UploadKind = "audio"
)

type Upload struct {
	UploadID    string     `json:"id" dynamodbav:"upload_id"`
	UserID      string     `json:"user_id" dynamodbav:"user_id"`
	Kind        UploadKind `json:"kind" dynamodbav:"kind"`
	Object      string     `json:"object" dynamodbav:"object"`
	URL         string     `json:"url" dynamodbav:"url"`
	Size        int64      `json:"size" dynamodbav:"size"`
	ContentType string     `json:"content_type" dynamodbav:"content_type"`
	Hash        string     `json:"hash" dynamodbav:"hash"`
	CreatedAt   time.Time  `json:"created" dynamodbav:"created_at"`
}
