package dynamo

// DynamoDB attribute names used in update expressions across all repos.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUpdatedAt    = "updated_at"
	fieldIsVerified   = "is_verified"
	fieldPasswordHash = "password_hash"
	fieldIsPaused     = "is_paused"
	fieldScanCount    = "scan_count"
	fieldName         = "name"
	fieldContentType  = "content_type"
	fieldTypeData     = "type_data"
	fieldStyling      = "styling"
	fieldIsDynamic    = "is_dynamic"
	fieldExpiresAt    = "expires_at"
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldContent      = "content"
	fieldContentHTML  = "content_html"
	fieldCoverImage   = "cover_image_url"
)
