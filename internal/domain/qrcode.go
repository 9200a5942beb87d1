package domain

import "time"

type ColorStop struct {
	Offset float64 `json:"offset" dynamodbav:"offset" validate:"min=0,max=1"`
	Color  string  `json:"color" dynamodbav:"color" validate:"required"`
}

type Gradient struct {
	Type       string      `json:"type" dynamodbav:"type" validate:"omitempty,oneof=linear radial"`
	Rotation   float64     `json:"rotation" dynamodbav:"rotation"`
	ColorStops []ColorStop `json:"color_stops" dynamodbav:"color_stops" validate:"omitempty,dive"`
}

type BackgroundOptions struct {
	Color    string    `json:"color" dynamodbav:"color"`
	Gradient *Gradient `json:"gradient,omitempty" dynamodbav:"gradient,omitempty"`
}

// Styling is rendering metadata for the client-side QR renderer.
type Styling struct {
	BackgroundOptions  BackgroundOptions `json:"background_options" dynamodbav:"background_options"`
	DotType            string            `json:"dot_type" dynamodbav:"dot_type" validate:"omitempty,oneof=square dots rounded classy classy-rounded extra-rounded"`
	DotColor           string            `json:"dot_color" dynamodbav:"dot_color"`
	CornersSquareType  string            `json:"corners_square_type" dynamodbav:"corners_square_type" validate:"omitempty,oneof=square dots rounded classy classy-rounded extra-rounded"`
	CornersSquareColor string            `json:"corners_square_color" dynamodbav:"corners_square_color"`
	CornersDotType     string            `json:"corners_dot_type" dynamodbav:"corners_dot_type" validate:"omitempty,oneof=square dots rounded classy classy-rounded extra-rounded"`
	CornersDotColor    string            `json:"corners_dot_color" dynamodbav:"corners_dot_color"`
}

// WithDefaults fills every unset styling field.
func (s Styling) WithDefaults() Styling {
	if s.BackgroundOptions.Color == "" {
		s.BackgroundOptions.Color = "#ffffff"
	}
	if g := s.BackgroundOptions.Gradient; g != nil && g.Type == "" {
		g.Type = "linear"
	}
	s.DotType = orDefault(s.DotType, "square")
	s.DotColor = orDefault(s.DotColor, "#000000")
	s.CornersSquareType = orDefault(s.CornersSquareType, "square")
	s.CornersSquareColor = orDefault(s.CornersSquareColor, "#000000")
	s.CornersDotType = orDefault(s.CornersDotType, "square")
	s.CornersDotColor = orDefault(s.CornersDotColor, "#000000")
	return s
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

type QRCode struct {
	QRID        string                 `json:"id" dynamodbav:"qr_id"`
	UserID      string                 `json:"user_id" dynamodbav:"user_id"`
	ShortCode   string                 `json:"short_code" dynamodbav:"short_code"`
	Name        *string                `json:"name" dynamodbav:"name"`
	ContentType ContentType            `json:"content_type" dynamodbav:"content_type"`
	TypeData    map[string]interface{} `json:"type_data" dynamodbav:"type_data"`
	Styling     Styling                `json:"styling" dynamodbav:"styling"`
	IsDynamic   bool                   `json:"is_dynamic" dynamodbav:"is_dynamic"`
	IsPaused    bool                   `json:"is_paused" dynamodbav:"is_paused"`
	ScanCount   int64                  `json:"scan_count" dynamodbav:"scan_count"`
	ExpiresAt   *time.Time             `json:"expires_at" dynamodbav:"expires_at"`
	CreatedAt   time.Time              `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time              `json:"updated" dynamodbav:"updated_at"`
}

// Expired reports whether the code has an expiry that is before now.
func (q *QRCode) Expired(now time.Time) bool {
	return q.ExpiresAt != nil && now.After(*q.ExpiresAt)
}

// PublicQRCode is what the hosted viewer page may read without authentication.
type PublicQRCode struct {
	ShortCode   string                 `json:"short_code"`
	Name        *string                `json:"name"`
	ContentType ContentType            `json:"content_type"`
	TypeData    map[string]interface{} `json:"type_data"`
	Styling     Styling                `json:"styling"`
	IsDynamic   bool                   `json:"is_dynamic"`
}

func (q *QRCode) Public() *PublicQRCode {
	return &PublicQRCode{
		ShortCode:   q.ShortCode,
		Name:        q.Name,
		ContentType: q.ContentType,
		TypeData:    q.TypeData,
		Styling:     q.Styling,
		IsDynamic:   q.IsDynamic,
	}
}

type CreateQRCodeRequest struct {
	Name        *string                `json:"name" validate:"omitempty,max=200"`
	ContentType ContentType            `json:"content_type" validate:"required"`
	TypeData    map[string]interface{} `json:"type_data" validate:"required"`
	Styling     *Styling               `json:"styling"`
	IsDynamic   bool                   `json:"is_dynamic"`
	ExpiresAt   *time.Time             `json:"expires_at"`
}

// UpdateQRCodeRequest distinguishes absent fields (Set=false) from explicit nulls.
type UpdateQRCodeRequest struct {
	Name        Optional[string]                 `json:"name"`
	ContentType Optional[ContentType]            `json:"content_type"`
	TypeData    Optional[map[string]interface{}] `json:"type_data"`
	Styling     Optional[Styling]                `json:"styling"`
	IsDynamic   Optional[bool]                   `json:"is_dynamic"`
	ExpiresAt   Optional[time.Time]              `json:"expires_at"`
}
