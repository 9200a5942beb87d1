package domain

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ContentType names what a QR code encodes.
type ContentType string

const (
	ContentURL       ContentType = "URL"
	ContentEmail     ContentType = "EMAIL"
	ContentSMS       ContentType = "SMS"
	ContentPhone     ContentType = "PHONE"
	ContentWhatsApp  ContentType = "WHATSAPP"
	ContentLocation  ContentType = "LOCATION"
	ContentUPI       ContentType = "UPI"
	ContentYouTube   ContentType = "YOUTUBE"
	ContentInstagram ContentType = "INSTAGRAM"
	ContentFacebook  ContentType = "FACEBOOK"
	ContentTelegram  ContentType = "TELEGRAM"
	ContentLinkedIn  ContentType = "LINKEDIN"
	ContentTwitter   ContentType = "TWITTER"
	ContentImage     ContentType = "IMAGE"
	ContentPDF       ContentType = "PDF"
	ContentText      ContentType = "TEXT"
	ContentAudio     ContentType = "AUDIO"
)

// LinkContext carries what a Content needs besides its own data to build a target.
type LinkContext struct {
	ShortCode     string
	ViewerBaseURL string
}

// Content is the closed set of QR payloads. Every variant must build its
// own redirect target, so adding a type without a rule does not compile.
type Content interface {
	Type() ContentType
	Target(lc LinkContext) string
	sealed()
}

type URLContent struct {
	URL string `json:"url" validate:"required,url"`
}

type YouTubeContent struct {
	URL string `json:"url" validate:"required,url"`
}

// SocialContent is a profile link on one of the supported networks.
type SocialContent struct {
	Network ContentType `json:"-"`
	URL     string      `json:"url" validate:"required,url"`
}

type EmailContent struct {
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type SMSContent struct {
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message"`
}

type PhoneContent struct {
	Phone string `json:"phone" validate:"required"`
}

type WhatsAppContent struct {
	Phone   string `json:"phone" validate:"required"`
	Message string `json:"message"`
}

type LocationContent struct {
	Latitude  *float64 `json:"latitude" validate:"required_without=Query,omitempty,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required_without=Query,omitempty,min=-180,max=180"`
	Query     string   `json:"query" validate:"required_without_all=Latitude Longitude"`
}

type UPIContent struct {
	UPIID     string      `json:"upi_id" validate:"required"`
	PayeeName string      `json:"payee_name"`
	Amount    json.Number `json:"amount" validate:"omitempty,numeric"`
	Note      string      `json:"note"`
}

// HostedContent is rendered by the internal viewer page (IMAGE, PDF, TEXT, AUDIO).
type HostedContent struct {
	Kind ContentType `json:"-"`
	URL  string      `json:"url" validate:"omitempty,url"`
	Text string      `json:"text"`
}

// UnknownContent covers stored records whose type is no longer recognised.
type UnknownContent struct {
	Kind ContentType
}

func (URLContent) Type() ContentType      { return ContentURL }
func (YouTubeContent) Type() ContentType  { return ContentYouTube }
func (c SocialContent) Type() ContentType { return c.Network }
func (EmailContent) Type() ContentType    { return ContentEmail }
func (SMSContent) Type() ContentType      { return ContentSMS }
func (PhoneContent) Type() ContentType    { return ContentPhone }
func (WhatsAppContent) Type() ContentType { return ContentWhatsApp }
func (LocationContent) Type() ContentType { return ContentLocation }
func (UPIContent) Type() ContentType      { return ContentUPI }
func (c HostedContent) Type() ContentType { return c.Kind }
func (c UnknownContent) Type() ContentType {
	return c.Kind
}

func (URLContent) sealed()      {}
func (YouTubeContent) sealed()  {}
func (SocialContent) sealed()   {}
func (EmailContent) sealed()    {}
func (SMSContent) sealed()      {}
func (PhoneContent) sealed()    {}
func (WhatsAppContent) sealed() {}
func (LocationContent) sealed() {}
func (UPIContent) sealed()      {}
func (HostedContent) sealed()   {}
func (UnknownContent) sealed()  {}

func (c URLContent) Target(LinkContext) string     { return c.URL }
func (c YouTubeContent) Target(LinkContext) string { return c.URL }
func (c SocialContent) Target(LinkContext) string  { return c.URL }

func (c EmailContent) Target(LinkContext) string {
	return "mailto:" + c.Email + query(
		"subject", c.Subject,
		"body", c.Body,
	)
}

func (c SMSContent) Target(LinkContext) string {
	return "sms:" + c.Phone + query("body", c.Message)
}

func (c PhoneContent) Target(LinkContext) string {
	return "tel:" + dialable(c.Phone)
}

func (c WhatsAppContent) Target(LinkContext) string {
	return "https://wa.me/" + strings.TrimPrefix(dialable(c.Phone), "+") + query("text", c.Message)
}

func (c LocationContent) Target(LinkContext) string {
	if c.Latitude != nil && c.Longitude != nil {
		return fmt.Sprintf("https://www.google.com/maps?q=%s,%s",
			strconv.FormatFloat(*c.Latitude, 'f', -1, 64),
			strconv.FormatFloat(*c.Longitude, 'f', -1, 64))
	}
	return "https://www.google.com/maps/search/?api=1&query=" + encode(c.Query)
}

func (c UPIContent) Target(LinkContext) string {
	var b strings.Builder
	b.WriteString("upi://pay?pa=")
	b.WriteString(encode(c.UPIID))
	if c.PayeeName != "" {
		b.WriteString("&pn=" + encode(c.PayeeName))
	}
	if c.Amount != "" {
		b.WriteString("&am=" + upiAmount(c.Amount))
	}
	if c.Note != "" {
		b.WriteString("&tn=" + encode(c.Note))
	}
	b.WriteString("&cu=INR")
	return b.String()
}

func (c HostedContent) Target(lc LinkContext) string {
	return lc.ViewerBaseURL + "/view/" + lc.ShortCode
}

func (c UnknownContent) Target(lc LinkContext) string {
	return lc.ViewerBaseURL + "/"
}

// KnownContentType reports whether t has a decoder.
func KnownContentType(t ContentType) bool {
	_, ok := contentDecoders[t]
	return ok
}

var contentDecoders = map[ContentType]func() Content{
	ContentURL:       func() Content { return &URLContent{} },
	ContentYouTube:   func() Content { return &YouTubeContent{} },
	ContentInstagram: func() Content { return &SocialContent{Network: ContentInstagram} },
	ContentFacebook:  func() Content { return &SocialContent{Network: ContentFacebook} },
	ContentTelegram:  func() Content { return &SocialContent{Network: ContentTelegram} },
	ContentLinkedIn:  func() Content { return &SocialContent{Network: ContentLinkedIn} },
	ContentTwitter:   func() Content { return &SocialContent{Network: ContentTwitter} },
	ContentEmail:     func() Content { return &EmailContent{} },
	ContentSMS:       func() Content { return &SMSContent{} },
	ContentPhone:     func() Content { return &PhoneContent{} },
	ContentWhatsApp:  func() Content { return &WhatsAppContent{} },
	ContentLocation:  func() Content { return &LocationContent{} },
	ContentUPI:       func() Content { return &UPIContent{} },
	ContentImage:     func() Content { return &HostedContent{Kind: ContentImage} },
	ContentPDF:       func() Content { return &HostedContent{Kind: ContentPDF} },
	ContentText:      func() Content { return &HostedContent{Kind: ContentText} },
	ContentAudio:     func() Content { return &HostedContent{Kind: ContentAudio} },
}

// DecodeContent converts stored type data into its typed variant.
// Unrecognised types decode to UnknownContent without error.
func DecodeContent(t ContentType, data map[string]interface{}) (Content, error) {
	newContent, ok := contentDecoders[t]
	if !ok {
		return UnknownContent{Kind: t}, nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode type data: %w", err)
	}
	c := newContent()
	if err := json.Unmarshal(raw, c); err != nil {
		return nil, fmt.Errorf("type data does not match %s: %w", t, ErrBadRequest)
	}
	// Variants are registered as pointers for decoding; targets use values.
	switch v := c.(type) {
	case *URLContent:
		return *v, nil
	case *YouTubeContent:
		return *v, nil
	case *SocialContent:
		return *v, nil
	case *EmailContent:
		return *v, nil
	case *SMSContent:
		return *v, nil
	case *PhoneContent:
		return *v, nil
	case *WhatsAppContent:
		return *v, nil
	case *LocationContent:
		return *v, nil
	case *UPIContent:
		return *v, nil
	case *HostedContent:
		return *v, nil
	}
	return c, nil
}

// upiAmount renders an amount with exactly two decimals.
func upiAmount(n json.Number) string {
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// dialable keeps digits and a leading '+'.
func dialable(phone string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(phone) {
		if r >= '0' && r <= '9' || (r == '+' && i == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// encode percent-encodes like encodeURIComponent (space becomes %20).
func encode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// query renders non-empty key/value pairs as "?k=v&k2=v2".
func query(kv ...string) string {
	var parts []string
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		parts = append(parts, kv[i]+"="+encode(kv[i+1]))
	}
	if len(parts) == 0 {
		return ""
	}
	return "?" + strings.Join(parts, "&")
}
