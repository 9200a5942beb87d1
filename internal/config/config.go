package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort   string
	AppEnv    string
	LogLevel  string
	LogFormat string // "text" | "json"

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	S3BucketName    string
	S3PublicBaseURL string // CDN or bucket website URL; derived from bucket+region when empty

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTExpiry         time.Duration
	ResetTokenExpiry  time.Duration

	OTPTTL                   time.Duration
	RequireEmailVerification bool
	AdminEmails              []string // registrations with these emails get the admin role

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion       string
	SNSScanTopicARN string // scan events are not published when empty

	RedisAddr         string // analytics cache disabled when empty
	RedisPassword     string
	RedisDB           int
	AnalyticsCacheTTL time.Duration

	GeoIPDBPath    string // GeoLite2-City.mmdb; lookups return "Unknown" when empty
	FrontendURL    string
	AllowedOrigins []string // CORS allowed origins

	// TrustProxyHeaders lets X-Forwarded-For / X-Real-Ip replace the peer
	// address. Enable only behind a proxy that overwrites those headers.
	TrustProxyHeaders bool
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users        string
	OneTimeCodes string
	BlogPosts    string
	QRCodes      string
	ShortCodes   string
	ScanEvents   string
	Uploads      string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort:   getEnv("APP_PORT", "3010"),
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			Users:        getEnv("DYNAMO_TABLE_USERS", "users"),
			OneTimeCodes: getEnv("DYNAMO_TABLE_ONE_TIME_CODES", "one_time_codes"),
			BlogPosts:    getEnv("DYNAMO_TABLE_BLOG_POSTS", "blog_posts"),
			QRCodes:      getEnv("DYNAMO_TABLE_QR_CODES", "qr_codes"),
			ShortCodes:   getEnv("DYNAMO_TABLE_SHORT_CODES", "short_codes"),
			ScanEvents:   getEnv("DYNAMO_TABLE_SCAN_EVENTS", "scan_events"),
			Uploads:      getEnv("DYNAMO_TABLE_UPLOADS", "uploads"),
		},

		S3BucketName:    getEnv("S3_BUCKET_NAME", "qrdesk-uploads"),
		S3PublicBaseURL: strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),
		JWTExpiry:         getEnvDuration("JWT_EXPIRY", 7*24*time.Hour),
		ResetTokenExpiry:  getEnvDuration("RESET_TOKEN_EXPIRY", 10*time.Minute),

		OTPTTL:                   getEnvDuration("OTP_TTL", 10*time.Minute),
		RequireEmailVerification: getEnvBool("REQUIRE_EMAIL_VERIFICATION", true),
		AdminEmails:              getEnvList("ADMIN_EMAILS"),

		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "1025"),
		SMTPFrom:     getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),

		SNSRegion:       getEnv("SNS_REGION", "us-east-1"),
		SNSScanTopicARN: getEnv("SNS_SCAN_TOPIC_ARN", ""),

		RedisAddr:         getEnv("REDIS_ADDR", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		AnalyticsCacheTTL: getEnvDuration("ANALYTICS_CACHE_TTL", time.Minute),

		GeoIPDBPath:       getEnv("GEOIP_DB_PATH", ""),
		FrontendURL:       strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		AllowedOrigins:    strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
		TrustProxyHeaders: getEnvBool("TRUST_PROXY_HEADERS", false),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

// getEnvList splits a comma-separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvDuration accepts Go duration strings ("15m", "168h").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
