// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like HTTP/HTTPS
// ports, TLS, logging level and format, and request timeouts. AppConfig
// is everything specific to TurfHub: the MongoDB connection, auth token
// signing, S3 image storage, SMTP mail, and API behavior.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Auth token configuration
	AuthSecret   string        // Secret for signing bearer tokens (must be strong in production)
	AuthTokenTTL time.Duration // How long issued tokens stay valid

	// S3 image storage configuration
	StorageS3Region          string // AWS region
	StorageS3Bucket          string // S3 bucket name
	StorageS3Prefix          string // Key prefix (e.g., "turfhub/")
	StorageS3AccessKeyID     string // Static AWS credentials; blank uses the default chain
	StorageS3SecretAccessKey string

	// Email/SMTP configuration
	MailSMTPHost string // SMTP server host (blank disables outbound mail; reset links are logged)
	MailSMTPPort int    // SMTP server port (e.g., 1025 for Mailpit, 587 for SES)
	MailSMTPUser string // SMTP username
	MailSMTPPass string // SMTP password
	MailFrom     string // From email address (e.g., noreply@turfhub.com)
	MailFromName string // From display name (e.g., TurfHub)

	// Base URL for email links (password reset, etc.)
	BaseURL string // e.g., "https://turfhub.com" or "http://localhost:3000"

	// SiteName is used in outbound email copy.
	SiteName string

	// AllowedOrigins is a comma-separated CORS origin list for browser clients.
	AllowedOrigins string

	// AdminEmail, when set, is granted the global platform permissions on
	// startup (the account must already exist).
	AdminEmail string
}
