// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devAuthSecret is the default token signing secret. It is refused when
// the app starts in production mode.
const devAuthSecret = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for TurfHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, auth_secret, etc.
//   - Environment variables: TURFHUB_MONGO_URI, TURFHUB_AUTH_SECRET, etc.
//   - Command-line flags: --mongo_uri, --auth_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "turf_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer token auth
	{Name: "auth_secret", Default: devAuthSecret, Desc: "Token signing secret (must be strong in production)"},
	{Name: "auth_token_ttl", Default: "24h", Desc: "Issued token lifetime (e.g., 24h, 30m)"},

	// S3 image storage
	{Name: "storage_s3_region", Default: "", Desc: "AWS region for S3"},
	{Name: "storage_s3_bucket", Default: "", Desc: "S3 bucket name for turf and review images"},
	{Name: "storage_s3_prefix", Default: "turfhub/", Desc: "S3 key prefix"},
	{Name: "storage_s3_access_key_id", Default: "", Desc: "AWS access key ID (blank uses the default credential chain)"},
	{Name: "storage_s3_secret_access_key", Default: "", Desc: "AWS secret access key"},

	// Email/SMTP configuration
	{Name: "mail_smtp_host", Default: "", Desc: "SMTP server host (blank disables outbound mail)"},
	{Name: "mail_smtp_port", Default: 1025, Desc: "SMTP server port"},
	{Name: "mail_smtp_user", Default: "", Desc: "SMTP username"},
	{Name: "mail_smtp_pass", Default: "", Desc: "SMTP password"},
	{Name: "mail_from", Default: "noreply@turfhub.com", Desc: "From email address"},
	{Name: "mail_from_name", Default: "TurfHub", Desc: "From display name"},

	// Base URL for email links (password reset, etc.)
	{Name: "base_url", Default: "http://localhost:3000", Desc: "Base URL for email links"},
	{Name: "site_name", Default: "TurfHub", Desc: "Site name used in outbound email"},

	// Browser clients
	{Name: "allowed_origins", Default: "*", Desc: "Comma-separated CORS origins"},

	// Platform admin bootstrap
	{Name: "admin_email", Default: "", Desc: "Email of the platform admin (granted global permissions on startup)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, TURFHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "TURFHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		// Auth
		AuthSecret:   appValues.String("auth_secret"),
		AuthTokenTTL: appValues.Duration("auth_token_ttl", 24*time.Hour),

		// S3 image storage
		StorageS3Region:          appValues.String("storage_s3_region"),
		StorageS3Bucket:          appValues.String("storage_s3_bucket"),
		StorageS3Prefix:          appValues.String("storage_s3_prefix"),
		StorageS3AccessKeyID:     appValues.String("storage_s3_access_key_id"),
		StorageS3SecretAccessKey: appValues.String("storage_s3_secret_access_key"),

		// Email/SMTP
		MailSMTPHost: appValues.String("mail_smtp_host"),
		MailSMTPPort: appValues.Int("mail_smtp_port"),
		MailSMTPUser: appValues.String("mail_smtp_user"),
		MailSMTPPass: appValues.String("mail_smtp_pass"),
		MailFrom:     appValues.String("mail_from"),
		MailFromName: appValues.String("mail_from_name"),

		// Links and copy
		BaseURL:  appValues.String("base_url"),
		SiteName: appValues.String("site_name"),

		// Browser clients
		AllowedOrigins: appValues.String("allowed_origins"),

		// Platform admin
		AdminEmail: appValues.String("admin_email"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// TurfHub validates the MongoDB URI format to catch configuration errors
// early, and refuses the development auth secret in production.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.AuthTokenTTL <= 0 {
		return fmt.Errorf("auth_token_ttl must be positive")
	}

	if coreCfg.Env == "prod" {
		if appCfg.AuthSecret == devAuthSecret || len(appCfg.AuthSecret) < 32 {
			return fmt.Errorf("auth_secret must be set to a strong value (32+ chars) in production")
		}
		if appCfg.StorageS3Bucket == "" || appCfg.StorageS3Region == "" {
			return fmt.Errorf("storage_s3_bucket and storage_s3_region are required in production")
		}
	}

	return nil
}
