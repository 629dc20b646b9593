// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	permissionstore "github.com/fieldworks/turfhub/internal/app/store/permissions"
	rolestore "github.com/fieldworks/turfhub/internal/app/store/roles"
	userstore "github.com/fieldworks/turfhub/internal/app/store/users"
	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/authz"
	"github.com/fieldworks/turfhub/internal/app/system/imagestore"
	"github.com/fieldworks/turfhub/internal/app/system/indexes"
	"github.com/fieldworks/turfhub/internal/app/system/mailer"
	"github.com/fieldworks/turfhub/internal/app/system/timeouts"
	"github.com/fieldworks/turfhub/internal/app/system/txn"
	"github.com/fieldworks/turfhub/internal/app/system/validators"
)

// ConnectDB establishes the MongoDB connection and builds the shared
// back-end clients (S3 image store, mailer, token service, transaction
// runner, permission checker) that handlers receive through DBDeps.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	clientOpts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("ping mongodb: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	db := client.Database(appCfg.MongoDatabase)

	images, err := imagestore.New(ctx, imagestore.Config{
		Region:          appCfg.StorageS3Region,
		Bucket:          appCfg.StorageS3Bucket,
		Prefix:          appCfg.StorageS3Prefix,
		AccessKeyID:     appCfg.StorageS3AccessKeyID,
		SecretAccessKey: appCfg.StorageS3SecretAccessKey,
	}, logger)
	if err != nil {
		_ = client.Disconnect(ctx)
		return DBDeps{}, fmt.Errorf("init image store: %w", err)
	}

	var m *mailer.Mailer
	if appCfg.MailSMTPHost != "" {
		m = mailer.New(mailer.Config{
			Host:     appCfg.MailSMTPHost,
			Port:     appCfg.MailSMTPPort,
			User:     appCfg.MailSMTPUser,
			Pass:     appCfg.MailSMTPPass,
			From:     appCfg.MailFrom,
			FromName: appCfg.MailFromName,
		}, logger)
	} else {
		logger.Info("no SMTP host configured; outbound mail disabled")
	}

	checker := authz.NewChecker(userstore.New(db), rolestore.New(db), permissionstore.New(db), logger)

	return DBDeps{
		TurfHubMongoClient:   client,
		TurfHubMongoDatabase: db,
		Images:               images,
		Mailer:               m,
		TokenSvc:             auth.NewTokenService(appCfg.AuthSecret, appCfg.AuthTokenTTL, logger),
		Runner:               txn.NewRunner(client, logger),
		Checker:              checker,
	}, nil
}

// EnsureSchema creates collections with their validators, builds indexes,
// and seeds the permission catalog. All three are idempotent, so this runs
// on every startup.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.TurfHubMongoDatabase

	if err := validators.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure validators: %w", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}
	if err := permissionstore.New(db).Seed(ctx); err != nil {
		return fmt.Errorf("seed permissions: %w", err)
	}

	logger.Info("schema ensured",
		zap.String("database", appCfg.MongoDatabase))
	return nil
}
