// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fieldworks/turfhub/internal/app/system/auth"
	"github.com/fieldworks/turfhub/internal/app/system/authz"
	"github.com/fieldworks/turfhub/internal/app/system/imagestore"
	"github.com/fieldworks/turfhub/internal/app/system/mailer"
	"github.com/fieldworks/turfhub/internal/app/system/txn"
)

// DBDeps holds database/back-end dependencies for the app.
// Extend this struct as your app evolves.
type DBDeps struct {
	TurfHubMongoClient   *mongo.Client
	TurfHubMongoDatabase *mongo.Database

	// Images uploads to and deletes from S3.
	Images *imagestore.Store

	// Mailer is nil when no SMTP host is configured; callers fall back to
	// logging instead of sending.
	Mailer *mailer.Mailer

	// TokenSvc signs and verifies bearer tokens.
	TokenSvc *auth.TokenService

	// Runner wraps multi-document writes in transactions where the
	// deployment supports them.
	Runner *txn.Runner

	// Checker answers permission questions for the authorization layer.
	Checker *authz.Checker
}
