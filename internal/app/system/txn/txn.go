// Package txn wraps multi-document mutations in a MongoDB transaction.
//
// Review creation and owner assignment touch two or three documents; running
// them in a transaction closes the partial-write window a crash between
// sequential steps would otherwise leave. Deployments without replica sets
// (standalone mongod, some DocumentDB tiers) do not support transactions, so
// the runner falls back to executing the steps sequentially and logs that
// the atomicity guarantee is reduced.
package txn

import (
	"context"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner executes functions transactionally when the deployment allows it.
type Runner struct {
	client *mongo.Client
	log    *zap.Logger

	mu          sync.Mutex
	unsupported bool
}

// NewRunner builds a Runner bound to the given client.
func NewRunner(client *mongo.Client, logger *zap.Logger) *Runner {
	return &Runner{client: client, log: logger}
}

// WithTransaction runs fn inside a transaction. On deployments that reject
// transactions it runs fn once, non-transactionally, and remembers the
// downgrade so later calls skip the failed session dance.
func (r *Runner) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	unsupported := r.unsupported
	r.mu.Unlock()

	if unsupported || r.client == nil {
		return fn(ctx)
	}

	session, err := r.client.StartSession()
	if err != nil {
		return fn(ctx)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && isUnsupported(err) {
		r.mu.Lock()
		r.unsupported = true
		r.mu.Unlock()
		if r.log != nil {
			r.log.Warn("transactions unsupported by deployment; falling back to sequential writes")
		}
		return fn(ctx)
	}
	return err
}

func isUnsupported(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "transaction numbers are only allowed") ||
		strings.Contains(s, "transactions are not supported") ||
		strings.Contains(s, "illegaloperation")
}
