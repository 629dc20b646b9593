package txn_test

import (
	"context"
	"testing"

	"github.com/fieldworks/turfhub/internal/app/system/txn"
	"go.uber.org/zap"
)

func TestWithTransaction_NilClientRunsSequentially(t *testing.T) {
	r := txn.NewRunner(nil, zap.NewNop())

	ran := false
	err := r.WithTransaction(context.Background(), func(ctx context.Context) error {
		ran = true
		return nil
	})
	if err != nil {
		t.Fatalf("WithTransaction failed: %v", err)
	}
	if !ran {
		t.Error("expected fn to run")
	}
}

func TestWithTransaction_PropagatesError(t *testing.T) {
	r := txn.NewRunner(nil, zap.NewNop())

	wantErr := context.DeadlineExceeded
	err := r.WithTransaction(context.Background(), func(ctx context.Context) error {
		return wantErr
	})
	if err != wantErr {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}
