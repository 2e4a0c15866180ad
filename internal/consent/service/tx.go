package service

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	dErrors "custodia/pkg/domain-errors"
	platformsync "custodia/pkg/platform/sync"
)

// Shard contention metrics for monitoring lock behavior.
var (
	shardLockWaitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "custodia_registration_shard_lock_wait_seconds",
		Help:    "Time spent waiting to acquire the per-user registration lock",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})
	shardLockAcquisitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "custodia_registration_shard_lock_acquisitions_total",
		Help: "Total number of registration lock acquisitions",
	})
)

// RegistrationTx serializes consent mutations per user. Registrations for the
// same user must never interleave; different users proceed in parallel.
type RegistrationTx interface {
	RunInTx(ctx context.Context, userID string, fn func(ctx context.Context, store Store) error) error
}

// defaultRegistrationTxTimeout bounds a registration transaction.
const defaultRegistrationTxTimeout = 5 * time.Second

// shardedRegistrationTx guards the store with a per-user sharded mutex. The
// SQL stores additionally make Replace a single atomic upsert; the lock here
// is what keeps validate-then-write sequences for one user from interleaving.
type shardedRegistrationTx struct {
	mu      *platformsync.ShardedMutex
	store   Store
	timeout time.Duration
}

// NewShardedTx wraps a store in a per-user mutual exclusion boundary.
func NewShardedTx(store Store, timeout time.Duration) RegistrationTx {
	return &shardedRegistrationTx{
		mu:      platformsync.NewShardedMutex(),
		store:   store,
		timeout: timeout,
	}
}

func (t *shardedRegistrationTx) RunInTx(ctx context.Context, userID string, fn func(ctx context.Context, store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultRegistrationTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	lockStart := time.Now()
	t.mu.Lock(userID)
	shardLockWaitDuration.Observe(time.Since(lockStart).Seconds())
	shardLockAcquisitions.Inc()
	defer t.mu.Unlock(userID)

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(ctx, t.store)
}
