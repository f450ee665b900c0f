package face

import (
	"context"
	"fmt"
	"hash/fnv"
)

// lockShards is the size of the sharded owner lock table. Operations on the
// same owner always hash to the same shard, which serializes them; distinct
// owners only contend on hash collisions.
const lockShards = 64

// lockTable serializes mutations per owner id. Shards are buffered channels
// so acquisition can give up when the caller's context is done.
type lockTable struct {
	shards [lockShards]chan struct{}
}

func newLockTable() *lockTable {
	t := &lockTable{}
	for i := range t.shards {
		t.shards[i] = make(chan struct{}, 1)
	}
	return t
}

// acquire takes the lock shard for ownerID and returns a release function.
// Callers must release on every exit path. Failure to acquire before ctx is
// done surfaces as ErrLockUnavailable, a retryable transient error.
func (t *lockTable) acquire(ctx context.Context, ownerID string) (func(), error) {
	sem := t.shards[shardFor(ownerID)]
	select {
	case sem <- struct{}{}:
		return func() { <-sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLockUnavailable, ctx.Err())
	}
}

func shardFor(ownerID string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(ownerID))
	return h.Sum32() % lockShards
}
