package face

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestLockTable_SerializesSameOwner(t *testing.T) {
	locks := newLockTable()
	ctx := context.Background()

	release, err := locks.acquire(ctx, "alice")
	if err != nil {
		t.Fatal(err)
	}

	acquired := make(chan struct{})
	go func() {
		r, err := locks.acquire(ctx, "alice")
		if err != nil {
			t.Errorf("second acquire failed: %v", err)
			close(acquired)
			return
		}
		close(acquired)
		r()
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire succeeded while lock was held")
	case <-time.After(20 * time.Millisecond):
	}

	release()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire never completed after release")
	}
}

func TestLockTable_CancelledContext(t *testing.T) {
	locks := newLockTable()

	release, err := locks.acquire(context.Background(), "alice")
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = locks.acquire(ctx, "alice")
	if !errors.Is(err, ErrLockUnavailable) {
		t.Fatalf("expected ErrLockUnavailable, got %v", err)
	}
}

func TestLockTable_MutualExclusionUnderContention(t *testing.T) {
	locks := newLockTable()
	ctx := context.Background()

	var counter, max int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locks.acquire(ctx, "alice")
			if err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			mu.Lock()
			counter++
			if counter > max {
				max = counter
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			counter--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()

	if max != 1 {
		t.Errorf("expected at most 1 holder at a time, saw %d", max)
	}
}

func TestShardFor_Deterministic(t *testing.T) {
	if shardFor("alice") != shardFor("alice") {
		t.Error("expected the same owner to hash to the same shard")
	}
	if shardFor("alice") >= lockShards {
		t.Error("shard out of range")
	}
}
