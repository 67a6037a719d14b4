package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestLocalLockerMutualExclusion(t *testing.T) {
	ctx := context.Background()
	locker := newLocalLocker()
	presID := uuid.New()

	const workers = 8
	const rounds = 50

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				unlock, err := locker.Lock(ctx, presID)
				if err != nil {
					t.Errorf("Lock: %v", err)
					return
				}
				mu.Lock()
				inCritical++
				if inCritical > maxInCritical {
					maxInCritical = inCritical
				}
				mu.Unlock()

				mu.Lock()
				inCritical--
				mu.Unlock()
				unlock()
			}
		}()
	}
	wg.Wait()

	if maxInCritical != 1 {
		t.Fatalf("lock admitted %d goroutines at once", maxInCritical)
	}
}

func TestLocalLockerReapsReleasedEntries(t *testing.T) {
	ctx := context.Background()
	locker := newLocalLocker()

	for i := 0; i < 20; i++ {
		unlock, err := locker.Lock(ctx, uuid.New())
		if err != nil {
			t.Fatalf("Lock: %v", err)
		}
		unlock()
	}

	locker.mu.Lock()
	size := len(locker.locks)
	locker.mu.Unlock()
	if size != 0 {
		t.Fatalf("released entries must be removed, %d remain", size)
	}

	// an entry held by one caller survives while a second caller waits on it
	presID := uuid.New()
	unlockA, err := locker.Lock(ctx, presID)
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	acquired := make(chan struct{})
	go func() {
		unlockB, err := locker.Lock(ctx, presID)
		if err != nil {
			t.Errorf("Lock: %v", err)
			return
		}
		unlockB()
		close(acquired)
	}()

	time.Sleep(20 * time.Millisecond)
	unlockA()
	<-acquired

	locker.mu.Lock()
	size = len(locker.locks)
	locker.mu.Unlock()
	if size != 0 {
		t.Fatalf("entry must be removed after the last unlock, %d remain", size)
	}
}

func TestLocalLockerIndependentPresentations(t *testing.T) {
	ctx := context.Background()
	locker := newLocalLocker()

	unlockA, err := locker.Lock(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Lock a: %v", err)
	}
	defer unlockA()

	// a different presentation must not block behind the first
	done := make(chan struct{})
	go func() {
		unlockB, err := locker.Lock(ctx, uuid.New())
		if err != nil {
			t.Errorf("Lock b: %v", err)
			return
		}
		unlockB()
		close(done)
	}()
	<-done
}
