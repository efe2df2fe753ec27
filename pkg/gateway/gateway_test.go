package gateway_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/seojinp/moyeora/pkg/models"
	"github.com/seojinp/moyeora/pkg/testutil"
)

func TestLoadEmptyStore(t *testing.T) {
	gw := testutil.NewGateway(t)

	sched, err := gw.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sched.Busy) != 0 || len(sched.Proposals) != 0 {
		t.Errorf("fresh store should be empty, got %+v", sched)
	}
}

func TestAtomicallyPersists(t *testing.T) {
	gw := testutil.NewGateway(t)

	err := gw.Atomically(func(s *models.Schedule) error {
		s.Busy = append(s.Busy, models.BusyInterval{ID: "x1", OwnerKey: "alice", Date: "2024-01-01", Start: "10:00", End: "11:00"})
		return nil
	})
	if err != nil {
		t.Fatalf("Atomically: %v", err)
	}

	sched, err := gw.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sched.Busy) != 1 || sched.Busy[0].ID != "x1" {
		t.Errorf("update not persisted: %+v", sched.Busy)
	}
}

func TestAtomicallyAbortsOnError(t *testing.T) {
	gw := testutil.NewGateway(t)

	wantErr := fmt.Errorf("nope")
	err := gw.Atomically(func(s *models.Schedule) error {
		s.Busy = append(s.Busy, models.BusyInterval{ID: "ghost"})
		return wantErr
	})
	if err == nil {
		t.Fatal("expected the update error to propagate")
	}

	sched, err := gw.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sched.Busy) != 0 {
		t.Errorf("failed update must not persist, got %+v", sched.Busy)
	}
}

func TestAtomicallySerializesConcurrentWriters(t *testing.T) {
	gw := testutil.NewGateway(t)

	const writers = 32
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(n int) {
			defer wg.Done()
			err := gw.Atomically(func(s *models.Schedule) error {
				s.Busy = append(s.Busy, models.BusyInterval{ID: fmt.Sprintf("b%02d", n), OwnerKey: "alice"})
				return nil
			})
			if err != nil {
				t.Errorf("writer %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	sched, err := gw.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(sched.Busy) != writers {
		t.Errorf("lost updates: got %d intervals, want %d", len(sched.Busy), writers)
	}
}
