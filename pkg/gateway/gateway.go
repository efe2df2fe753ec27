// Package gateway is the single entry point to the shared schedule state.
// Every mutation goes through Atomically, which admits one read-modify-write
// cycle at a time and persists the result before returning; concurrent votes
// and busy edits therefore never lose updates. Reads via Load may run
// concurrently with each other.
package gateway

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/seojinp/moyeora/pkg/models"
	"github.com/seojinp/moyeora/pkg/storage"
)

const scheduleKey = "schedule"

// Gateway serializes access to the persisted Schedule.
type Gateway struct {
	store *storage.Store
	mu    sync.Mutex
}

// New creates a gateway over the given store.
func New(store *storage.Store) *Gateway {
	return &Gateway{store: store}
}

// Load returns the current schedule snapshot. A store with no schedule yet
// yields an empty one.
func (g *Gateway) Load() (*models.Schedule, error) {
	var sched models.Schedule
	err := g.store.Get(scheduleKey, &sched)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return &models.Schedule{}, nil
		}
		return nil, errors.Wrap(err, "load schedule")
	}
	return &sched, nil
}

// Atomically runs update against the current schedule and persists the
// result. If update returns an error nothing is written and the error is
// passed through. Only one update is in flight at a time.
func (g *Gateway) Atomically(update func(*models.Schedule) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	sched, err := g.Load()
	if err != nil {
		return err
	}

	if err := update(sched); err != nil {
		return err
	}

	return errors.Wrap(g.store.Set(scheduleKey, sched), "save schedule")
}
