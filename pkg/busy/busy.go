// Package busy owns the collection of busy intervals: the half-open time
// ranges each party has declared unavailable. All mutations are scoped to
// the owning party and go through the persistence gateway.
package busy

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/seojinp/moyeora/pkg/gateway"
	"github.com/seojinp/moyeora/pkg/logger"
	"github.com/seojinp/moyeora/pkg/models"
	"github.com/seojinp/moyeora/pkg/roster"
	"github.com/seojinp/moyeora/pkg/timegrid"
	"github.com/seojinp/moyeora/pkg/util"
)

var (
	// ErrInvalidRange means start is not strictly before end.
	ErrInvalidRange = errors.New("start must be before end")
	// ErrNotFound means no busy interval has the given id.
	ErrNotFound = errors.New("busy interval not found")
	// ErrNotOwner means the caller tried to remove someone else's interval.
	ErrNotOwner = errors.New("busy interval owned by someone else")
)

// Service provides busy-interval management.
type Service struct {
	gw     *gateway.Gateway
	roster *roster.Roster
	logger *logger.Logger
}

// New creates a busy-interval service.
func New(gw *gateway.Gateway, r *roster.Roster) *Service {
	return &Service{
		gw:     gw,
		roster: r,
		logger: logger.New("busy"),
	}
}

// Add records a new busy interval for ownerKey. The interval must be a
// well-formed, non-empty half-open range on a valid date.
func (s *Service) Add(ownerKey, date, start, end, reason string) (*models.BusyInterval, error) {
	if !s.roster.Has(ownerKey) {
		return nil, fmt.Errorf("%w: %q", roster.ErrUnknownParty, ownerKey)
	}
	if !timegrid.ValidDate(date) {
		return nil, fmt.Errorf("%w: %q", timegrid.ErrBadDate, date)
	}

	startM, err := timegrid.ToMinutes(start)
	if err != nil {
		return nil, err
	}
	endM, err := timegrid.ToMinutes(end)
	if err != nil {
		return nil, err
	}
	if startM >= endM {
		return nil, fmt.Errorf("%w: %s~%s", ErrInvalidRange, start, end)
	}

	interval := models.BusyInterval{
		ID:        util.NewShortID(),
		OwnerKey:  ownerKey,
		Date:      date,
		Start:     start,
		End:       end,
		Reason:    reason,
		CreatedAt: time.Now(),
	}

	err = s.gw.Atomically(func(sched *models.Schedule) error {
		sched.Busy = append(sched.Busy, interval)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Added busy interval %s for %s on %s %s~%s", interval.ID, ownerKey, date, start, end)
	return &interval, nil
}

// List returns busy intervals sorted by (date, start), insertion order on
// ties. An empty filterKey returns everyone's intervals.
func (s *Service) List(filterKey string) ([]models.BusyInterval, error) {
	sched, err := s.gw.Load()
	if err != nil {
		return nil, err
	}

	var out []models.BusyInterval
	for _, b := range sched.Busy {
		if filterKey != "" && b.OwnerKey != filterKey {
			continue
		}
		out = append(out, b)
	}

	// Zero-padded HH:MM and ISO dates sort correctly as strings.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date+out[i].Start < out[j].Date+out[j].Start
	})

	return out, nil
}

// Remove deletes the interval with the given id if callerKey owns it, and
// returns the removed record.
func (s *Service) Remove(callerKey, id string) (*models.BusyInterval, error) {
	if !s.roster.Has(callerKey) {
		return nil, fmt.Errorf("%w: %q", roster.ErrUnknownParty, callerKey)
	}

	var removed models.BusyInterval
	err := s.gw.Atomically(func(sched *models.Schedule) error {
		for i, b := range sched.Busy {
			if b.ID != id {
				continue
			}
			if b.OwnerKey != callerKey {
				return fmt.Errorf("%w: %s", ErrNotOwner, id)
			}
			removed = b
			sched.Busy = append(sched.Busy[:i], sched.Busy[i+1:]...)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Removed busy interval %s for %s", id, callerKey)
	return &removed, nil
}

// Clear deletes every interval owned by callerKey and returns how many
// were removed.
func (s *Service) Clear(callerKey string) (int, error) {
	if !s.roster.Has(callerKey) {
		return 0, fmt.Errorf("%w: %q", roster.ErrUnknownParty, callerKey)
	}

	removed := 0
	err := s.gw.Atomically(func(sched *models.Schedule) error {
		kept := sched.Busy[:0]
		for _, b := range sched.Busy {
			if b.OwnerKey == callerKey {
				removed++
				continue
			}
			kept = append(kept, b)
		}
		sched.Busy = kept
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("Cleared %d busy intervals for %s", removed, callerKey)
	return removed, nil
}
