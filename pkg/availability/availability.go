// Package availability searches a day for meeting windows that conflict
// with no roster party's busy intervals. The search walks a stepped grid of
// start times; windows that only fit strictly between two grid points are
// not found, which is an accepted resolution limit.
package availability

import (
	"errors"
	"fmt"

	"github.com/seojinp/moyeora/pkg/gateway"
	"github.com/seojinp/moyeora/pkg/logger"
	"github.com/seojinp/moyeora/pkg/models"
	"github.com/seojinp/moyeora/pkg/roster"
	"github.com/seojinp/moyeora/pkg/timegrid"
)

// ErrBadSearch is returned when search parameters are malformed.
var ErrBadSearch = errors.New("bad search parameters")

// DefaultMaxCandidates caps a search that does not set its own limit.
const DefaultMaxCandidates = 20

// Params describes one availability search.
type Params struct {
	Date            string // YYYY-MM-DD
	From            string // HH:MM, inclusive lower bound for start times
	To              string // HH:MM or 24:00, exclusive upper bound for windows
	DurationMinutes int
	StepMinutes     int
	MaxCandidates   int // 0 means DefaultMaxCandidates
}

// Finder enumerates feasible meeting windows.
type Finder struct {
	gw     *gateway.Gateway
	roster *roster.Roster
	logger *logger.Logger
}

// New creates an availability finder.
func New(gw *gateway.Gateway, r *roster.Roster) *Finder {
	return &Finder{
		gw:     gw,
		roster: r,
		logger: logger.New("availability"),
	}
}

// Search returns up to MaxCandidates windows of DurationMinutes inside
// [From, To) on Date that overlap nobody's busy intervals, in ascending
// start order. No feasible window is an empty result, not an error.
func (f *Finder) Search(p Params) ([]models.Candidate, error) {
	fromM, toM, err := validate(p)
	if err != nil {
		return nil, err
	}

	maxCandidates := p.MaxCandidates
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}

	sched, err := f.gw.Load()
	if err != nil {
		return nil, err
	}

	// Conflicts are recomputed against the store on every search, so a
	// fresh busy entry is reflected immediately.
	busyByKey := make(map[string][][2]int)
	for _, b := range sched.BusyOn(p.Date, "") {
		bs, err := timegrid.ToMinutes(b.Start)
		if err != nil {
			return nil, err
		}
		be, err := timegrid.ToMinutes(b.End)
		if err != nil {
			return nil, err
		}
		busyByKey[b.OwnerKey] = append(busyByKey[b.OwnerKey], [2]int{bs, be})
	}

	var candidates []models.Candidate
	for t := fromM; t+p.DurationMinutes <= toM; t += p.StepMinutes {
		if f.windowFree(busyByKey, t, t+p.DurationMinutes) {
			candidates = append(candidates, models.Candidate{
				Start: timegrid.FromMinutes(t),
				End:   timegrid.FromMinutes(t + p.DurationMinutes),
			})
			if len(candidates) >= maxCandidates {
				break
			}
		}
	}

	f.logger.Debug("Search on %s %s~%s (%dm/%dm): %d candidates",
		p.Date, p.From, p.To, p.DurationMinutes, p.StepMinutes, len(candidates))
	return candidates, nil
}

// windowFree reports whether [startM, endM) overlaps no roster party's busy
// intervals, short-circuiting on the first conflict.
func (f *Finder) windowFree(busyByKey map[string][][2]int, startM, endM int) bool {
	for _, key := range f.roster.Keys() {
		for _, b := range busyByKey[key] {
			if timegrid.Overlaps(startM, endM, b[0], b[1]) {
				return false
			}
		}
	}
	return true
}

func validate(p Params) (fromM, toM int, err error) {
	if !timegrid.ValidDate(p.Date) {
		return 0, 0, fmt.Errorf("%w: date %q", ErrBadSearch, p.Date)
	}

	fromM, err = timegrid.ToMinutes(p.From)
	if err != nil {
		return 0, 0, err
	}
	toM, err = timegrid.ToMinutes(p.To)
	if err != nil {
		return 0, 0, err
	}

	if fromM >= toM {
		return 0, 0, fmt.Errorf("%w: from %s is not before to %s", ErrBadSearch, p.From, p.To)
	}
	if p.DurationMinutes <= 0 {
		return 0, 0, fmt.Errorf("%w: duration %d", ErrBadSearch, p.DurationMinutes)
	}
	if p.StepMinutes <= 0 {
		return 0, 0, fmt.Errorf("%w: step %d", ErrBadSearch, p.StepMinutes)
	}

	return fromM, toM, nil
}
