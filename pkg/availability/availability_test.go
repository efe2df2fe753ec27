package availability_test

import (
	"errors"
	"testing"

	"github.com/seojinp/moyeora/pkg/availability"
	"github.com/seojinp/moyeora/pkg/busy"
	"github.com/seojinp/moyeora/pkg/testutil"
	"github.com/seojinp/moyeora/pkg/timegrid"
)

func newFixture(t *testing.T) (*availability.Finder, *busy.Service) {
	t.Helper()
	gw := testutil.NewGateway(t)
	r := testutil.NewRoster(t)
	return availability.New(gw, r), busy.New(gw, r)
}

func TestSearchSkipsConflictingWindows(t *testing.T) {
	finder, busyService := newFixture(t)

	// alice is busy 18:00-19:00; a 60-minute meeting between 18:00 and
	// 20:00 can only start at 19:00.
	if _, err := busyService.Add("alice", "2024-01-01", "18:00", "19:00", ""); err != nil {
		t.Fatalf("Add: %v", err)
	}

	candidates, err := finder.Search(availability.Params{
		Date:            "2024-01-01",
		From:            "18:00",
		To:              "20:00",
		DurationMinutes: 60,
		StepMinutes:     30,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	if len(candidates) != 1 {
		t.Fatalf("got %d candidates, want 1: %+v", len(candidates), candidates)
	}
	if candidates[0].Start != "19:00" || candidates[0].End != "20:00" {
		t.Errorf("candidate = %+v, want 19:00~20:00", candidates[0])
	}
}

func TestSearchHonorsEveryPartysIntervals(t *testing.T) {
	finder, busyService := newFixture(t)

	busyService.Add("alice", "2024-01-01", "10:00", "12:00", "")
	busyService.Add("bob", "2024-01-01", "14:00", "16:00", "")

	candidates, err := finder.Search(availability.Params{
		Date:            "2024-01-01",
		From:            "09:00",
		To:              "18:00",
		DurationMinutes: 60,
		StepMinutes:     60,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}

	// Every returned window must be conflict-free against both parties.
	for _, c := range candidates {
		cs, _ := timegrid.ToMinutes(c.Start)
		ce, _ := timegrid.ToMinutes(c.End)
		for _, b := range [][2]int{{600, 720}, {840, 960}} {
			if timegrid.Overlaps(cs, ce, b[0], b[1]) {
				t.Errorf("candidate %+v overlaps busy interval %v", c, b)
			}
		}
	}

	// 09, 12, 13, 16, 17 are the free hour starts.
	want := []string{"09:00", "12:00", "13:00", "16:00", "17:00"}
	if len(candidates) != len(want) {
		t.Fatalf("got %d candidates %+v, want starts %v", len(candidates), candidates, want)
	}
	for i, c := range candidates {
		if c.Start != want[i] {
			t.Errorf("candidate[%d].Start = %s, want %s", i, c.Start, want[i])
		}
	}
}

func TestSearchAdjacentBusyDoesNotBlock(t *testing.T) {
	finder, busyService := newFixture(t)

	// Busy until exactly 10:00; a window starting at 10:00 is fine.
	busyService.Add("alice", "2024-01-01", "09:00", "10:00", "")

	candidates, err := finder.Search(availability.Params{
		Date:            "2024-01-01",
		From:            "10:00",
		To:              "11:00",
		DurationMinutes: 60,
		StepMinutes:     30,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Start != "10:00" {
		t.Errorf("adjacent busy interval blocked the 10:00 window: %+v", candidates)
	}
}

func TestSearchEmptyWhenDurationExceedsRange(t *testing.T) {
	finder, _ := newFixture(t)

	candidates, err := finder.Search(availability.Params{
		Date:            "2024-01-01",
		From:            "18:00",
		To:              "19:00",
		DurationMinutes: 90,
		StepMinutes:     30,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("expected no candidates, got %+v", candidates)
	}
}

func TestSearchUpToEndOfDay(t *testing.T) {
	finder, _ := newFixture(t)

	candidates, err := finder.Search(availability.Params{
		Date:            "2024-01-01",
		From:            "23:00",
		To:              "24:00",
		DurationMinutes: 60,
		StepMinutes:     30,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 || candidates[0].End != "24:00" {
		t.Errorf("expected the 23:00~24:00 window, got %+v", candidates)
	}
}

func TestSearchCapsCandidates(t *testing.T) {
	finder, _ := newFixture(t)

	candidates, err := finder.Search(availability.Params{
		Date:            "2024-01-01",
		From:            "00:00",
		To:              "24:00",
		DurationMinutes: 30,
		StepMinutes:     30,
		MaxCandidates:   5,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 5 {
		t.Errorf("got %d candidates, want the cap of 5", len(candidates))
	}
	// Ascending start order.
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Start <= candidates[i-1].Start {
			t.Errorf("candidates out of order: %+v", candidates)
			break
		}
	}
}

func TestSearchValidatesParams(t *testing.T) {
	finder, _ := newFixture(t)

	cases := []struct {
		name    string
		p       availability.Params
		wantErr error
	}{
		{"bad date", availability.Params{Date: "01-01-2024", From: "10:00", To: "12:00", DurationMinutes: 30, StepMinutes: 30}, availability.ErrBadSearch},
		{"bad from", availability.Params{Date: "2024-01-01", From: "10:70", To: "12:00", DurationMinutes: 30, StepMinutes: 30}, timegrid.ErrBadClock},
		{"from not before to", availability.Params{Date: "2024-01-01", From: "12:00", To: "12:00", DurationMinutes: 30, StepMinutes: 30}, availability.ErrBadSearch},
		{"zero duration", availability.Params{Date: "2024-01-01", From: "10:00", To: "12:00", DurationMinutes: 0, StepMinutes: 30}, availability.ErrBadSearch},
		{"zero step", availability.Params{Date: "2024-01-01", From: "10:00", To: "12:00", DurationMinutes: 30, StepMinutes: 0}, availability.ErrBadSearch},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := finder.Search(tc.p); !errors.Is(err, tc.wantErr) {
				t.Errorf("Search = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestSearchReflectsCurrentStore(t *testing.T) {
	finder, busyService := newFixture(t)

	p := availability.Params{
		Date:            "2024-01-01",
		From:            "18:00",
		To:              "19:00",
		DurationMinutes: 60,
		StepMinutes:     30,
	}

	candidates, err := finder.Search(p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected the window to be free initially, got %+v", candidates)
	}

	busyService.Add("bob", "2024-01-01", "18:30", "19:30", "")

	candidates, err = finder.Search(p)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("search must recompute conflicts live, got %+v", candidates)
	}
}
