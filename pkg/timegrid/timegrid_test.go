package timegrid

import (
	"errors"
	"testing"
	"time"
)

func TestToMinutes(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 1440, false},
		{"24:01", 0, true},
		{"25:00", 0, true},
		{"12:60", 0, true},
		{"9:30", 0, true},
		{"0930", 0, true},
		{"", 0, true},
		{"ab:cd", 0, true},
	}

	for _, tc := range cases {
		got, err := ToMinutes(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ToMinutes(%q): expected error, got %d", tc.in, got)
			} else if !errors.Is(err, ErrBadClock) {
				t.Errorf("ToMinutes(%q): error %v is not ErrBadClock", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ToMinutes(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ToMinutes(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFromMinutes(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{570, "09:30"},
		{1439, "23:59"},
		{1440, "24:00"},
	}

	for _, tc := range cases {
		if got := FromMinutes(tc.in); got != tc.want {
			t.Errorf("FromMinutes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, clock := range []string{"00:00", "07:05", "12:00", "23:59", "24:00"} {
		m, err := ToMinutes(clock)
		if err != nil {
			t.Fatalf("ToMinutes(%q): %v", clock, err)
		}
		if got := FromMinutes(m); got != clock {
			t.Errorf("FromMinutes(ToMinutes(%q)) = %q", clock, got)
		}
	}
}

func TestOverlapsSymmetric(t *testing.T) {
	cases := [][4]int{
		{0, 60, 30, 90},
		{0, 60, 60, 120},
		{100, 200, 150, 160},
		{0, 1440, 720, 721},
		{0, 10, 20, 30},
	}

	for _, c := range cases {
		ab := Overlaps(c[0], c[1], c[2], c[3])
		ba := Overlaps(c[2], c[3], c[0], c[1])
		if ab != ba {
			t.Errorf("Overlaps%v = %v but reversed = %v", c, ab, ba)
		}
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	// Adjacent intervals share a boundary but not a minute.
	if Overlaps(0, 60, 60, 120) {
		t.Error("adjacent intervals must not overlap")
	}
	if !Overlaps(0, 61, 60, 120) {
		t.Error("one shared minute must overlap")
	}
	if !Overlaps(0, 1440, 1380, 1440) {
		t.Error("end-of-day interval must overlap a full day")
	}
	if Overlaps(0, 0, 0, 10) {
		t.Error("empty interval must not overlap anything")
	}
}

func TestValidDate(t *testing.T) {
	valid := []string{"2024-01-01", "2024-12-31", "1999-02-28"}
	invalid := []string{"2024-13-01", "2024-00-10", "2024-01-32", "2024-1-1", "20240101", "today", ""}

	for _, d := range valid {
		if !ValidDate(d) {
			t.Errorf("ValidDate(%q) = false", d)
		}
	}
	for _, d := range invalid {
		if ValidDate(d) {
			t.Errorf("ValidDate(%q) = true", d)
		}
	}
}

func TestParseDay(t *testing.T) {
	// 2024-03-10 12:00 UTC is 2024-03-10 21:00 KST.
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		in   string
		want string
	}{
		{"", "2024-03-10"},
		{"today", "2024-03-10"},
		{"오늘", "2024-03-10"},
		{"Tomorrow", "2024-03-11"},
		{"내일", "2024-03-11"},
		{"2024-05-01", "2024-05-01"},
	}

	for _, tc := range cases {
		got, err := ParseDay(tc.in, now)
		if err != nil {
			t.Errorf("ParseDay(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseDay(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"yesterday", "2024-13-01", "01-01-2024"} {
		if _, err := ParseDay(bad, now); !errors.Is(err, ErrBadDate) {
			t.Errorf("ParseDay(%q): expected ErrBadDate, got %v", bad, err)
		}
	}
}

func TestParseDayCrossesMidnightInKST(t *testing.T) {
	// 2024-03-10 16:30 UTC is already 2024-03-11 01:30 in Seoul.
	now := time.Date(2024, 3, 10, 16, 30, 0, 0, time.UTC)

	got, err := ParseDay("today", now)
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if got != "2024-03-11" {
		t.Errorf("ParseDay(today) = %q, want 2024-03-11", got)
	}
}
