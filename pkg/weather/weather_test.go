package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCurrent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Busan" {
			t.Errorf("q = %q, want Busan", got)
		}
		if got := r.URL.Query().Get("appid"); got != "test-key" {
			t.Errorf("appid = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"name": "Busan",
			"weather": [{"description": "맑음"}],
			"main": {"temp": 21.4, "feels_like": 20.6, "humidity": 40},
			"wind": {"speed": 2.5}
		}`))
	}))
	defer srv.Close()

	c := New("test-key", "Seoul", "metric", "kr")
	c.SetBaseURL(srv.URL)

	report, err := c.Current(context.Background(), "Busan")
	if err != nil {
		t.Fatalf("Current: %v", err)
	}

	if report.City != "Busan" || report.Description != "맑음" {
		t.Errorf("report = %+v", report)
	}
	if report.Temp != 21 || report.FeelsLike != 21 {
		t.Errorf("rounding off: temp %d feels %d", report.Temp, report.FeelsLike)
	}
	if len(report.Nags) != 0 {
		t.Errorf("mild weather should produce no nags: %v", report.Nags)
	}
}

func TestCurrentUsesDefaultCity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "Seoul" {
			t.Errorf("q = %q, want the default city", got)
		}
		w.Write([]byte(`{"name":"Seoul","weather":[{"description":"fine"}],"main":{},"wind":{}}`))
	}))
	defer srv.Close()

	c := New("test-key", "Seoul", "", "")
	c.SetBaseURL(srv.URL)

	if _, err := c.Current(context.Background(), ""); err != nil {
		t.Fatalf("Current: %v", err)
	}
}

func TestCurrentAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New("bad-key", "", "", "")
	c.SetBaseURL(srv.URL)

	if _, err := c.Current(context.Background(), "Seoul"); err == nil {
		t.Fatal("expected an error on non-200 response")
	}
}

func TestDisabledWithoutKey(t *testing.T) {
	c := New("", "", "", "")
	if c.Enabled() {
		t.Error("Enabled() = true without an API key")
	}
	if _, err := c.Current(context.Background(), "Seoul"); err == nil {
		t.Error("Current must fail without an API key")
	}
}

func TestNags(t *testing.T) {
	cases := []struct {
		name     string
		feels    float64
		humidity int
		wind     float64
		want     int
	}{
		{"mild", 15, 40, 2, 0},
		{"freezing", -3, 40, 2, 1},
		{"chilly", 5, 40, 2, 1},
		{"hot", 30, 40, 2, 1},
		{"humid", 15, 80, 2, 1},
		{"windy", 15, 40, 7, 1},
		{"hot humid windy", 30, 90, 8, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := nags(tc.feels, tc.humidity, tc.wind); len(got) != tc.want {
				t.Errorf("nags(%v, %d, %v) = %v, want %d entries", tc.feels, tc.humidity, tc.wind, got, tc.want)
			}
		})
	}
}
