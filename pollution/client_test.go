package pollution

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const sampleBody = `{
	"coord": {"lat": 33.5731, "lon": -7.5898},
	"list": [{
		"dt": 1735732800,
		"main": {"aqi": 87},
		"components": {"co": 201.9, "no": 0.1, "no2": 12.3, "o3": 68.6,
			"so2": 4.5, "pm2_5": 11.2, "pm10": 18.7, "nh3": 0.9}
	}]
}`

func TestCurrentDecodesWireShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pollution/current" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("lat"); got != "33.5731" {
			t.Errorf("lat = %q", got)
		}
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	reading, err := c.Current(context.Background(), 33.5731, -7.5898)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if reading.AQI != 87 {
		t.Errorf("AQI = %d, want 87", reading.AQI)
	}
	if reading.Components.PM25 != 11.2 {
		t.Errorf("PM2.5 = %v, want 11.2", reading.Components.PM25)
	}
	if want := time.Unix(1735732800, 0).UTC(); !reading.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", reading.Timestamp, want)
	}
}

func TestCurrentEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"coord":{"lat":0,"lon":0},"list":[]}`)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL).Current(context.Background(), 0, 0); err == nil {
		t.Error("expected error for empty reading list")
	}
}

func TestForecastDecodesReadings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pollution/forecast" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("lon"); got != "-7.5898" {
			t.Errorf("lon = %q", got)
		}
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	readings, err := NewClient(srv.URL).Forecast(context.Background(), 33.5731, -7.5898)
	if err != nil {
		t.Fatalf("Forecast: %v", err)
	}
	if len(readings) != 1 {
		t.Fatalf("len = %d, want 1", len(readings))
	}
	if readings[0].AQI != 87 || readings[0].Components.O3 != 68.6 {
		t.Errorf("reading = %+v", readings[0])
	}
}

func TestHistoryPassesRange(t *testing.T) {
	start := time.Unix(1735646400, 0)
	end := time.Unix(1735732800, 0)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/pollution/history" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("start"); got != "1735646400" {
			t.Errorf("start = %q", got)
		}
		if got := r.URL.Query().Get("end"); got != "1735732800" {
			t.Errorf("end = %q", got)
		}
		fmt.Fprint(w, sampleBody)
	}))
	defer srv.Close()

	readings, err := NewClient(srv.URL).History(context.Background(), 33.5, -7.5, start, end)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(readings) != 1 {
		t.Errorf("len = %d, want 1", len(readings))
	}
}
