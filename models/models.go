package models

import "time"

// Location identifies a monitored geographic point. The built-in catalog keys
// locations by city name, which is also what the map layer displays.
type Location struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// Components holds the pollutant concentrations (µg/m³) reported by the
// pollution data service.
type Components struct {
	CO   float64 `json:"co"`
	NO   float64 `json:"no"`
	NO2  float64 `json:"no2"`
	O3   float64 `json:"o3"`
	SO2  float64 `json:"so2"`
	PM25 float64 `json:"pm2_5"`
	PM10 float64 `json:"pm10"`
	NH3  float64 `json:"nh3"`
}

// LocationReading is a single pollution measurement for one location.
// Readings are immutable once fetched; a refresh cycle produces new ones.
type LocationReading struct {
	LocationID string     `json:"location_id"`
	Lat        float64    `json:"lat"`
	Lon        float64    `json:"lon"`
	Timestamp  time.Time  `json:"timestamp"`
	AQI        int        `json:"aqi"`
	Components Components `json:"components"`
}

// SnapshotEntry pairs a location with its reading. Reading is nil when the
// fetch for that location failed; the failure is attached to the entry and
// never escalates to the snapshot as a whole.
type SnapshotEntry struct {
	Location Location
	Reading  *LocationReading
	Err      error
}

// Present reports whether the entry carries a usable reading.
func (e SnapshotEntry) Present() bool { return e.Reading != nil }

// AggregatedSnapshot is a point-in-time view over all monitored locations,
// ordered the same way as the location list that produced it.
type AggregatedSnapshot struct {
	TakenAt time.Time
	Entries []SnapshotEntry
}

// ByID returns the entry for the given location id, or nil.
func (s *AggregatedSnapshot) ByID(locationID string) *SnapshotEntry {
	for i := range s.Entries {
		if s.Entries[i].Location.ID == locationID {
			return &s.Entries[i]
		}
	}
	return nil
}

// Present counts entries that carry a reading.
func (s *AggregatedSnapshot) Present() int {
	n := 0
	for _, e := range s.Entries {
		if e.Present() {
			n++
		}
	}
	return n
}

// AlertEvent is a threshold-crossing alert delivered over the push channel.
type AlertEvent struct {
	EventID    string    `json:"event_id"`
	UserID     string    `json:"user_id"`
	LocationID string    `json:"location_id,omitempty"`
	AQI        int       `json:"aqi"`
	Message    string    `json:"message"`
	Severity   Severity  `json:"severity"`
	ReceivedAt time.Time `json:"received_at"`
}

// VerificationChallenge marks an email with a pending verification or reset
// code. The code itself lives server-side only.
type VerificationChallenge struct {
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issued_at"`
}

// FavoriteWatch ties a user to a location on their watch list. The alert
// pipeline only reads these; it never creates or removes them.
type FavoriteWatch struct {
	UserID     string    `json:"user_id"`
	LocationID string    `json:"location_id"`
	Lat        float64   `json:"lat"`
	Lon        float64   `json:"lon"`
	CreatedAt  time.Time `json:"created_at"`
}
