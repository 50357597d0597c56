package pollution

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pollualert/core/models"
)

func testLocations(n int) []models.Location {
	locs := make([]models.Location, n)
	for i := range locs {
		locs[i] = models.Location{
			ID:   fmt.Sprintf("loc-%d", i),
			Name: fmt.Sprintf("City %d", i),
			Lat:  float64(30 + i),
			Lon:  float64(-7 - i),
		}
	}
	return locs
}

func TestSnapshotPartialFailure(t *testing.T) {
	locs := testLocations(5)
	boom := errors.New("connection refused")

	fetcher := FetcherFunc(func(_ context.Context, lat, _ float64) (*models.LocationReading, error) {
		if lat == locs[2].Lat {
			return nil, boom
		}
		return &models.LocationReading{AQI: 42, Lat: lat}, nil
	})

	agg := NewAggregator(fetcher, 4, time.Second)
	snap := agg.Snapshot(context.Background(), locs)

	if got := snap.Present(); got != 4 {
		t.Errorf("present entries = %d, want 4", got)
	}
	entry := snap.ByID("loc-2")
	if entry == nil {
		t.Fatal("failed slot missing from snapshot")
	}
	if entry.Present() {
		t.Error("failed slot reported a reading")
	}
	if !errors.Is(entry.Err, boom) {
		t.Errorf("entry.Err = %v, want %v", entry.Err, boom)
	}
}

func TestSnapshotCorrelatesByLocationNotArrival(t *testing.T) {
	locs := testLocations(6)

	// Earlier slots answer later, so arrival order is reversed.
	fetcher := FetcherFunc(func(ctx context.Context, lat, _ float64) (*models.LocationReading, error) {
		delay := time.Duration(36-int(lat)) * 5 * time.Millisecond
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return &models.LocationReading{AQI: int(lat)}, nil
	})

	agg := NewAggregator(fetcher, 6, time.Second)
	snap := agg.Snapshot(context.Background(), locs)

	for i, entry := range snap.Entries {
		if entry.Location.ID != locs[i].ID {
			t.Fatalf("entry %d holds %s, want %s", i, entry.Location.ID, locs[i].ID)
		}
		if !entry.Present() {
			t.Fatalf("entry %d absent: %v", i, entry.Err)
		}
		if entry.Reading.LocationID != locs[i].ID {
			t.Errorf("reading %d tagged %s, want %s", i, entry.Reading.LocationID, locs[i].ID)
		}
		if entry.Reading.AQI != int(locs[i].Lat) {
			t.Errorf("entry %d got AQI %d, want %d", i, entry.Reading.AQI, int(locs[i].Lat))
		}
	}
}

func TestSnapshotRespectsPoolBound(t *testing.T) {
	var inFlight, peak atomic.Int32

	fetcher := FetcherFunc(func(_ context.Context, _, _ float64) (*models.LocationReading, error) {
		cur := inFlight.Add(1)
		for {
			old := peak.Load()
			if cur <= old || peak.CompareAndSwap(old, cur) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		inFlight.Add(-1)
		return &models.LocationReading{}, nil
	})

	agg := NewAggregator(fetcher, 3, time.Second)
	agg.Snapshot(context.Background(), testLocations(12))

	if got := peak.Load(); got > 3 {
		t.Errorf("peak concurrent fetches = %d, want <= 3", got)
	}
}

func TestSnapshotTimeoutIsPerSlot(t *testing.T) {
	locs := testLocations(3)
	fetcher := FetcherFunc(func(ctx context.Context, lat, _ float64) (*models.LocationReading, error) {
		if lat == locs[1].Lat {
			<-ctx.Done() // hangs until the per-fetch timeout fires
			return nil, ctx.Err()
		}
		return &models.LocationReading{AQI: 1}, nil
	})

	agg := NewAggregator(fetcher, 3, 20*time.Millisecond)
	snap := agg.Snapshot(context.Background(), locs)

	if got := snap.Present(); got != 2 {
		t.Errorf("present = %d, want 2 (only the slow slot absent)", got)
	}
	entry := snap.ByID("loc-1")
	if entry == nil {
		t.Fatal("slow slot missing from snapshot")
	}
	if !errors.Is(entry.Err, context.DeadlineExceeded) {
		t.Errorf("slow slot err = %v, want deadline exceeded", entry.Err)
	}
}

func TestRefreshSupersedesInFlightBatch(t *testing.T) {
	locs := testLocations(2)
	release := make(chan struct{})

	var calls atomic.Int32
	fetcher := FetcherFunc(func(ctx context.Context, _, _ float64) (*models.LocationReading, error) {
		if calls.Add(1) <= int32(len(locs)) {
			// First batch hangs until canceled or released.
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-release:
			}
		}
		return &models.LocationReading{AQI: 7}, nil
	})

	engine := NewEngine(NewAggregator(fetcher, 2, time.Second))

	firstDone := make(chan error, 1)
	go func() {
		_, err := engine.Refresh(context.Background(), locs)
		firstDone <- err
	}()

	// Wait until the first batch is in flight, then supersede it.
	for calls.Load() < int32(len(locs)) {
		time.Sleep(time.Millisecond)
	}
	snap, err := engine.Refresh(context.Background(), locs)
	if err != nil {
		t.Fatalf("second Refresh: %v", err)
	}
	if got := snap.Present(); got != len(locs) {
		t.Errorf("second snapshot present = %d, want %d", got, len(locs))
	}

	if err := <-firstDone; !errors.Is(err, ErrSuperseded) {
		t.Errorf("first Refresh err = %v, want ErrSuperseded", err)
	}
	close(release)
}
