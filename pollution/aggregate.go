package pollution

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/pollualert/core/models"
)

// ErrSuperseded is returned by Engine.Refresh when a newer refresh started
// before this one finished; its partial results are discarded, never merged.
var ErrSuperseded = errors.New("pollution: refresh superseded by a newer batch")

// Fetcher reads the current pollution level for one coordinate.
type Fetcher interface {
	Current(ctx context.Context, lat, lon float64) (*models.LocationReading, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, lat, lon float64) (*models.LocationReading, error)

func (f FetcherFunc) Current(ctx context.Context, lat, lon float64) (*models.LocationReading, error) {
	return f(ctx, lat, lon)
}

// Aggregator fans out reads across all monitored locations through a bounded
// worker pool and assembles the results into one snapshot. A slot whose fetch
// fails or times out is recorded as absent; the batch itself never fails.
type Aggregator struct {
	fetcher  Fetcher
	poolSize int
	timeout  time.Duration
}

// NewAggregator builds an aggregator. poolSize caps in-flight requests
// against the data service; timeout applies to each fetch independently.
func NewAggregator(fetcher Fetcher, poolSize int, timeout time.Duration) *Aggregator {
	if poolSize < 1 {
		poolSize = 1
	}
	return &Aggregator{fetcher: fetcher, poolSize: poolSize, timeout: timeout}
}

// Snapshot fetches every location concurrently and correlates results by
// slot index, so response arrival order can never shuffle entries.
func (a *Aggregator) Snapshot(ctx context.Context, locations []models.Location) *models.AggregatedSnapshot {
	entries := make([]models.SnapshotEntry, len(locations))
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := a.poolSize
	if workers > len(locations) {
		workers = len(locations)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				entries[i] = a.fetchOne(ctx, locations[i])
			}
		}()
	}

	for i := range locations {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Mark the rest absent instead of blocking on a dead batch.
			entries[i] = models.SnapshotEntry{Location: locations[i], Err: ctx.Err()}
		}
	}
	close(jobs)
	wg.Wait()

	snap := &models.AggregatedSnapshot{TakenAt: time.Now().UTC(), Entries: entries}
	if failed := len(entries) - snap.Present(); failed > 0 {
		log.Printf("pollution: snapshot degraded, %d/%d locations absent", failed, len(entries))
	}
	return snap
}

func (a *Aggregator) fetchOne(ctx context.Context, loc models.Location) models.SnapshotEntry {
	fetchCtx := ctx
	if a.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	reading, err := a.fetcher.Current(fetchCtx, loc.Lat, loc.Lon)
	if err != nil {
		return models.SnapshotEntry{Location: loc, Err: err}
	}
	reading.LocationID = loc.ID
	return models.SnapshotEntry{Location: loc, Reading: reading}
}

// Engine owns the refresh lifecycle: starting a new refresh cancels any
// still-pending batch so overlapping snapshots cannot interleave.
type Engine struct {
	agg *Aggregator

	mu     sync.Mutex
	cancel context.CancelFunc
	gen    uint64
}

func NewEngine(agg *Aggregator) *Engine {
	return &Engine{agg: agg}
}

// Refresh runs one aggregation batch. If another Refresh starts while this
// one is in flight, this one is abandoned and returns ErrSuperseded.
func (e *Engine) Refresh(ctx context.Context, locations []models.Location) (*models.AggregatedSnapshot, error) {
	e.mu.Lock()
	if e.cancel != nil {
		e.cancel()
	}
	batchCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.gen++
	gen := e.gen
	e.mu.Unlock()

	snap := e.agg.Snapshot(batchCtx, locations)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen {
		return nil, ErrSuperseded
	}
	e.cancel = nil
	cancel()
	return snap, nil
}
