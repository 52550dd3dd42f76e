package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/sengtan/utm-campus-chatbot/internal/metrics"
	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

// FacilityStore is the read-only facility catalog the cache loads from
type FacilityStore interface {
	ListFacilities(ctx context.Context) ([]model.FacilityRef, error)
}

// snapshot is one load generation; it is never mutated after publication
type snapshot struct {
	facilities []model.FacilityRef
	loadedAt   time.Time
}

// ContextCache holds the facility snapshot used to ground prompts.
//
// Readers take the current snapshot without locking. Load builds a new
// snapshot off to the side and publishes it with one atomic swap, so a
// reader sees either the old generation or the new one, never a mix.
type ContextCache struct {
	store   FacilityStore
	logger  *zap.Logger
	current atomic.Pointer[snapshot]
	loads   singleflight.Group
}

// NewContextCache creates an empty cache backed by store
func NewContextCache(store FacilityStore, logger *zap.Logger) *ContextCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &ContextCache{store: store, logger: logger}
	c.current.Store(&snapshot{facilities: []model.FacilityRef{}})
	return c
}

// Load refreshes the snapshot from the store.
// Failures are logged and leave the previous snapshot in place.
// Concurrent calls share a single store query.
func (c *ContextCache) Load(ctx context.Context) {
	_, _, _ = c.loads.Do("facilities", func() (interface{}, error) {
		if err := c.load(ctx); err != nil {
			c.logger.Error("Failed to load facility context, keeping previous snapshot",
				zap.Int("facilities", len(c.Snapshot())),
				zap.Error(err))
			return nil, err
		}
		return nil, nil
	})
}

func (c *ContextCache) load(ctx context.Context) error {
	if c.store == nil {
		return errors.New("no facility store configured")
	}

	facilities, err := c.store.ListFacilities(ctx)
	if err != nil {
		return err
	}

	fresh := make([]model.FacilityRef, len(facilities))
	copy(fresh, facilities)

	c.current.Store(&snapshot{facilities: fresh, loadedAt: time.Now()})
	metrics.SetContextFacilities(len(fresh))

	c.logger.Info("Facility context loaded", zap.Int("facilities", len(fresh)))
	return nil
}

// Snapshot returns the current facilities in load order.
// The result is never nil and must not be modified.
func (c *ContextCache) Snapshot() []model.FacilityRef {
	facilities := c.current.Load().facilities
	// clip capacity so an append by the caller cannot write into the shared array
	return facilities[:len(facilities):len(facilities)]
}

// LoadedAt returns when the current snapshot was loaded, zero if never
func (c *ContextCache) LoadedAt() time.Time {
	return c.current.Load().loadedAt
}
