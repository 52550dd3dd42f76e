package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

func TestContextCache_StartsEmpty(t *testing.T) {
	cache := NewContextCache(&fakeStore{}, nil)

	snapshot := cache.Snapshot()
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
	assert.True(t, cache.LoadedAt().IsZero())
}

func TestContextCache_LoadPreservesOrder(t *testing.T) {
	store := &fakeStore{facilities: sampleFacilities(5)}
	cache := NewContextCache(store, nil)

	cache.Load(context.Background())

	snapshot := cache.Snapshot()
	require.Len(t, snapshot, 5)
	for i, f := range snapshot {
		assert.Equal(t, fmt.Sprintf("Facility %02d", i+1), f.Name)
	}
	assert.False(t, cache.LoadedAt().IsZero())
}

func TestContextCache_FailedLoadKeepsPreviousSnapshot(t *testing.T) {
	store := &fakeStore{facilities: sampleFacilities(3)}
	cache := NewContextCache(store, nil)
	cache.Load(context.Background())
	loadedAt := cache.LoadedAt()

	store.set(nil, errors.New("connection refused"))
	cache.Load(context.Background())

	assert.Len(t, cache.Snapshot(), 3)
	assert.Equal(t, loadedAt, cache.LoadedAt())
}

func TestContextCache_FailedFirstLoadStaysEmpty(t *testing.T) {
	cache := NewContextCache(&fakeStore{err: errors.New("database is down")}, nil)
	cache.Load(context.Background())

	assert.NotNil(t, cache.Snapshot())
	assert.Empty(t, cache.Snapshot())
}

func TestContextCache_NilStore(t *testing.T) {
	cache := NewContextCache(nil, nil)

	assert.NotPanics(t, func() { cache.Load(context.Background()) })
	assert.Empty(t, cache.Snapshot())
}

func TestContextCache_SnapshotIsolatedFromStore(t *testing.T) {
	facilities := sampleFacilities(2)
	cache := NewContextCache(&fakeStore{facilities: facilities}, nil)
	cache.Load(context.Background())

	facilities[0].Name = "mutated after load"
	assert.Equal(t, "Facility 01", cache.Snapshot()[0].Name)

	snapshot := cache.Snapshot()
	_ = append(snapshot, model.FacilityRef{Name: "appended"})
	assert.Len(t, cache.Snapshot(), 2)
}

// generationStore returns a fresh generation of identically tagged entries on every call
type generationStore struct {
	generation atomic.Int64
	size       int
}

func (s *generationStore) ListFacilities(context.Context) ([]model.FacilityRef, error) {
	gen := s.generation.Add(1)
	facilities := make([]model.FacilityRef, s.size)
	for i := range facilities {
		facilities[i] = model.FacilityRef{
			Name:     fmt.Sprintf("gen-%d-%d", gen, i),
			Location: fmt.Sprintf("gen-%d", gen),
		}
	}
	return facilities, nil
}

func TestContextCache_ConcurrentRefreshNeverMixesGenerations(t *testing.T) {
	store := &generationStore{size: 25}
	cache := NewContextCache(store, nil)
	cache.Load(context.Background())

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				cache.Load(context.Background())
			}
		}()
	}

	var readers sync.WaitGroup
	var mixed atomic.Int64
	for i := 0; i < 8; i++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snapshot := cache.Snapshot()
				if len(snapshot) != store.size {
					mixed.Add(1)
					continue
				}
				generation := snapshot[0].Location
				for _, f := range snapshot {
					if f.Location != generation || !strings.HasPrefix(f.Name, generation+"-") {
						mixed.Add(1)
						break
					}
				}
			}
		}()
	}

	wg.Wait()
	close(stop)
	readers.Wait()

	assert.Zero(t, mixed.Load())
	assert.Greater(t, store.generation.Load(), int64(1))
}
