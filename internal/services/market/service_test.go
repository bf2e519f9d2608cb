package market

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lofmon/internal/domain/feed"
	"lofmon/pkg/cache"
	"lofmon/pkg/errors"
)

// Mock fetcher for testing
type mockFetcher struct {
	indexRecords []feed.Record
	stockRecords []feed.Record
	indexErr     error
	stockErr     error
	indexCalls   int
	stockCalls   int
	onFetch      func()
}

func (m *mockFetcher) FetchIndexList(ctx context.Context) ([]feed.Record, error) {
	m.indexCalls++
	if m.onFetch != nil {
		m.onFetch()
	}
	return m.indexRecords, m.indexErr
}

func (m *mockFetcher) FetchStockList(ctx context.Context) ([]feed.Record, error) {
	m.stockCalls++
	return m.stockRecords, m.stockErr
}

func record(id, premium, amount string) feed.Record {
	return feed.Record{
		FundID:        id,
		FundName:      "测试基金" + id,
		Price:         "1.250",
		ChangePercent: "0.50%",
		EstimateValue: "1.220",
		DiscountRate:  premium,
		StockCode:     "sz" + id,
		Amount:        amount,
	}
}

func newTestService(fetcher Fetcher) *Service {
	normalizer := feed.NewNormalizer(nil, nil)
	return NewService(fetcher, cache.NewMemoryStore(), normalizer, time.Minute)
}

func TestService_Refresh(t *testing.T) {
	fetcher := &mockFetcher{
		indexRecords: []feed.Record{record("161725", "2.46%", "65,000,000")},
		stockRecords: []feed.Record{record("163402", "3.20%", "120,000,000")},
	}
	s := newTestService(fetcher)

	require.NoError(t, s.Refresh(context.Background()))

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 2)

	// Sorted by score descending: the deeper, more liquid premium first
	assert.Equal(t, "163402", snapshot[0].Code)
	assert.Equal(t, "161725", snapshot[1].Code)

	assert.False(t, s.LastRefresh().IsZero())
}

func TestService_Refresh_FiltersIneligible(t *testing.T) {
	fetcher := &mockFetcher{
		indexRecords: []feed.Record{
			record("161725", "2.46%", "65,000,000"),
			record("160416", "0.10%", "65,000,000"), // no signal
		},
	}
	s := newTestService(fetcher)

	require.NoError(t, s.Refresh(context.Background()))

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "161725", snapshot[0].Code)
}

func TestService_Refresh_OneListUnavailable(t *testing.T) {
	fetcher := &mockFetcher{
		indexErr:     errors.ErrFeedUnavailable,
		stockRecords: []feed.Record{record("163402", "3.20%", "120,000,000")},
	}
	s := newTestService(fetcher)

	require.NoError(t, s.Refresh(context.Background()))

	snapshot := s.Snapshot()
	require.Len(t, snapshot, 1)
	assert.Equal(t, "163402", snapshot[0].Code)
}

func TestService_Refresh_BothListsUnavailable(t *testing.T) {
	fetcher := &mockFetcher{
		indexRecords: []feed.Record{record("161725", "2.46%", "65,000,000")},
		stockRecords: []feed.Record{record("163402", "3.20%", "120,000,000")},
	}
	s := newTestService(fetcher)

	require.NoError(t, s.Refresh(context.Background()))
	require.Len(t, s.Snapshot(), 2)
	lastGood := s.LastRefresh()

	// Feed goes dark: the refresh fails but the snapshot survives.
	// Remove the cached list first so the failure actually reaches the feed.
	s.store.Remove(context.Background(), cache.KeyAllLofList)
	fetcher.indexErr = errors.ErrFeedUnavailable
	fetcher.stockErr = errors.ErrFeedUnavailable
	fetcher.indexRecords = nil
	fetcher.stockRecords = nil

	err := s.Refresh(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrFeedUnavailable)

	assert.Len(t, s.Snapshot(), 2)
	assert.Equal(t, lastGood, s.LastRefresh())
}

func TestService_Refresh_ServesFromCache(t *testing.T) {
	fetcher := &mockFetcher{
		indexRecords: []feed.Record{record("161725", "2.46%", "65,000,000")},
	}
	s := newTestService(fetcher)

	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, fetcher.indexCalls)
	assert.Equal(t, 1, fetcher.stockCalls)

	// Second refresh inside the TTL hits the cached merged list
	require.NoError(t, s.Refresh(context.Background()))
	assert.Equal(t, 1, fetcher.indexCalls)
	assert.Equal(t, 1, fetcher.stockCalls)
	require.Len(t, s.Snapshot(), 1)
}

func TestService_Refresh_SupersededResultDiscarded(t *testing.T) {
	fetcher := &mockFetcher{
		indexRecords: []feed.Record{record("161725", "2.46%", "65,000,000")},
	}
	s := newTestService(fetcher)

	// A newer refresh starts while this one is mid-fetch; the stale result
	// must be discarded, not swapped in.
	fetcher.onFetch = func() { s.generation.Add(1) }

	require.NoError(t, s.Refresh(context.Background()))
	assert.Empty(t, s.Snapshot())
	assert.True(t, s.LastRefresh().IsZero())
}

func TestService_Lookup(t *testing.T) {
	fetcher := &mockFetcher{
		indexRecords: []feed.Record{record("161725", "2.46%", "65,000,000")},
	}
	s := newTestService(fetcher)
	require.NoError(t, s.Refresh(context.Background()))

	got, err := s.Lookup("161725")
	require.NoError(t, err)
	assert.Equal(t, "161725", got.Code)

	// Mutating the returned copy leaves the snapshot alone
	got.Name = "mutated"
	again, err := s.Lookup("161725")
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Name)

	_, err = s.Lookup("000000")
	assert.ErrorIs(t, err, errors.ErrOpportunityNotFound)
}

func TestService_Snapshot_Empty(t *testing.T) {
	s := newTestService(&mockFetcher{})

	snapshot := s.Snapshot()
	assert.NotNil(t, snapshot)
	assert.Empty(t, snapshot)
}

func TestService_Snapshot_ReturnsCopy(t *testing.T) {
	fetcher := &mockFetcher{
		indexRecords: []feed.Record{record("161725", "2.46%", "65,000,000")},
	}
	s := newTestService(fetcher)
	require.NoError(t, s.Refresh(context.Background()))

	snapshot := s.Snapshot()
	snapshot[0].Name = "mutated"

	assert.NotEqual(t, "mutated", s.Snapshot()[0].Name)
}
