// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdgeo/roadctl/internal/cache"
	"github.com/bdgeo/roadctl/internal/nominatim"
	"github.com/bdgeo/roadctl/internal/roadnet"
)

type fakeFetcher struct {
	network *roadnet.Network
	err     error
	calls   int
}

func (f *fakeFetcher) RoadNetwork(_ context.Context, place, networkType string) (*roadnet.Network, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.network, nil
}

type fakeGeocoder struct {
	boundary *nominatim.Boundary
	err      error
	calls    int
}

func (f *fakeGeocoder) Boundary(_ context.Context, place string) (*nominatim.Boundary, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.boundary, nil
}

func sampleNetwork() *roadnet.Network {
	n := roadnet.New("Testland", "drive")
	n.AddNode(roadnet.Node{ID: 1, Lat: 23.8, Lon: 90.4})
	n.AddNode(roadnet.Node{ID: 2, Lat: 23.9, Lon: 90.5})
	n.AddEdge(1, 2, 123.4, "Test Road", "primary")
	return n
}

func TestNetworkProducer_CachesAndReuses(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStoreAt(t.TempDir())
	fetcher := &fakeFetcher{network: sampleNetwork()}
	p := &NetworkProducer{Store: store, Client: fetcher, Place: "Testland", NetworkType: "drive"}

	first, err := p.Obtain(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.True(t, store.Exists(cache.KeyNetwork))

	// Second obtain must come from cache, not the provider.
	second, err := p.Obtain(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)
	assert.Equal(t, first, second)
}

func TestNetworkProducer_Idempotence(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStoreAt(t.TempDir())
	p := &NetworkProducer{
		Store:       store,
		Client:      &fakeFetcher{network: sampleNetwork()},
		Place:       "Testland",
		NetworkType: "drive",
	}

	_, err := p.Obtain(ctx, false)
	require.NoError(t, err)

	before, err := os.ReadFile(store.Path(cache.KeyNetwork))
	require.NoError(t, err)

	_, err = p.Obtain(ctx, false)
	require.NoError(t, err)

	after, err := os.ReadFile(store.Path(cache.KeyNetwork))
	require.NoError(t, err)
	assert.Equal(t, before, after, "cached payload must be bit-identical across obtains")
}

func TestNetworkProducer_ForceRefresh(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStoreAt(t.TempDir())
	fetcher := &fakeFetcher{network: sampleNetwork()}
	p := &NetworkProducer{Store: store, Client: fetcher, Place: "Testland", NetworkType: "drive"}

	_, err := p.Obtain(ctx, false)
	require.NoError(t, err)
	_, err = p.Obtain(ctx, true)
	require.NoError(t, err)

	assert.Equal(t, 2, fetcher.calls, "force must bypass the cache")
}

func TestNetworkProducer_ProviderError(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStoreAt(t.TempDir())
	fetcher := &fakeFetcher{err: errors.New("overpass is down")}
	p := &NetworkProducer{Store: store, Client: fetcher, Place: "Testland", NetworkType: "drive"}

	_, err := p.Obtain(ctx, false)
	require.Error(t, err)

	var pe *ProviderError
	assert.ErrorAs(t, err, &pe)
	assert.Equal(t, cache.KeyNetwork, pe.Artifact)
	assert.Equal(t, 1, fetcher.calls, "no retry on provider failure")
	assert.False(t, store.Exists(cache.KeyNetwork))
}

func TestNetworkProducer_CorruptCacheFallsThrough(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStoreAt(t.TempDir())
	fetcher := &fakeFetcher{network: sampleNetwork()}
	p := &NetworkProducer{Store: store, Client: fetcher, Place: "Testland", NetworkType: "drive"}

	require.NoError(t, os.WriteFile(store.Path(cache.KeyNetwork), []byte("not json"), 0o600))

	n, err := p.Obtain(ctx, false)
	require.NoError(t, err, "decode failure must degrade to a recompute")
	assert.Equal(t, 1, fetcher.calls)
	assert.NotNil(t, n)
}

func TestBoundaryProducer(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStoreAt(t.TempDir())
	geocoder := &fakeGeocoder{boundary: &nominatim.Boundary{DisplayName: "Testland"}}
	p := &BoundaryProducer{Store: store, Geocoder: geocoder, Place: "Testland"}

	b, err := p.Obtain(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, "Testland", b.DisplayName)

	_, err = p.Obtain(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, 1, geocoder.calls)
}

func TestStatsProducer(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStoreAt(t.TempDir())
	p := &StatsProducer{Store: store}

	stats, err := p.Obtain(ctx, sampleNetwork(), false)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalNodes)
	assert.Equal(t, 1, stats.TotalEdges)
	assert.True(t, stats.IsConnected)
	assert.True(t, store.Exists(cache.KeyStats))

	// Cached stats are reused verbatim.
	again, err := p.Obtain(ctx, nil, false)
	require.NoError(t, err)
	assert.Equal(t, stats, again)
}
