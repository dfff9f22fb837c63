// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package artifact

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/bdgeo/roadctl/internal/analysis"
	"github.com/bdgeo/roadctl/internal/cache"
	"github.com/bdgeo/roadctl/internal/nominatim"
	"github.com/bdgeo/roadctl/internal/roadnet"
)

// ProviderError wraps an upstream failure while producing a named artifact.
// Producers never retry; the caller decides whether the run can continue.
type ProviderError struct {
	Artifact string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("failed to obtain %s: %v", e.Artifact, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// obtain is the load-if-cached / else-produce-and-store step shared by all
// three producers. An unreadable cache entry is a miss, not a failure; a
// failed save is a warning, not a failure.
func obtain[T any](
	ctx context.Context,
	store *cache.Store,
	key string,
	force bool,
	produce func(context.Context) (T, error),
) (T, error) {
	var out T

	if !force {
		err := store.Load(ctx, key, &out)
		if err == nil {
			return out, nil
		}
		var de *cache.DecodeError
		if errors.As(err, &de) {
			log.WithError(de).Warnf("cache entry %s is unreadable, recomputing", key)
		}
	}

	fresh, err := produce(ctx)
	if err != nil {
		var zero T
		return zero, &ProviderError{Artifact: key, Err: err}
	}

	if err := store.Save(ctx, key, fresh); err != nil {
		log.WithError(err).Warnf("failed to cache %s", key)
	}

	return fresh, nil
}

// NetworkFetcher is the road-network provider (Overpass in production).
type NetworkFetcher interface {
	RoadNetwork(ctx context.Context, place, networkType string) (*roadnet.Network, error)
}

// BoundaryFetcher is the boundary provider (Nominatim in production).
type BoundaryFetcher interface {
	Boundary(ctx context.Context, place string) (*nominatim.Boundary, error)
}

// NetworkProducer obtains the road network artifact.
type NetworkProducer struct {
	Store       *cache.Store
	Client      NetworkFetcher
	Place       string
	NetworkType string
}

func (p *NetworkProducer) Obtain(ctx context.Context, force bool) (*roadnet.Network, error) {
	return obtain(ctx, p.Store, cache.KeyNetwork, force,
		func(ctx context.Context) (*roadnet.Network, error) {
			log.Infof("downloading %s network for %s", p.NetworkType, p.Place)
			return p.Client.RoadNetwork(ctx, p.Place, p.NetworkType)
		})
}

// BoundaryProducer obtains the administrative boundary artifact.
type BoundaryProducer struct {
	Store    *cache.Store
	Geocoder BoundaryFetcher
	Place    string
}

func (p *BoundaryProducer) Obtain(ctx context.Context, force bool) (*nominatim.Boundary, error) {
	return obtain(ctx, p.Store, cache.KeyBoundary, force,
		func(ctx context.Context) (*nominatim.Boundary, error) {
			log.Infof("downloading boundary for %s", p.Place)
			return p.Geocoder.Boundary(ctx, p.Place)
		})
}

// StatsProducer obtains connectivity statistics for an in-memory network.
// The computation is in-process; only the memoization is shared.
type StatsProducer struct {
	Store *cache.Store
}

func (p *StatsProducer) Obtain(ctx context.Context, n *roadnet.Network, force bool) (analysis.Stats, error) {
	return obtain(ctx, p.Store, cache.KeyStats, force,
		func(context.Context) (analysis.Stats, error) {
			log.Info("analyzing road network connectivity")
			return analysis.Connectivity(n), nil
		})
}
