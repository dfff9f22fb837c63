// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/bdgeo/roadctl/internal/artifact"
	"github.com/bdgeo/roadctl/internal/meta"
	"github.com/bdgeo/roadctl/internal/nominatim"
	"github.com/bdgeo/roadctl/internal/overpass"
)

// FetchCommandAction downloads (or refreshes) the road network and boundary
// artifacts without analyzing or rendering anything.
func FetchCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "fetch") {
		return nil
	}

	place := cmd.String("place")
	force := cmd.Bool("force-download")

	np := &artifact.NetworkProducer{
		Store:       m.Store,
		Client:      overpass.NewFromConfig(),
		Place:       place,
		NetworkType: cmd.String("network-type"),
	}
	network, err := np.Obtain(ctx, force)
	if err != nil {
		return err
	}
	fmt.Printf("Road network: %d nodes, %d edges\n", len(network.Nodes), len(network.Edges))

	bp := &artifact.BoundaryProducer{
		Store:    m.Store,
		Geocoder: nominatim.NewFromConfig(),
		Place:    place,
	}
	if boundary, err := bp.Obtain(ctx, force); err != nil {
		log.WithError(err).Warn("boundary download failed")
	} else {
		fmt.Printf("Boundary: %s\n", boundary.DisplayName)
	}

	return nil
}

// FetchCommandBuilder constructs the cli.Command for "fetch".
func FetchCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "fetch",
		Usage:     "download OSM artifacts into the cache",
		UsageText: `roadctl fetch [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewPlaceFlag("fetch", meta.Config.Source),
			NewNetworkTypeFlag("fetch", meta.Config.Source),
			forceDownloadFlag,
			tldrFlag,
		}, NewGlobalFlags("fetch")...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := GlobalFlagsValidator(ctx, c); err != nil {
				return err
			}
			return FetchCommandAction(ctx, c)
		},
	}
}
