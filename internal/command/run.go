// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/bdgeo/roadctl/internal/artifact"
	"github.com/bdgeo/roadctl/internal/mapgen"
	"github.com/bdgeo/roadctl/internal/meta"
	"github.com/bdgeo/roadctl/internal/nominatim"
	"github.com/bdgeo/roadctl/internal/overpass"
	"github.com/bdgeo/roadctl/internal/report"
)

// RunCommandAction is the action handler for the "run" subcommand: the full
// pipeline. The road network is the one artifact the run cannot survive
// without; a missing boundary or stray geocode failure only degrades the map.
func RunCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "run") {
		return nil
	}

	place := cmd.String("place")
	force := cmd.Bool("force-download")

	PrintCacheStatus(os.Stdout, m.Store)

	osm := overpass.NewFromConfig()
	np := &artifact.NetworkProducer{
		Store:       m.Store,
		Client:      osm,
		Place:       place,
		NetworkType: cmd.String("network-type"),
	}
	network, err := np.Obtain(ctx, force)
	if err != nil {
		return err
	}
	log.Debugf("network: %d nodes, %d edges", len(network.Nodes), len(network.Edges))

	geocoder := nominatim.NewFromConfig()
	bp := &artifact.BoundaryProducer{
		Store:    m.Store,
		Geocoder: geocoder,
		Place:    place,
	}
	boundary, err := bp.Obtain(ctx, force)
	if err != nil {
		log.WithError(err).Warn("continuing without district boundaries")
		boundary = nil
	}

	sp := &artifact.StatsProducer{Store: m.Store}
	stats, err := sp.Obtain(ctx, network, cmd.Bool("force-analysis"))
	if err != nil {
		return err
	}

	if err := report.Emit(os.Stdout, place, stats, cmd.String("output"), cmd.Bool("color")); err != nil {
		return err
	}

	opts := mapgen.Options{
		Cities: cmd.StringSlice("cities"),
	}
	if boundary != nil {
		opts.Boundary = boundary.Geometry
	}

	out := MapOutputPath(cmd.String("out"), place)
	if err := mapgen.WriteFile(ctx, out, network, geocoder, opts); err != nil {
		return err
	}
	fmt.Printf("Map written to %s\n", out)

	return nil
}

// RunCommandBuilder constructs the cli.Command for "run", wiring metadata,
// flags, and action/validator handlers.
func RunCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "download, analyze, and map a road network",
		UsageText: `roadctl run [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewPlaceFlag("run", meta.Config.Source),
			NewNetworkTypeFlag("run", meta.Config.Source),
			NewOutFlag("run", meta.Config.Source),
			NewCitiesFlag(),
			forceDownloadFlag,
			forceAnalysisFlag,
			tldrFlag,
		}, NewGlobalFlags("run")...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := RunCommandValidator(ctx, c); err != nil {
				return err
			}
			return RunCommandAction(ctx, c)
		},
	}
}

// RunCommandValidator performs validation for "run" and delegates to
// GlobalFlagsValidator.
func RunCommandValidator(ctx context.Context, cmd *cli.Command) error {
	return GlobalFlagsValidator(ctx, cmd)
}
