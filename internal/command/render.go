// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/bdgeo/roadctl/internal/artifact"
	"github.com/bdgeo/roadctl/internal/mapgen"
	"github.com/bdgeo/roadctl/internal/meta"
	"github.com/bdgeo/roadctl/internal/nominatim"
	"github.com/bdgeo/roadctl/internal/overpass"
)

// RenderCommandAction renders the HTML map from the cached (or freshly
// downloaded) artifacts without printing a report.
func RenderCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "render") {
		return nil
	}

	place := cmd.String("place")

	np := &artifact.NetworkProducer{
		Store:       m.Store,
		Client:      overpass.NewFromConfig(),
		Place:       place,
		NetworkType: cmd.String("network-type"),
	}
	network, err := np.Obtain(ctx, false)
	if err != nil {
		return err
	}

	geocoder := nominatim.NewFromConfig()
	bp := &artifact.BoundaryProducer{
		Store:    m.Store,
		Geocoder: geocoder,
		Place:    place,
	}

	opts := mapgen.Options{
		Zoom:   cmd.Int("zoom"),
		Cities: cmd.StringSlice("cities"),
	}
	if boundary, err := bp.Obtain(ctx, false); err != nil {
		log.WithError(err).Warn("rendering without district boundaries")
	} else {
		opts.Boundary = boundary.Geometry
	}

	out := MapOutputPath(cmd.String("out"), place)
	if err := mapgen.WriteFile(ctx, out, network, geocoder, opts); err != nil {
		return err
	}
	fmt.Printf("Map written to %s\n", out)

	return nil
}

// RenderCommandBuilder constructs the cli.Command for "render".
func RenderCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "render",
		Usage:     "render the road network map",
		UsageText: `roadctl render [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewPlaceFlag("render", meta.Config.Source),
			NewNetworkTypeFlag("render", meta.Config.Source),
			NewOutFlag("render", meta.Config.Source),
			NewCitiesFlag(),
			&cli.IntFlag{
				Name:  "zoom",
				Usage: "initial map zoom level",
				Value: mapgen.DefaultZoom,
			},
			tldrFlag,
		}, NewGlobalFlags("render")...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := GlobalFlagsValidator(ctx, c); err != nil {
				return err
			}
			return RenderCommandAction(ctx, c)
		},
	}
}
