// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/bdgeo/roadctl/internal/analysis"
	"github.com/bdgeo/roadctl/internal/artifact"
	"github.com/bdgeo/roadctl/internal/cache"
	"github.com/bdgeo/roadctl/internal/meta"
	"github.com/bdgeo/roadctl/internal/overpass"
	"github.com/bdgeo/roadctl/internal/report"
)

// ReportCommandAction emits the connectivity report. The network comes from
// the cache when possible; --diff recomputes and shows what moved against the
// previously cached statistics.
func ReportCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	// Bail out early if we're just dumping tldr.
	if ShortCircuitTLDR(ctx, cmd, "report") {
		return nil
	}

	place := cmd.String("place")

	if cmd.Bool("diff") {
		return reportDiff(ctx, cmd, m, place)
	}

	stats, err := obtainStats(ctx, cmd, m, place, cmd.Bool("force-analysis"))
	if err != nil {
		return err
	}

	return report.Emit(os.Stdout, place, stats, cmd.String("output"), cmd.Bool("color"))
}

// obtainStats resolves the statistics artifact, pulling the network through
// its producer first so an empty cache still yields a report.
func obtainStats(ctx context.Context, cmd *cli.Command, m meta.Meta, place string, force bool) (analysis.Stats, error) {
	np := &artifact.NetworkProducer{
		Store:       m.Store,
		Client:      overpass.NewFromConfig(),
		Place:       place,
		NetworkType: cmd.String("network-type"),
	}
	network, err := np.Obtain(ctx, false)
	if err != nil {
		return analysis.Stats{}, err
	}

	sp := &artifact.StatsProducer{Store: m.Store}
	return sp.Obtain(ctx, network, force)
}

func reportDiff(ctx context.Context, cmd *cli.Command, m meta.Meta, place string) error {
	var prev analysis.Stats
	if err := m.Store.Load(ctx, cache.KeyStats, &prev); err != nil {
		return fmt.Errorf("no cached statistics to diff against: %w", err)
	}

	cur, err := obtainStats(ctx, cmd, m, place, true)
	if err != nil {
		return err
	}

	out, err := report.Diff(prev, cur, cmd.Bool("color"))
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}

// ReportCommandBuilder constructs the cli.Command for "report".
func ReportCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "report",
		Usage:     "connectivity statistics report",
		UsageText: `roadctl report [options]`,
		Metadata: map[string]any{
			"meta": meta,
		},
		Flags: append([]cli.Flag{
			NewPlaceFlag("report", meta.Config.Source),
			NewNetworkTypeFlag("report", meta.Config.Source),
			forceAnalysisFlag,
			diffFlag,
			tldrFlag,
		}, NewGlobalFlags("report")...),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := GlobalFlagsValidator(ctx, c); err != nil {
				return err
			}
			return ReportCommandAction(ctx, c)
		},
	}
}
