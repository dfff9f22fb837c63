// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package command

import (
	"context"
	"fmt"
	"os"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/bdgeo/roadctl/internal/meta"
)

// CacheInfoCommandAction prints one status line per artifact slot.
func CacheInfoCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	PrintCacheStatus(os.Stdout, m.Store)
	return nil
}

// CacheClearCommandAction removes whatever artifact files exist. Absent
// files are not an error.
func CacheClearCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args[1:])

	for _, info := range m.Store.Info() {
		if !info.Cached {
			continue
		}
		if err := m.Store.Delete(info.Key); err != nil {
			return err
		}
		fmt.Printf("Removed %s\n", info.Path)
	}
	return nil
}

// CacheCommandBuilder constructs the cli.Command for "cache" and its
// info/clear subcommands.
func CacheCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	md := map[string]any{
		"meta": meta,
	}

	return &cli.Command{
		Name:      "cache",
		Usage:     "inspect and manage cached artifacts",
		UsageText: `roadctl cache <info|clear>`,
		Metadata:  md,
		Commands: []*cli.Command{
			{
				Name:     "info",
				Usage:    "show cache status per artifact",
				Metadata: md,
				Flags:    []cli.Flag{tldrFlag},
				Action: func(ctx context.Context, c *cli.Command) error {
					if ShortCircuitTLDR(ctx, c, "cache") {
						return nil
					}
					return CacheInfoCommandAction(ctx, c)
				},
			},
			{
				Name:     "clear",
				Usage:    "remove cached artifacts",
				Metadata: md,
				Flags:    []cli.Flag{tldrFlag},
				Action: func(ctx context.Context, c *cli.Command) error {
					if ShortCircuitTLDR(ctx, c, "cache") {
						return nil
					}
					return CacheClearCommandAction(ctx, c)
				},
			},
		},
	}
}
