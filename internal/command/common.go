// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/bdgeo/roadctl/internal/cache"
	"github.com/bdgeo/roadctl/internal/meta"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr roadctl <subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "roadctl", subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the command's Metadata. If missing
// or of an unexpected type, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil || cmd.Metadata == nil {
		return meta.Meta{}
	}
	if m, ok := cmd.Metadata["meta"].(meta.Meta); ok {
		return m
	}
	return meta.Meta{}
}

// PrintCacheStatus writes one status line per artifact slot:
// "Cached (size, mtime)" or "Not cached".
func PrintCacheStatus(w io.Writer, store *cache.Store) {
	for _, info := range store.Info() {
		if info.Cached {
			fmt.Fprintf(w, "%s: Cached (%s, %s)\n",
				info.Name,
				humanize.Bytes(uint64(info.Size)),
				info.ModTime.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Fprintf(w, "%s: Not cached\n", info.Name)
		}
	}
}

// MapOutputPath resolves the --out flag, deriving a filename from the place
// when the flag is empty.
func MapOutputPath(out, place string) string {
	if out != "" {
		return out
	}
	slug := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(place), " ", "_"))
	if slug == "" {
		return "road_map.html"
	}
	return slug + "_road_map.html"
}
