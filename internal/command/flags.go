// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"os/exec"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/bdgeo/roadctl/internal/config"
)

func init() {
	cfg, _ = config.Load("")
}

var (
	cfg config.Type

	tldrFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}

	forceDownloadFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "force-download",
		Usage:       "re-download OSM data even when cached",
		HideDefault: true,
	}

	forceAnalysisFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "force-analysis",
		Usage:       "recompute connectivity statistics even when cached",
		HideDefault: true,
	}

	diffFlag *cli.BoolFlag = &cli.BoolFlag{
		Name:        "diff",
		Usage:       "show what changed against the cached statistics",
		HideDefault: true,
	}
)

func NewGlobalFlags(params ...string) (flags []cli.Flag) {
	flags = []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(params[0]+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
	}

	return
}

// NewPlaceFlag constructs the "place" flag, namespaced to a command and
// config file. params[1] is the config file.
func NewPlaceFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "place",
		Aliases: []string{"p"},
		Usage:   "place name to query OpenStreetMap for",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("ROADCTL_PLACE"),
		),
		Value: "Bangladesh",
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewNetworkTypeFlag constructs the "network-type" flag, namespaced to a
// command and config file. params[1] is the config file.
func NewNetworkTypeFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:    "network-type",
		Aliases: []string{"n"},
		Usage:   "road network type to download",
		Sources: cli.NewValueSourceChain(
			cli.EnvVar("ROADCTL_NETWORK_TYPE"),
		),
		Value: "drive",
		Validator: func(value string) error {
			return FlagValidators(value, NetworkTypeValidator)
		},
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewOutFlag constructs the "out" flag for the rendered map path. An empty
// value means derive the filename from the place.
func NewOutFlag(params ...string) (flag *cli.StringFlag) {
	flag = &cli.StringFlag{
		Name:  "out",
		Usage: "path to write the HTML map to (default <place>_road_map.html)",
	}

	if len(params) == 2 {
		flag = NameSpacedValueChainFlagFromConfigFile(params[0], params[1], flag)
	}

	return
}

// NewCitiesFlag constructs the "cities" flag for map markers.
func NewCitiesFlag() *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:  "cities",
		Usage: "city names to mark on the map",
		Value: []string{
			"Dhaka", "Chittagong", "Sylhet", "Rajshahi",
			"Khulna", "Barisal", "Rangpur", "Mymensingh",
		},
	}
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas checks if the given binary exists on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
