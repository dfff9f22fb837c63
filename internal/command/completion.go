package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bdgeo/roadctl/internal/meta"
	"github.com/urfave/cli/v3"
)

const bashCompletionScript = `# bash completion for roadctl
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_roadctl()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "run fetch report render cache completion --help --version" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}
    local common="--color -c --output -o --tldr"

    case "$cmd" in
    run)
        local opts="$common --place -p --network-type -n --out --cities --force-download --force-analysis"
        ;;
    fetch)
        local opts="$common --place -p --network-type -n --force-download"
        ;;
    report)
        local opts="$common --place -p --network-type -n --force-analysis --diff"
        ;;
    render)
        local opts="$common --place -p --network-type -n --out --cities --zoom"
        ;;
    cache)
        local opts="info clear"
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
        ;;
    completion)
        local opts="bash zsh"
        COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
        return 0
        ;;
    *)
        local opts="$common"
        ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text table json yaml" -- "$cur") )
        return 0
    fi

    if [[ "$prev" == "--network-type" || "$prev" == "-n" ]]; then
        COMPREPLY=( $(compgen -W "drive walk bike all" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

complete -F _roadctl roadctl
`

const zshCompletionScript = `#compdef roadctl

_roadctl() {
  local -a cmds
  cmds=(
    'run:download, analyze, and map a road network'
    'fetch:download OSM artifacts into the cache'
    'report:connectivity statistics report'
    'render:render the road network map'
    'cache:inspect and manage cached artifacts'
    'completion:generate shell completion script'
  )

  local -a common
  common=(
  '(-c --color)'{-c,--color}'[enable colored text]'
  '(-o --output)'{-o,--output}'[output format]:format:(text table json yaml)'
  '--tldr[show tldr page]'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'roadctl commands' cmds
    return
  fi

  case $words[2] in
    run)
      _arguments -C \
        $common \
        '(-p --place)'{-p,--place}'[place name]' \
        '(-n --network-type)'{-n,--network-type}'[network type]:type:(drive walk bike all)' \
        '--out[map output path]:file:_files' \
        '--cities[city markers]' \
        '--force-download[re-download OSM data]' \
        '--force-analysis[recompute statistics]'
      ;;
    fetch)
      _arguments -C \
        $common \
        '(-p --place)'{-p,--place}'[place name]' \
        '(-n --network-type)'{-n,--network-type}'[network type]:type:(drive walk bike all)' \
        '--force-download[re-download OSM data]'
      ;;
    report)
      _arguments -C \
        $common \
        '(-p --place)'{-p,--place}'[place name]' \
        '--force-analysis[recompute statistics]' \
        '--diff[diff against cached statistics]'
      ;;
    render)
      _arguments -C \
        $common \
        '(-p --place)'{-p,--place}'[place name]' \
        '--out[map output path]:file:_files' \
        '--cities[city markers]' \
        '--zoom[initial zoom level]'
      ;;
    cache)
      _arguments '1: :((info clear))'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
    *)
      _arguments -C $common
      ;;
  esac
}

# If this file is sourced directly (not autoloaded via fpath), ensure compsys is initialized and register the completion
if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _roadctl roadctl
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(os.Stdout, bashCompletionScript)
	case "zsh":
		fmt.Fprint(os.Stdout, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(os.Stdout, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(os.Stdout, bashCompletionScript)
		} else {
			fmt.Fprintln(os.Stderr, "usage: roadctl completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(cmd *cli.Command, meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "roadctl completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
