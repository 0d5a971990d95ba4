package main

import (
	"fmt"
	"os"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "atspicached: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	subcmd := "serve"
	args := os.Args[1:]
	if len(args) > 0 && args[0] != "" && args[0][0] != '-' {
		subcmd = args[0]
		args = args[1:]
	}

	switch subcmd {
	case "serve":
		return cmdServe(args)
	case "status":
		return cmdStatus(args)
	case "dump":
		return cmdDump(args)
	case "history":
		return cmdHistory(args)
	case "init":
		return cmdInit(args)
	default:
		return fmt.Errorf("unknown command: %s\nUsage: atspicached [serve|status|dump|history|init]", subcmd)
	}
}

// configPath resolves the YAML config file path: --config=<path> wins
// over ATSPICACHED_CONFIG, which wins over the default data path.
func configPath(args []string) string {
	for _, arg := range args {
		if len(arg) > 9 && arg[:9] == "--config=" {
			return arg[9:]
		}
	}
	if v := os.Getenv("ATSPICACHED_CONFIG"); v != "" {
		return v
	}
	return defaultDataPath("atspicached.yaml")
}
