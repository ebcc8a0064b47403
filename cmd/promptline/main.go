package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/doeshing/promptline/internal/infrastructure/cli"
)

func main() {
	ctx := context.Background()
	opts := cli.Options{Verbose: isVerbose(os.Args[1:])}

	root, cleanup, err := cli.NewRootCmd(ctx, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	err = root.ExecuteContext(ctx)
	cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// isVerbose is decided before flag parsing because the logger is built
// together with the container.
func isVerbose(args []string) bool {
	debug := os.Getenv("PROMPTLINE_DEBUG")
	if strings.EqualFold(debug, "1") || strings.EqualFold(debug, "true") {
		return true
	}
	for _, arg := range args {
		if arg == "--" {
			break
		}
		if arg == "--verbose" || arg == "-v" || arg == "--verbose=true" {
			return true
		}
	}
	return false
}
