package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/mrlokans/zeeguu/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := cli.New(Version + " (" + Commit + ")").Execute(); err != nil {
		// The reason for a failed operation has already been printed.
		if !errors.Is(err, cli.ErrFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
