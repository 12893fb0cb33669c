package main

import (
	"os"

	"github.com/mrlokans/storyhub/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// The parser has already printed the error
	if err := cli.Execute(os.Args[1:], Version); err != nil {
		os.Exit(1)
	}
}
