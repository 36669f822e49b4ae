package main

import (
	"context"
	"fmt"
	"os"

	"github.com/paularlott/cli"

	"github.com/martinsuchenak/fqdngen/cmd/check"
	"github.com/martinsuchenak/fqdngen/cmd/name"
	"github.com/martinsuchenak/fqdngen/cmd/run"
	"github.com/martinsuchenak/fqdngen/cmd/server"
)

var version = "dev"

func main() {
	root := &cli.Command{
		Name:        "fqdngen",
		Version:     version,
		Usage:       "Build and verify standardized FQDNs for network devices",
		Description: "Normalizes device and interface identifiers into canonical FQDNs and checks them against live forward and reverse DNS",
		Commands: []*cli.Command{
			check.Command(),
			name.Command(),
			server.Command(),
			run.Command(),
		},
	}

	if err := root.Execute(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
