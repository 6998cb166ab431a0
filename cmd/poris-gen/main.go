package main

import (
	"fmt"
	"os"

	"github.com/seitarof/poris-gen/internal/cli"
	"github.com/seitarof/poris-gen/internal/errs"
)

var version = "dev"

func main() {
	if err := cli.Execute(os.Args[1:], os.Stdout, os.Stderr, version); err != nil {
		fmt.Fprintf(os.Stderr, "poris-gen: %v\n", err)
		os.Exit(errs.KindOf(err).ExitCode())
	}
}
