// Command enard packs and unpacks Enard containers from the command line.
package main

import (
	"fmt"
	"os"

	"enard/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		fmt.Fprintf(os.Stderr, "enard: %v\n", err)
		os.Exit(1)
	}
}
