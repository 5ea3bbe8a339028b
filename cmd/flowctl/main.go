// Command flowctl is a small operator tool for validating and replaying
// flowcore catalogs from the command line, without standing up a full
// dialogue system.
package main

import (
	"fmt"
	"os"

	"github.com/kslamph/flowcore/cmd/flowctl/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
