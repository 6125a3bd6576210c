// Command animevent decodes animation event tracks and keeps typed-event
// caches in sync with a track store.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/animevent/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
