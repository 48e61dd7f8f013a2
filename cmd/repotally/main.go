// main is the entry point for the repotally CLI.
package main

import (
	"fmt"
	"os"

	"github.com/repotally/repotally/cmd"
	"github.com/repotally/repotally/internal/iocache"
)

func main() {
	err := cmd.Execute()

	// Close persistence before deciding the exit code so SQLite files are
	// flushed even on command failure.
	iocache.CloseStores()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
