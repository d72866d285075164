// Command churchsync synchronizes identity and group-membership state from a
// ChurchTools directory into the local collaboration platform's user, group,
// and shared-folder model.
package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
