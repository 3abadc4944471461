// Command pushnotification is a terminal demo of notification permission and
// local notification scheduling against the desktop notification host.
package main

import (
	"fmt"
	"os"

	"github.com/go-drift/pushnotification/cmd/pushnotification/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
