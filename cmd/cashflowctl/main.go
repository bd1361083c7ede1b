// Command cashflowctl is the operator CLI: schema migrations and one-off
// threshold, alert and statistics queries against the configured backend.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
