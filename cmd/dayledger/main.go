// Command dayledger tracks daily objectives and a rolling score.
package main

import (
	"os"

	"github.com/dayledger/dayledger/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
