// Command sheetctl is an interactive REPL over the spreadsheet engine.
package main

import (
	"os"

	"github.com/Chelicerae-dev/cpp-spreadsheet/internal/cli"
)

func main() {
	if err := cli.Run(os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
