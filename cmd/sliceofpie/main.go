// Command sliceofpie inspects and charts CSV/XLSX files from the shell.
package main

import (
	"os"

	"github.com/JonMunkholm/SliceOfPie/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
