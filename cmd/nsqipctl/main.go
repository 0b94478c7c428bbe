// nsqipctl filters and summarizes NSQIP registry exports from the command line.
package main

import (
	"os"

	"github.com/JonMunkholm/nsqipdash/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
