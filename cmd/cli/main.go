// speedchart - charts for rotating speed logs
//
// speedchart reads the most recent timestamped samples from a log file and
// its rotations and renders them as a multi-series time chart.
package main

import (
	"os"

	"github.com/ccollicutt/speedchart/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
