// Command monthlog builds the monthly report of a log file.
//
// Run without arguments to see the usage, with -help '*' to see the
// documentation of all the components.
package main

import (
	"os"

	"github.com/monthlog/monthlog"
	"github.com/monthlog/monthlog/input"
	"github.com/monthlog/monthlog/metrics"
	"github.com/monthlog/monthlog/output"
	"github.com/monthlog/monthlog/upload"
)

func main() {
	comp := monthlog.Components{
		Inputs:  input.All,
		Outputs: output.All,
		Uploads: upload.All,
		Metrics: metrics.All,
	}

	// Errors are logged by MainCLI.
	if err := monthlog.MainCLI(comp); err != nil {
		os.Exit(monthlog.ExitCode(err))
	}
}
