// Command agentview shows AGiXT agents in the terminal or serves the agent
// page over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rshade/agentview/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev" //nolint:gochecknoglobals // set by ldflags

func main() {
	os.Exit(run(context.Background()))
}

// run executes the root command and returns the process exit code.
func run(ctx context.Context) int {
	err := cli.NewRootCmd(version).ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return cli.ExitCode(err)
}
