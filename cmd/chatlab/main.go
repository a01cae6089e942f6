// Command chatlab is the cobra-based CLI for the chat-log corpus engine:
// import exports, inspect schema, run ad-hoc queries and analytics, check
// pending migrations, and start the optional debug dashboard — the same
// surface a host process drives through internal/boundary.API, exposed
// for scripting, grounded on clawwork-cli's cmd/clawwork command tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set at build time via ldflags, same convention as the teacher CLI.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	root := &cobra.Command{
		Use:   "chatlab",
		Short: "chatlab — chat-log import, analytics, and corpus inspection",
		Long:  "chatlab — import chat exports into a local corpus store and query/analyze them.",
	}

	root.AddCommand(
		importCmd(),
		queryCmd(),
		analyticsCmd(),
		migrateCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("chatlab %s (commit %s)\n", version, commit)
		},
	}
}
