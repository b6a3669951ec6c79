// Command reconcile canonicalizes, checks, and merges filesystem command
// sequences recorded by replicas.
package main

import (
	"fmt"
	"os"

	"github.com/csirmaz/algebraic-reconciler/internal/cli"
)

func main() {
	rootCmd := cli.NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
