// Command abassist runs the ABAssist operations portal.
//
// Run with:
//
//	go run . serve
//
// The server listens on :5000 by default. Settings come from the
// environment, an optional .env file and an optional YAML file named by
// --config or ABASSIST_CONFIG.
package main

import (
	"fmt"
	"os"

	"github.com/arkantrust/abassist/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
