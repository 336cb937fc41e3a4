// Command geokey inspects index descriptors, encodes records and plans queries.
package main

import (
	"fmt"
	"os"

	"github.com/arloliu/geokey/cmd"
)

func main() {
	rootCmd := cmd.NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
