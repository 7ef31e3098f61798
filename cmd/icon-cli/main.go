// icon-cli is a command-line client for ICON networks.
//
// Usage:
//
//	icon-cli [--network mainnet] [--keystore FILE] <command> [flags]
//	icon-cli --help
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := execute(defaultEnv()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
