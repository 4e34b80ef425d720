// Package main provides the entry point for the bidhunt CLI.
package main

import (
	"fmt"
	"os"

	"github.com/10thony/CobecDev-sub005/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
