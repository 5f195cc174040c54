// Package main provides versectl, the operator CLI for a versefinder
// verse database: corpus import, keyword search and reference lookup.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
