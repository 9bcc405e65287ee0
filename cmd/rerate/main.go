package main

import (
	"os"

	"github.com/wonny/rerate/cmd/rerate/commands"
)

// main is the entry point for the rerate CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
