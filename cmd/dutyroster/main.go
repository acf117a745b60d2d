// Package main is the entry point for the dutyroster CLI.
package main

import (
	"os"

	"github.com/jmylchreest/dutyroster/cmd/dutyroster/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
