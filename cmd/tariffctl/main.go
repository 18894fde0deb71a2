// Package main is the entry point of the tariffctl operator CLI.
package main

import (
	"os"

	"github.com/OpenNSW/tariff/cmd/tariffctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
