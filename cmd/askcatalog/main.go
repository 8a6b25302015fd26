// Package main provides the entry point for the askcatalog CLI.
package main

import (
	"os"

	"github.com/askcatalog/askcatalog/cmd/askcatalog/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
