// Pipette - A colour sampler and harmony palette generator
//
// Pipette samples a colour from a page snapshot through the same
// background, popup and page-script protocol an eyedropper extension uses,
// and derives six harmony palettes from it.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/pipette/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
