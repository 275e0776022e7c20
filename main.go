// Copyright
// SPDX-License-Identifier: MIT
// postedit: terminal editor for blog posts served over a REST API
package main

import (
	"os"

	"postedit/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
