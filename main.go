package main

import (
	"os"

	"github.com/lkirchmair/bedcast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
