package main

import (
	"os"

	"github.com/nermi/website/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
