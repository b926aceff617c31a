package main

import (
	"os"

	"github.com/rustyeddy/intervalbot/cmd/intervalbot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
