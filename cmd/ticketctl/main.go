package main

import (
	"os"

	"stacksevents/cmd/ticketctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
