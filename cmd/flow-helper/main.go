package main

import (
	"os"

	"github.com/flow-design/flow-helper/internal/cli/commands"
)

// Version information - set at build time with
// -ldflags "-X main.version=... -X main.commit=... -X main.date=..."
var (
	version = ""
	commit  = ""
	date    = ""
)

func main() {
	if version != "" {
		commands.Version = version
	}
	if commit != "" {
		commands.GitCommit = commit
	}
	if date != "" {
		commands.BuildDate = date
	}

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
