package main

import (
	"os"

	"github.com/wonny/prebloom/cmd/prebloom/commands"
)

// main is the entry point for the prebloom CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/prebloom [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
