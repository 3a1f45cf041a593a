package main

import (
	"log/slog"
	"os"

	"github.com/ir-automation/forensic-launcher/cmd/forensic-launcher/commands"
)

func main() {
	// Replaced once configuration is loaded; covers flag and config errors.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	commands.Execute()
}
