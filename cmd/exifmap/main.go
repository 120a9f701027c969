package main

import (
	"log/slog"
	"os"
)

var version = "development"

func main() {
	if err := newRootCmd(version, os.Stdout, os.Stderr).Execute(); err != nil {
		// Setup has installed the tint handler unless config loading failed.
		slog.Error("exifmap failed", "err", err)
		os.Exit(1)
	}
}
