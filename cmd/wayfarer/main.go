package main

import (
	"fmt"
	"os"

	"github.com/tillberg/autorestart"

	"github.com/soyeahso/wayfarer/internal/cli"
)

func main() {
	// Re-exec when the binary is rebuilt in place.
	go autorestart.RestartOnChange()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wayfarer:", err)
		os.Exit(1)
	}
}
