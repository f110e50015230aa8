package main

import (
	"fmt"
	"os"

	"stt-bridge/cmd/sttbridge/cmd"
	"stt-bridge/internal/config"
)

func main() {
	// stdout belongs to the protocol, so only report .env problems on stderr.
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}

	os.Exit(cmd.Execute())
}
