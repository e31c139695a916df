package main

import (
	"os"

	"github.com/iliyamo/letters/internal/cli"
	"github.com/iliyamo/letters/internal/logging"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		logging.Error().Err(err).Msg("letters failed")
		os.Exit(1)
	}
}
