package main

import (
	"os"

	"box3-dedup-service/cmd/box3dedup/cmd"
	"box3-dedup-service/pkg/errors"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(errors.GetExitCode(err))
	}
}
