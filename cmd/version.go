package main

import (
	"os"

	cdkmmr "github.com/0xPolygon/cdk-mmr"
	"github.com/urfave/cli/v2"
)

func versionCmd(*cli.Context) error {
	cdkmmr.PrintVersion(os.Stdout)
	return nil
}
