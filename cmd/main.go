package main

import (
	"os"

	cdkmmr "github.com/0xPolygon/cdk-mmr"
	"github.com/0xPolygon/cdk-mmr/common"
	"github.com/0xPolygon/cdk-mmr/config"
	"github.com/0xPolygon/cdk-mmr/log"
	"github.com/urfave/cli/v2"
)

const appName = "cdk-mmr"

var (
	configFileFlag = cli.StringSliceFlag{
		Name:     config.FlagCfg,
		Aliases:  []string{"c"},
		Usage:    "Configuration file(s)",
		Required: true,
	}
	checkpointFileFlag = cli.StringFlag{
		Name:     config.FlagCheckpointFile,
		Aliases:  []string{"cp"},
		Usage:    "JSON file with the start leaf index and the peaks of the previous blocks",
		Required: false,
	}
	componentsFlag = cli.StringSliceFlag{
		Name:     config.FlagComponents,
		Aliases:  []string{"co"},
		Usage:    "List of components to run",
		Required: false,
		Value:    cli.NewStringSlice(common.HEADER_MMR_SYNC, common.RPC),
	}
	saveConfigFlag = cli.StringFlag{
		Name:     config.FlagSaveConfigPath,
		Aliases:  []string{"s"},
		Usage:    "Save final configuration into to the indicated path (name: cdk_mmr_config.toml)",
		Required: false,
	}
	minConfigFlag = cli.BoolFlag{
		Name:     config.FlagMinConfig,
		Aliases:  []string{"m"},
		Usage:    "Print only the vars that have to be set",
		Required: false,
	}
	schemaFlag = cli.BoolFlag{
		Name:     config.FlagSchema,
		Usage:    "Print the JSON schema of the configuration instead",
		Required: false,
	}
)

func main() {
	app := cli.NewApp()
	app.Name = appName
	app.Version = cdkmmr.Version
	app.Usage = "Merkle mountain range accumulator of the block headers of a chain"
	app.Commands = []*cli.Command{
		{
			Name:    "version",
			Aliases: []string{},
			Usage:   "Application version and build",
			Action:  versionCmd,
		},
		{
			Name:    "run",
			Aliases: []string{},
			Usage:   "Run the accumulator",
			Action:  start,
			Flags: []cli.Flag{
				&configFileFlag,
				&checkpointFileFlag,
				&componentsFlag,
				&saveConfigFlag,
			},
		},
		{
			Name:    "config",
			Aliases: []string{},
			Usage:   "Print the default configuration",
			Action:  configCmd,
			Flags:   []cli.Flag{&minConfigFlag, &schemaFlag},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
		os.Exit(1)
	}
}
