package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	cdkmmr "github.com/0xPolygon/cdk-mmr"
	cdkcommon "github.com/0xPolygon/cdk-mmr/common"
	"github.com/0xPolygon/cdk-mmr/config"
	"github.com/0xPolygon/cdk-mmr/headermmrsync"
	"github.com/0xPolygon/cdk-mmr/log"
	"github.com/0xPolygon/cdk-mmr/rpc"
	jRPC "github.com/0xPolygon/cdk-rpc/rpc"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func start(cliCtx *cli.Context) error {
	c, err := config.Load(cliCtx)
	if err != nil {
		return err
	}

	log.Init(c.Log)

	if c.Log.Environment == log.EnvironmentDevelopment {
		cdkmmr.PrintVersion(os.Stdout)
		log.Info("Starting application")
	} else if c.Log.Environment == log.EnvironmentProduction {
		logVersion()
	}

	components, err := cdkcommon.ParseComponents(cliCtx.StringSlice(config.FlagComponents))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cliCtx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	syncer, err := createHeaderMMRSync(ctx, c.HeaderMMRSync)
	if err != nil {
		return err
	}
	defer func() {
		if err := syncer.Close(); err != nil {
			log.Errorf("error closing headermmrsync: %v", err)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	if cdkcommon.IsComponentEnabled(components, cdkcommon.HEADER_MMR_SYNC) {
		g.Go(func() error {
			err := syncer.Start(ctx)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	}
	if cdkcommon.IsComponentEnabled(components, cdkcommon.RPC) {
		server := createRPC(c.RPC, syncer)
		g.Go(server.Start)
		g.Go(func() error {
			<-ctx.Done()
			return server.Stop()
		})
	}

	err = g.Wait()
	if err != nil {
		log.Errorf("terminating application: %v", err)
		return err
	}
	log.Info("terminating application gracefully...")
	return nil
}

func createHeaderMMRSync(ctx context.Context, cfg headermmrsync.Config) (*headermmrsync.HeaderMMRSync, error) {
	log.Debugf("dialing client at: %s", cfg.URLRPC)
	client, err := ethclient.Dial(cfg.URLRPC)
	if err != nil {
		return nil, fmt.Errorf("failed to create client using URL: %s. Err: %w", cfg.URLRPC, err)
	}
	syncer, err := headermmrsync.New(ctx, cfg, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create headermmrsync: %w", err)
	}
	return syncer, nil
}

func createRPC(cfg jRPC.Config, syncer *headermmrsync.HeaderMMRSync) *jRPC.Server {
	logger := log.WithFields("module", cdkcommon.RPC)
	services := []jRPC.Service{
		{
			Name:    rpc.MMR,
			Service: rpc.NewMMREndpoints(logger, cfg.ReadTimeout.Duration, syncer),
		},
	}

	return jRPC.NewServer(cfg, services, jRPC.WithLogger(logger.GetSugaredLogger()))
}

func logVersion() {
	log.Infow("Starting application",
		// version is already logged by default
		"gitRevision", cdkmmr.GitRev,
		"gitBranch", cdkmmr.GitBranch,
		"goVersion", runtime.Version(),
		"built", cdkmmr.BuildDate,
		"os/arch", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	)
}
