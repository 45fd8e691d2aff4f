package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/invopop/jsonschema"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/lastmonad/lastmonad-indexer/internal/common"
	"github.com/lastmonad/lastmonad-indexer/internal/config"
	"github.com/lastmonad/lastmonad-indexer/internal/db"
	"github.com/lastmonad/lastmonad-indexer/internal/indexer"
	"github.com/lastmonad/lastmonad-indexer/internal/logger"
	"github.com/lastmonad/lastmonad-indexer/internal/metrics"
	"github.com/lastmonad/lastmonad-indexer/internal/migrations"
	"github.com/lastmonad/lastmonad-indexer/internal/rpc"
	"github.com/lastmonad/lastmonad-indexer/internal/source"
	"github.com/lastmonad/lastmonad-indexer/internal/store"
	"github.com/lastmonad/lastmonad-indexer/pkg/api"
	pkgconfig "github.com/lastmonad/lastmonad-indexer/pkg/config"
)

const version = "1.0.0"

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "lastmonad-indexer",
	Short: "LastMonad event indexer",
	Long: `Indexes LastMonad elimination game events from the chain into SQLite
and serves aggregated pools, players, rounds and protocol statistics over a
REST API.`,
	Version: version,
	RunE:    runIndexer,
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the configuration file JSON schema",
	Long:  `Print a JSON schema describing the configuration file, for editor validation and tooling.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reflector := jsonschema.Reflector{ExpandedStruct: true}

		schema := reflector.Reflect(&pkgconfig.Config{})

		encoded, err := json.MarshalIndent(schema, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}

		fmt.Println(string(encoded))

		return nil
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to configuration file")
	rootCmd.AddCommand(schemaCmd)
}

func runIndexer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	log := logger.NewComponentLoggerFromConfig(common.ComponentDispatcher, cfg.Logging)
	defer log.Close()

	database, err := db.NewSQLiteDBFromConfig(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := migrations.RunDB(log, database); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ethClient, err := rpc.NewClient(ctx, cfg.Source.RPCURL, cfg.Source.Retry, log)
	if err != nil {
		return fmt.Errorf("failed to create RPC client: %w", err)
	}
	defer ethClient.Close()

	// The configured chain id is part of every event position key, so a
	// mismatch with the node would corrupt the dedup space.
	nodeChainID, err := ethClient.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to query node chain id: %w", err)
	}

	if nodeChainID.Uint64() != cfg.Source.ChainID {
		return fmt.Errorf("configured chain id %d does not match node chain id %s",
			cfg.Source.ChainID, nodeChainID)
	}

	log.Infof("connected to chain %d via %s", cfg.Source.ChainID, cfg.Source.RPCURL)

	maintenance := db.NewMaintenanceCoordinator(database, cfg.Maintenance,
		logger.NewComponentLoggerFromConfig(common.ComponentMaintenance, cfg.Logging))

	dispatcher := indexer.NewDispatcher(database, maintenance,
		logger.NewComponentLoggerFromConfig(common.ComponentDispatcher, cfg.Logging))

	poller := source.NewPoller(ethClient, dispatcher, database, cfg.Source,
		logger.NewComponentLoggerFromConfig(common.ComponentSource, cfg.Logging))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return poller.Run(groupCtx)
	})

	group.Go(func() error {
		return maintenance.Run(groupCtx)
	})

	if cfg.Metrics != nil && cfg.Metrics.Enabled {
		metricsServer := metrics.NewServer(cfg.Metrics,
			logger.NewComponentLoggerFromConfig(common.ComponentAPI, cfg.Logging))

		group.Go(func() error {
			return metricsServer.Run(groupCtx)
		})
	}

	if cfg.API != nil && cfg.API.Enabled {
		apiServer := api.NewServer(cfg.API, store.New(database),
			logger.NewComponentLoggerFromConfig(common.ComponentAPI, cfg.Logging))

		group.Go(func() error {
			return apiServer.Start(groupCtx)
		})
	}

	if err := group.Wait(); err != nil {
		return fmt.Errorf("indexer exited with error: %w", err)
	}

	log.Info("indexer stopped")

	return nil
}
