// Command shardcost estimates the cost of filter, join and group-by queries
// against a sharded document collection, for comparing sharding and
// denormalization strategies before deployment.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shardcost/internal/catalog"
	"github.com/kailas-cloud/shardcost/internal/config"
	logpkg "github.com/kailas-cloud/shardcost/internal/logger"
	"github.com/kailas-cloud/shardcost/internal/queries"
	"github.com/kailas-cloud/shardcost/internal/usecase/aggregate"
	"github.com/kailas-cloud/shardcost/internal/usecase/costmodel"
	"github.com/kailas-cloud/shardcost/internal/usecase/filter"
	"github.com/kailas-cloud/shardcost/internal/usecase/join"
	"github.com/kailas-cloud/shardcost/internal/usecase/sharding"
	"github.com/kailas-cloud/shardcost/internal/usecase/size"
	"github.com/kailas-cloud/shardcost/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var catalogPath string

	root := &cobra.Command{
		Use:           "shardcost",
		Short:         "Query cost model for sharded document collections",
		Version:       fmt.Sprintf("%s (%s, %s)", version.Version, version.Commit, version.Date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file (default from config)")

	root.AddCommand(newServeCmd(&catalogPath))
	root.AddCommand(newQueryCmd(&catalogPath))
	root.AddCommand(newCompareCmd(&catalogPath))
	root.AddCommand(newCatalogCmd(&catalogPath))
	return root
}

// app is the composition root: configuration, logging, catalog and the
// operator graph every subcommand runs against.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	cat        *catalog.Catalog
	sizes      *size.Cache
	filters    *filter.Operator
	joins      *join.Operator
	aggregates *aggregate.Operator
	analyzer   *sharding.Analyzer
	runner     *queries.Runner
}

func buildApp(catalogPath string) (*app, error) {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		// The CLI works without a config file; serve mode wants one but can
		// run on defaults too.
		cfg = config.Default()
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	model, err := costmodel.New(cfg.Model)
	if err != nil {
		return nil, fmt.Errorf("build cost model: %w", err)
	}

	analyzer, err := sharding.New(model.ClusterServers())
	if err != nil {
		return nil, fmt.Errorf("build sharding analyzer: %w", err)
	}

	sizes := size.NewCache()
	filters := filter.New(model, sizes)
	joins := join.New(model, sizes, filters)
	aggregates := aggregate.New(model, filters)
	runner := queries.New(cat, filters, joins, aggregates)

	logger.Debug("catalog loaded",
		zap.String("path", catalogPath),
		zap.Int("collections", cat.CollectionCount()),
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		cat:        cat,
		sizes:      sizes,
		filters:    filters,
		joins:      joins,
		aggregates: aggregates,
		analyzer:   analyzer,
		runner:     runner,
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}
