package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"lintang/saferoute/pkg/config"
	"lintang/saferoute/pkg/costmodel"
	"lintang/saferoute/pkg/engine/explanation"
	"lintang/saferoute/pkg/graph"
	"lintang/saferoute/pkg/loader"
	"lintang/saferoute/pkg/observability"
	"lintang/saferoute/pkg/server/rest/service"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "saferoute",
	Short:         "saferoute ranks safe alternative routes over a live road network.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := initializeConfig(); err != nil {
			return err
		}
		c, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		cfg = c
		observability.InitializeLogger(cfg.Logger)
		return nil
	},
}

// Execute runs the command tree, ctx is cancelled on SIGINT/SIGTERM.
func Execute(ctx context.Context) error {
	defer observability.Sync()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if ctx.Err() == nil {
			observability.GetLogger().Error("command failed", zap.Error(err))
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	pf.String("nodes", "", "nodes.csv (id,name,lat,lon)")
	pf.String("edges", "", "edges.csv (u,v,distance_m,freeflow_time_s,road_quality,safety_index,edge_id)")
	pf.String("updates", "", "updates.json keyed by edge_id")
	pf.Bool("bidirectional", false, "add every csv edge in both directions")
	pf.String("log-level", "", "debug|info|warn|error")

	_ = viper.BindPFlag("graph.nodes_file", pf.Lookup("nodes"))
	_ = viper.BindPFlag("graph.edges_file", pf.Lookup("edges"))
	_ = viper.BindPFlag("graph.updates_file", pf.Lookup("updates"))
	_ = viper.BindPFlag("graph.bidirectional", pf.Lookup("bidirectional"))
	_ = viper.BindPFlag("logger.level", pf.Lookup("log-level"))

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newRankCmd())
	rootCmd.AddCommand(newImportOSMCmd())
	rootCmd.AddCommand(newSimulateCmd())
}

// initializeConfig reads in config file and ENV variables if set.
func initializeConfig() error {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SAFEROUTE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}

func csvFiles(c *config.Config) loader.Files {
	return loader.Files{
		NodesPath:   c.Graph.NodesFile,
		EdgesPath:   c.Graph.EdgesFile,
		UpdatesPath: optionalFile(c.Graph.UpdatesFile),
	}
}

// optionalFile empty when path does not exist, updates.json is optional.
func optionalFile(path string) string {
	if path == "" {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func newRouteService(c *config.Config, log *zap.Logger, store service.SnapshotStore) (*service.RouteService, error) {
	model, err := costmodel.NewModel(c.Cost.Weights, c.Cost.QMax)
	if err != nil {
		return nil, err
	}
	return service.NewRouteService(log, model, explanation.NewExplainer(c.Explanation), store, service.Options{
		MaxK:            c.Engine.MaxK,
		MaxSpurSearches: c.Engine.MaxSpurSearches,
		BatchWorkers:    c.Engine.BatchWorkers,
		RequestTimeout:  c.Server.RequestTimeout,
	}), nil
}

func loadCSVSnapshot(c *config.Config) (*graph.Snapshot, error) {
	return loader.LoadSnapshot(csvFiles(c), c.Graph.Bidirectional)
}
