package main

import (
	"errors"

	"lintang/saferoute/pkg/observability"
	"lintang/saferoute/pkg/simulation"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Write seeded traffic, rain and blockage updates to updates.json every tick.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Graph.UpdatesFile == "" {
				return errors.New("graph.updates_file is required")
			}
			snap, err := loadCSVSnapshot(cfg)
			if err != nil {
				return err
			}

			ids := snap.EdgeIDs()
			baseQuality := make(map[int64]float64, len(ids))
			for _, id := range ids {
				e := snap.GetEdge(snap.EdgesByID(id)[0])
				baseQuality[id] = e.RoadQuality
			}

			sim := simulation.NewSimulator(cfg.Simulation, ids, cfg.Cost.QMax, observability.GetLogger())
			return sim.Run(cmd.Context(), simulation.FileSink{Path: cfg.Graph.UpdatesFile}, baseQuality)
		},
	}
	cmd.Flags().Int64("seed", 0, "random seed")
	cmd.Flags().Int("ticks", 0, "number of ticks, 0 runs until interrupted")
	cmd.Flags().Duration("interval", 0, "time between ticks")
	_ = viper.BindPFlag("simulation.seed", cmd.Flags().Lookup("seed"))
	_ = viper.BindPFlag("simulation.ticks", cmd.Flags().Lookup("ticks"))
	_ = viper.BindPFlag("simulation.interval", cmd.Flags().Lookup("interval"))
	return cmd
}
