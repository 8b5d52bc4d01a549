package main

import (
	"encoding/json"
	"fmt"
	"os"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/observability"
	"lintang/saferoute/pkg/server/rest/service"

	"github.com/spf13/cobra"
)

type rankFlags struct {
	source, target         int64
	sourceName, targetName string
	k                      int
	out                    string
}

func newRankCmd() *cobra.Command {
	f := &rankFlags{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank k alternative routes once and print them as JSON.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, f)
		},
	}
	cmd.Flags().Int64Var(&f.source, "source", -1, "source node id")
	cmd.Flags().Int64Var(&f.target, "target", -1, "target node id")
	cmd.Flags().StringVar(&f.sourceName, "source-name", "", "source node name (exact, then case-insensitive substring)")
	cmd.Flags().StringVar(&f.targetName, "target-name", "", "target node name (exact, then case-insensitive substring)")
	cmd.Flags().IntVarP(&f.k, "k", "k", 0, "number of routes (default engine.default_k)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "also write the result to this json file")
	cmd.MarkFlagsMutuallyExclusive("source", "source-name")
	cmd.MarkFlagsMutuallyExclusive("target", "target-name")
	return cmd
}

func runRank(cmd *cobra.Command, f *rankFlags) error {
	ctx := cmd.Context()
	svc, err := newRouteService(cfg, observability.GetLogger(), nil)
	if err != nil {
		return err
	}
	snap, err := loadCSVSnapshot(cfg)
	if err != nil {
		return err
	}
	if err := svc.LoadSnapshot(snap, false); err != nil {
		return err
	}

	resolve := func(id int64, name, flag string) (int64, error) {
		if name == "" {
			if !cmd.Flags().Changed(flag) {
				return 0, fmt.Errorf("either --%s or --%s-name is required", flag, flag)
			}
			return id, nil
		}
		n, err := svc.FindNodeByName(ctx, name)
		if err != nil {
			return 0, err
		}
		return n.ID, nil
	}
	src, err := resolve(f.source, f.sourceName, "source")
	if err != nil {
		return err
	}
	dst, err := resolve(f.target, f.targetName, "target")
	if err != nil {
		return err
	}

	k := f.k
	if k == 0 {
		k = cfg.Engine.DefaultK
	}
	res, err := svc.Rank(ctx, service.RankRequest{SourceNode: src, TargetNode: dst, K: k})
	if err != nil {
		return err
	}
	return writeResult(res, f.out)
}

func writeResult(res datastructure.RankedResult, out string) error {
	bb, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	bb = append(bb, '\n')
	if _, err := os.Stdout.Write(bb); err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	return os.WriteFile(out, bb, 0o644)
}
