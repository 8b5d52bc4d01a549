package main

import (
	"errors"
	"io"
	"io/fs"
	"os"

	"lintang/saferoute/pkg/loader"
	"lintang/saferoute/pkg/observability"
	"lintang/saferoute/pkg/osmparser"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newImportOSMCmd() *cobra.Command {
	var pbf string
	cmd := &cobra.Command{
		Use:   "import-osm",
		Short: "Convert an osm.pbf extract into nodes.csv and edges.csv.",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := observability.GetLogger()
			res, err := osmparser.ParseFile(cmd.Context(), pbf, true)
			if err != nil {
				return err
			}

			if err := writeFile(cfg.Graph.NodesFile, func(w io.Writer) error { return loader.WriteNodes(w, res.Nodes) }); err != nil {
				return err
			}
			if err := writeFile(cfg.Graph.EdgesFile, func(w io.Writer) error { return loader.WriteEdges(w, res.Edges) }); err != nil {
				return err
			}
			if _, err := os.Stat(cfg.Graph.UpdatesFile); errors.Is(err, fs.ErrNotExist) {
				if err := loader.WriteUpdatesFile(cfg.Graph.UpdatesFile, nil); err != nil {
					return err
				}
			}

			log.Info("imported openstreetmap extract",
				zap.String("pbf", pbf),
				zap.Int("nodes", len(res.Nodes)),
				zap.Int("edges", len(res.Edges)),
				zap.String("nodes_file", cfg.Graph.NodesFile),
				zap.String("edges_file", cfg.Graph.EdgesFile))
			return nil
		},
	}
	cmd.Flags().StringVarP(&pbf, "file", "f", "solo_jogja.osm.pbf", "openstreetmap pbf extract")
	return cmd
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
