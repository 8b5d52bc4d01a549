package loader

import (
	"fmt"
	"io"
	"os"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/graph"
)

// Files names the three inputs of a snapshot. UpdatesPath is optional.
type Files struct {
	NodesPath   string
	EdgesPath   string
	UpdatesPath string
}

// LoadSnapshot reads nodes and edges, builds the snapshot and applies updates.json when given.
func LoadSnapshot(files Files, bidirectional bool) (*graph.Snapshot, error) {
	nodes, err := readFile(files.NodesPath, ReadNodes)
	if err != nil {
		return nil, err
	}
	edges, err := readFile(files.EdgesPath, ReadEdges)
	if err != nil {
		return nil, err
	}

	b := graph.NewBuilder(bidirectional)
	for _, n := range nodes {
		b.AddNode(n)
	}
	for _, e := range edges {
		b.AddEdge(e)
	}
	snap, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", files.EdgesPath, err)
	}

	if files.UpdatesPath == "" {
		return snap, nil
	}
	updates, err := ReadUpdatesFile(files.UpdatesPath)
	if err != nil {
		return nil, err
	}
	snap, err = snap.ApplyUpdates(updates)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", files.UpdatesPath, err)
	}
	return snap, nil
}

func ReadUpdatesFile(path string) ([]datastructure.EdgeUpdate, error) {
	return readFile(path, ReadUpdates)
}

func WriteUpdatesFile(path string, updates []datastructure.EdgeUpdate) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := WriteUpdates(f, updates); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// rename supaya watcher gak baca file setengah jadi
	return os.Rename(tmp, path)
}

func readFile[T any](path string, read func(r io.Reader, name string) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()
	return read(f, path)
}
