package simulation

import (
	"context"
	"errors"
	"io/fs"

	"lintang/saferoute/pkg/datastructure"
	"lintang/saferoute/pkg/loader"
)

// FileSink rewrites updates.json every tick. A running server watching the file picks it up.
type FileSink struct {
	Path string
}

func (f FileSink) Current() ([]datastructure.EdgeUpdate, error) {
	updates, err := loader.ReadUpdatesFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return updates, err
}

func (f FileSink) Publish(ctx context.Context, updates []datastructure.EdgeUpdate) error {
	return loader.WriteUpdatesFile(f.Path, updates)
}
