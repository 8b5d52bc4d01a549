package kv

import (
	"errors"
	"fmt"

	"lintang/saferoute/pkg/concurrent"
	"lintang/saferoute/pkg/datastructure"

	"github.com/cockroachdb/pebble"
	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

const (
	edgeChunkSize = 4096
	currentKey    = "snapshot/current"
	saveWorkers   = 4
)

// KVDB stores graph snapshots in pebble. Every snapshot is one meta value plus its edges split
// into zstd compressed chunks, and snapshot/current points at the id served on startup.
type KVDB struct {
	db      *pebble.DB
	verbose bool
}

func NewKVDB(db *pebble.DB, verbose bool) *KVDB {
	return &KVDB{db: db, verbose: verbose}
}

func metaKey(id string) []byte {
	return []byte("snapshot/" + id + "/meta")
}

func chunkKey(id string, chunk int64) []byte {
	return []byte(fmt.Sprintf("snapshot/%s/edges/%06d", id, chunk))
}

type saveChunkJob struct {
	key   []byte
	chunk edgeChunk
}

// SaveSnapshot writes rec and, when makeCurrent is set, marks it as the current snapshot.
func (k *KVDB) SaveSnapshot(rec datastructure.SnapshotRecord, makeCurrent bool) error {
	numChunks := (len(rec.Edges) + edgeChunkSize - 1) / edgeChunkSize

	bar := progressbar.NewOptions(numChunks,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionSetVisibility(k.verbose),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionSetDescription("[cyan][store][reset] saving snapshot edges to pebble db..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	workers := concurrent.NewWorkerPool[saveChunkJob, error](saveWorkers, numChunks)
	for i := 0; i < numChunks; i++ {
		end := min((i+1)*edgeChunkSize, len(rec.Edges))
		workers.AddJob(saveChunkJob{
			key:   chunkKey(rec.ID, int64(i)),
			chunk: edgeChunk{Edges: rec.Edges[i*edgeChunkSize : end]},
		})
	}
	workers.Close()

	workers.Start(k.saveChunk)
	workers.Wait()

	var saveErr error
	for err := range workers.CollectResults() {
		if err != nil && saveErr == nil {
			saveErr = err
		}
		bar.Add(1)
	}
	if saveErr != nil {
		return saveErr
	}

	meta, err := encode(snapshotMeta{
		ID:            rec.ID,
		CreatedAtUnix: rec.CreatedAtUnix,
		Bidirectional: rec.Bidirectional,
		Nodes:         rec.Nodes,
		Updates:       rec.Updates,
		EdgeChunks:    int64(numChunks),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", rec.ID, err)
	}
	if err := k.db.Set(metaKey(rec.ID), meta, pebble.Sync); err != nil {
		return err
	}

	if makeCurrent {
		return k.db.Set([]byte(currentKey), []byte(rec.ID), pebble.Sync)
	}
	return nil
}

func (k *KVDB) saveChunk(job saveChunkJob) error {
	val, err := encode(job.chunk)
	if err != nil {
		return err
	}
	return k.db.Set(job.key, val, pebble.Sync)
}

func (k *KVDB) get(key []byte) ([]byte, error) {
	val, closer, err := k.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(val))
	copy(out, val)
	return out, nil
}

func (k *KVDB) LoadSnapshot(id string) (datastructure.SnapshotRecord, error) {
	raw, err := k.get(metaKey(id))
	if err != nil {
		return datastructure.SnapshotRecord{}, fmt.Errorf("snapshot %s: %w", id, err)
	}
	var meta snapshotMeta
	if err := decode(raw, &meta); err != nil {
		return datastructure.SnapshotRecord{}, fmt.Errorf("decode snapshot %s: %w", id, err)
	}

	rec := datastructure.SnapshotRecord{
		ID:            meta.ID,
		CreatedAtUnix: meta.CreatedAtUnix,
		Bidirectional: meta.Bidirectional,
		Nodes:         meta.Nodes,
		Edges:         []datastructure.EdgeRecord{},
		Updates:       meta.Updates,
	}
	for i := int64(0); i < meta.EdgeChunks; i++ {
		raw, err := k.get(chunkKey(id, i))
		if err != nil {
			return datastructure.SnapshotRecord{}, fmt.Errorf("snapshot %s chunk %d: %w", id, i, err)
		}
		var chunk edgeChunk
		if err := decode(raw, &chunk); err != nil {
			return datastructure.SnapshotRecord{}, fmt.Errorf("decode snapshot %s chunk %d: %w", id, i, err)
		}
		rec.Edges = append(rec.Edges, chunk.Edges...)
	}
	return rec, nil
}

func (k *KVDB) LoadCurrentSnapshot() (datastructure.SnapshotRecord, error) {
	id, err := k.get([]byte(currentKey))
	if err != nil {
		return datastructure.SnapshotRecord{}, err
	}
	return k.LoadSnapshot(string(id))
}

func (k *KVDB) Close() error {
	return k.db.Close()
}
