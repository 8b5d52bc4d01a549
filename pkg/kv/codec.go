package kv

import (
	"lintang/saferoute/pkg/datastructure"

	"github.com/DataDog/zstd"
	"github.com/kelindar/binary"
)

// snapshotMeta disimpan di key meta, edges nya di chunk terpisah.
type snapshotMeta struct {
	ID            string
	CreatedAtUnix int64
	Bidirectional bool
	Nodes         []datastructure.Node
	Updates       []datastructure.EdgeUpdate
	EdgeChunks    int64
}

type edgeChunk struct {
	Edges []datastructure.EdgeRecord
}

func encode[T any](v T) ([]byte, error) {
	bb, err := binary.Marshal(v)
	if err != nil {
		return nil, err
	}
	return Compress(bb)
}

func decode[T any](bbCompressed []byte, v *T) error {
	bb, err := Decompress(bbCompressed)
	if err != nil {
		return err
	}
	return binary.Unmarshal(bb, v)
}

func Compress(bb []byte) ([]byte, error) {
	var bbCompressed []byte
	bbCompressed, err := zstd.Compress(bbCompressed, bb)
	if err != nil {
		return []byte{}, err
	}
	return bbCompressed, nil
}

func Decompress(bbCompressed []byte) ([]byte, error) {
	var bb []byte
	bb, err := zstd.Decompress(bb, bbCompressed)
	if err != nil {
		return []byte{}, err
	}
	return bb, nil
}
