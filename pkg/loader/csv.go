package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lintang/saferoute/pkg/datastructure"
)

var ErrMalformed = errors.New("malformed record")

var (
	nodesHeader = []string{"id", "name", "lat", "lon"}
	edgesHeader = []string{"u", "v", "distance_m", "freeflow_time_s", "road_quality", "safety_index", "edge_id"}
)

// ReadNodes parses nodes.csv (id,name,lat,lon). name is only used in error messages.
func ReadNodes(r io.Reader, name string) ([]datastructure.Node, error) {
	nodes := []datastructure.Node{}
	err := readCSV(r, name, len(nodesHeader), func(line int, rec []string) error {
		p := fieldParser{file: name, line: line}
		n := datastructure.Node{
			ID:   p.int64(rec[0], "id"),
			Name: strings.TrimSpace(rec[1]),
			Lat:  p.float(rec[2], "lat"),
			Lon:  p.float(rec[3], "lon"),
		}
		if p.err != nil {
			return p.err
		}
		nodes = append(nodes, n)
		return nil
	})
	return nodes, err
}

// ReadEdges parses edges.csv (u,v,distance_m,freeflow_time_s,road_quality,safety_index,edge_id).
func ReadEdges(r io.Reader, name string) ([]datastructure.EdgeRecord, error) {
	edges := []datastructure.EdgeRecord{}
	err := readCSV(r, name, len(edgesHeader), func(line int, rec []string) error {
		p := fieldParser{file: name, line: line}
		e := datastructure.EdgeRecord{
			From:          p.int64(rec[0], "u"),
			To:            p.int64(rec[1], "v"),
			DistanceM:     p.float(rec[2], "distance_m"),
			FreeflowTimeS: p.float(rec[3], "freeflow_time_s"),
			RoadQuality:   p.float(rec[4], "road_quality"),
			SafetyIndex:   p.float(rec[5], "safety_index"),
			ID:            p.int64(rec[6], "edge_id"),
		}
		if p.err != nil {
			return p.err
		}
		edges = append(edges, e)
		return nil
	})
	return edges, err
}

func readCSV(r io.Reader, name string, numFields int, fn func(line int, rec []string) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first := true
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w: %v", name, ErrMalformed, err)
		}
		line, _ := cr.FieldPos(0)
		if first {
			first = false
			if len(rec) > 0 && !isNumeric(rec[0]) {
				continue // header
			}
		}
		if len(rec) < numFields {
			return fmt.Errorf("%s:%d: %w: expected %d fields, got %d", name, line, ErrMalformed, numFields, len(rec))
		}
		if err := fn(line, rec); err != nil {
			return err
		}
	}
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// fieldParser keeps the first parse error of a row.
type fieldParser struct {
	file string
	line int
	err  error
}

func (p *fieldParser) int64(s, field string) int64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		p.err = fmt.Errorf("%s:%d: %w: %s=%q", p.file, p.line, ErrMalformed, field, s)
	}
	return v
}

func (p *fieldParser) float(s, field string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		p.err = fmt.Errorf("%s:%d: %w: %s=%q", p.file, p.line, ErrMalformed, field, s)
	}
	return v
}

func WriteNodes(w io.Writer, nodes []datastructure.Node) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(nodesHeader); err != nil {
		return err
	}
	for _, n := range nodes {
		if err := cw.Write([]string{
			strconv.FormatInt(n.ID, 10),
			n.Name,
			formatFloat(n.Lat),
			formatFloat(n.Lon),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteEdges(w io.Writer, edges []datastructure.EdgeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(edgesHeader); err != nil {
		return err
	}
	for _, e := range edges {
		if err := cw.Write([]string{
			strconv.FormatInt(e.From, 10),
			strconv.FormatInt(e.To, 10),
			formatFloat(e.DistanceM),
			formatFloat(e.FreeflowTimeS),
			formatFloat(e.RoadQuality),
			formatFloat(e.SafetyIndex),
			strconv.FormatInt(e.ID, 10),
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
