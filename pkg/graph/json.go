package graph

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
)

// jsonEdge is one edge record of the at-rest dataset.
type jsonEdge struct {
	End    []float64 `json:"end"`
	Weight float64   `json:"weight"`
}

// Load reads a graph from path. Files ending in .bin are read as binary
// snapshots; anything else is parsed as the JSON dataset.
func Load(path string) (*Graph, error) {
	if filepath.Ext(path) == ".bin" {
		return ReadBinary(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	return LoadJSON(f)
}

// LoadJSON parses the dataset format
//
//	{"(lat, lng)": [{"end": [lat, lng], "weight": w}, ...], ...}
//
// Keys are streamed so their file order is kept; snapping ties depend on it.
func LoadJSON(r io.Reader) (*Graph, error) {
	dec := json.NewDecoder(bufio.NewReader(r))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("dataset root must be an object, got %v", tok)
	}

	b := NewBuilder()
	seen := make(map[string]struct{})

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read node key: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected node key, got %v", tok)
		}
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("duplicate node key %q", key)
		}
		seen[key] = struct{}{}

		var edges []jsonEdge
		if err := dec.Decode(&edges); err != nil {
			return nil, fmt.Errorf("node %q: %w", key, err)
		}

		b.AddNode(key)
		for i, e := range edges {
			if len(e.End) != 2 {
				return nil, fmt.Errorf("node %q edge %d: end must be [lat, lng], got %d values", key, i, len(e.End))
			}
			if e.Weight < 0 || math.IsNaN(e.Weight) || math.IsInf(e.Weight, 0) {
				return nil, fmt.Errorf("node %q edge %d: invalid weight %v", key, i, e.Weight)
			}
			b.AddEdge(key, Coordinate{Lat: e.End[0], Lng: e.End[1]}, e.Weight)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read dataset end: %w", err)
	}

	return b.Build(), nil
}

// WriteJSON writes g in the dataset format, compact, keys in graph order and
// numbers in the same notation as the keys.
func WriteJSON(w io.Writer, g *Graph) error {
	bw := bufio.NewWriter(w)

	bw.WriteByte('{')
	for i, key := range g.NodeKeys() {
		if i > 0 {
			bw.WriteByte(',')
		}
		quoted, err := json.Marshal(key)
		if err != nil {
			return fmt.Errorf("encode key %q: %w", key, err)
		}
		bw.Write(quoted)
		bw.WriteString(":[")
		for j, e := range g.Neighbors(key) {
			if j > 0 {
				bw.WriteByte(',')
			}
			bw.WriteString(`{"end":[`)
			bw.WriteString(FormatNumber(e.End.Lat))
			bw.WriteByte(',')
			bw.WriteString(FormatNumber(e.End.Lng))
			bw.WriteString(`],"weight":`)
			bw.WriteString(FormatNumber(e.Weight))
			bw.WriteByte('}')
		}
		bw.WriteByte(']')
	}
	bw.WriteByte('}')

	return bw.Flush()
}

// WriteJSONFile writes g to path via a temp file and an atomic rename.
func WriteJSONFile(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	if err := WriteJSON(f, g); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
