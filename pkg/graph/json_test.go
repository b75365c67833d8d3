package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

const sampleDataset = `{"(1.3, 103.8)":[{"end":[1.31,103.8],"weight":1112.5},{"end":[1.3,103.81],"weight":1113}],` +
	`"(1.31, 103.8)":[{"end":[1.3,103.8],"weight":1112.5}],` +
	`"(0.5, 0.5)":[],` +
	`"(1e-7, 2)":[{"end":[0.000001,2],"weight":0}]}`

func TestLoadJSONPreservesOrder(t *testing.T) {
	g, err := LoadJSON(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	want := []string{"(1.3, 103.8)", "(1.31, 103.8)", "(0.5, 0.5)", "(1e-7, 2)"}
	if len(g.NodeKeys()) != len(want) {
		t.Fatalf("NodeKeys = %v, want %v", g.NodeKeys(), want)
	}
	for i := range want {
		if g.NodeKeys()[i] != want[i] {
			t.Errorf("NodeKeys[%d] = %q, want %q", i, g.NodeKeys()[i], want[i])
		}
	}
	if g.NumEdges() != 4 {
		t.Errorf("NumEdges = %d, want 4", g.NumEdges())
	}

	edges := g.Neighbors("(1.3, 103.8)")
	if len(edges) != 2 || edges[0].To != "(1.31, 103.8)" || edges[1].To != "(1.3, 103.81)" {
		t.Errorf("unexpected edges: %+v", edges)
	}
	if !g.HasNode("(0.5, 0.5)") || len(g.Neighbors("(0.5, 0.5)")) != 0 {
		t.Error("node with empty edge list should be present with no edges")
	}
	// (1.3, 103.81) is only a destination.
	if g.HasNode("(1.3, 103.81)") {
		t.Error("destination-only key reported as source node")
	}
}

func TestWriteJSONIsByteIdentical(t *testing.T) {
	g, err := LoadJSON(strings.NewReader(sampleDataset))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteJSON(&buf, g); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if buf.String() != sampleDataset {
		t.Errorf("rewrite differs:\n got %s\nwant %s", buf.String(), sampleDataset)
	}

	// And once more through a file.
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := WriteJSONFile(path, g); err != nil {
		t.Fatalf("WriteJSONFile: %v", err)
	}
	g2, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var buf2 bytes.Buffer
	if err := WriteJSON(&buf2, g2); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if buf2.String() != sampleDataset {
		t.Errorf("file round trip differs:\n got %s\nwant %s", buf2.String(), sampleDataset)
	}
}

func TestLoadJSONMalformedKeyKeepsAdjacency(t *testing.T) {
	g, err := LoadJSON(strings.NewReader(`{"depot":[{"end":[1,1],"weight":3}],"(1, 1)":[]}`))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if len(g.Neighbors("depot")) != 1 {
		t.Error("malformed key lost its edges")
	}
	if len(g.Nodes()) != 1 || g.Nodes()[0].Key != "(1, 1)" {
		t.Errorf("Nodes() = %+v, want only (1, 1)", g.Nodes())
	}
}

func TestLoadJSONErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not an object", `[1, 2]`},
		{"empty input", ``},
		{"duplicate key", `{"(1, 1)":[],"(1, 1)":[]}`},
		{"end too short", `{"(1, 1)":[{"end":[1],"weight":1}]}`},
		{"end too long", `{"(1, 1)":[{"end":[1,2,3],"weight":1}]}`},
		{"negative weight", `{"(1, 1)":[{"end":[1,2],"weight":-1}]}`},
		{"edges not an array", `{"(1, 1)":{"end":[1,2]}}`},
		{"truncated", `{"(1, 1)":[`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadJSON(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadJSONEmptyObject(t *testing.T) {
	g, err := LoadJSON(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("LoadJSON: %v", err)
	}
	if g.NumNodes() != 0 {
		t.Errorf("NumNodes = %d, want 0", g.NumNodes())
	}
}
