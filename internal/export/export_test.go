package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dd-go/internal/canvas"
	"dd-go/internal/config"
	"dd-go/internal/model"
	"dd-go/internal/testutil"
)

func sampleGraph() *canvas.Graph {
	return &canvas.Graph{
		DiagramID: 7,
		Name:      "Sales Overview",
		Settings:  model.DefaultCanvasSettings(),
		Nodes: []canvas.GraphNode{
			{
				Node:    canvas.Node{ID: canvas.NodeIDFor(1), Type: canvas.NodeType, Position: model.Point{X: 30, Y: 45}},
				Content: canvas.Content{Name: "Customer"},
			},
			{
				Node:    canvas.Node{ID: canvas.NodeIDFor(2), Type: canvas.NodeType, Position: model.Point{X: 300, Y: 45}},
				Content: canvas.Content{Name: "Order"},
			},
		},
		Edges: []canvas.Edge{{
			ID: "relationship-3", Type: canvas.EdgeType, Source: canvas.NodeIDFor(1), Target: canvas.NodeIDFor(2),
			Data: canvas.EdgeData{SourceCardinality: model.CardinalityOne, TargetCardinality: model.CardinalityOneMany},
		}},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "json", want: FormatJSON},
		{in: "DOT", want: FormatDOT},
		{in: "svg", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseFormat(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSnapshotName(t *testing.T) {
	clock := testutil.FixedClock()
	g := sampleGraph()

	assert.Equal(t, "diagram-7-sales-overview-20250103T103000Z.dot", SnapshotName(g, FormatDOT, clock))

	g.Name = "  ¡Órdenes & Co!  "
	assert.Equal(t, "diagram-7-rdenes-co-20250103T103000Z.json", SnapshotName(g, FormatJSON, clock))

	g.Name = "***"
	assert.Equal(t, "diagram-7-20250103T103000Z.json", SnapshotName(g, FormatJSON, clock))
}

func TestExporter_Export(t *testing.T) {
	vault := NewMemoryVault("test")
	e := NewExporter(vault, testutil.FixedClock(), nil)

	t.Run("dot", func(t *testing.T) {
		name, err := e.Export(sampleGraph(), FormatDOT)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, vault.Get(name, &buf))
		dot := buf.String()
		assert.True(t, strings.HasPrefix(dot, `digraph "Sales Overview" {`))
		assert.Contains(t, dot, `"object-1" -> "object-2" [taillabel="1" headlabel="1..*"];`)
		assert.Contains(t, dot, `"object-1" [label="{Customer}" pos="30,-45!"];`)
	})

	t.Run("json", func(t *testing.T) {
		name, err := e.Export(sampleGraph(), FormatJSON)
		require.NoError(t, err)

		var buf bytes.Buffer
		require.NoError(t, vault.Get(name, &buf))
		var decoded canvas.Graph
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, int64(7), decoded.DiagramID)
		assert.Len(t, decoded.Nodes, 2)
		assert.Len(t, decoded.Edges, 1)
	})

	names, err := vault.List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"diagram-7-sales-overview-20250103T103000Z.dot",
		"diagram-7-sales-overview-20250103T103000Z.json",
	}, names)
}

func TestNewVaultFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.ExportConfig
		wantErr bool
	}{
		{name: "memory", cfg: config.ExportConfig{Type: "memory"}},
		{name: "filesystem", cfg: config.ExportConfig{Type: "filesystem", FSRoot: t.TempDir()}},
		{name: "filesystem without root", cfg: config.ExportConfig{Type: "filesystem"}, wantErr: true},
		{name: "s3 without bucket", cfg: config.ExportConfig{Type: "s3"}, wantErr: true},
		{name: "unknown", cfg: config.ExportConfig{Type: "ftp"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewVaultFromConfig(t.Context(), tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, got.ValidateSetup())
		})
	}
}
