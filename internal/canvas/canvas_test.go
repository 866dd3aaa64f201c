package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dd-go/internal/model"
	"dd-go/internal/store"
	"dd-go/internal/testutil"
)

type fixture struct {
	canvas   *Canvas
	diagrams *store.DiagramStore
	repo     *store.RepositoryStore
	backend  *testutil.FakeBackend
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := testutil.NewFakeBackend(nil)
	repo := store.NewRepositoryStore(store.RepositoryServices{
		Superdomains:  b.Superdomains(),
		Domains:       b.Domains(),
		Entities:      b.Entities(),
		Attributes:    b.Attributes(),
		Relationships: b.Relationships(),
	}, nil)
	diagrams := store.NewDiagramStore(b.Diagrams(), nil)
	return &fixture{
		canvas:   New(diagrams, repo, testutil.NewStubIDGenerator(), nil),
		diagrams: diagrams,
		repo:     repo,
		backend:  b,
	}
}

// openDiagram seeds a diagram with one placement per entity and opens it.
func (f *fixture) openDiagram(t *testing.T, entities ...model.Entity) model.Diagram {
	t.Helper()
	ctx := context.Background()
	d := f.backend.AddDiagram("Sales Overview")
	for i, e := range entities {
		_, err := f.backend.Diagrams().AddObject(ctx, d.ID, model.DiagramObjectCreate{
			ObjectType: model.ObjectEntity,
			ObjectID:   e.ID,
			PositionX:  float64(i) * 300,
			PositionY:  float64(i) * 150,
		})
		require.NoError(t, err)
	}
	require.NoError(t, f.diagrams.SetActiveDiagram(ctx, d.ID))
	return d
}

func TestSnap(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{in: 0, want: 0},
		{in: 7, want: 0},
		{in: 8, want: 15},
		{in: 22.4, want: 15},
		{in: 37, want: 30},
		{in: -8, want: -15},
		{in: 45, want: 45},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Snap(tt.in), "Snap(%v)", tt.in)
	}
}

func TestNodeID_RoundTrip(t *testing.T) {
	id := NodeIDFor(42)
	assert.Equal(t, NodeID("object-42"), id)

	got, err := id.PlacementID()
	require.NoError(t, err)
	assert.Equal(t, int64(42), got)

	_, err = NodeID("relationship-1").PlacementID()
	assert.Error(t, err)
	_, err = NodeID("object-x").PlacementID()
	assert.Error(t, err)
}

func TestCardinalitySymbol(t *testing.T) {
	tests := []struct {
		in   model.Cardinality
		want string
	}{
		{model.CardinalityOne, "1"},
		{model.CardinalityZeroOne, "0..1"},
		{model.CardinalityOneMany, "1..*"},
		{model.CardinalityZeroMany, "*"},
		{"", ""},
		{"MANY_MANY", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CardinalitySymbol(tt.in), "CardinalitySymbol(%q)", tt.in)
	}
}

func TestEdgeGeometry(t *testing.T) {
	g := EdgeGeometry(0, 0, 100, 200, EdgeData{
		SourceCardinality: model.CardinalityOne,
		TargetCardinality: model.CardinalityZeroMany,
		Label:             "places",
	})

	assert.Equal(t, "M 0,0 L 100,200", g.Path)
	assert.Equal(t, Glyph{Text: "1", X: 25, Y: 50}, g.SourceGlyph)
	assert.Equal(t, Glyph{Text: "*", X: 75, Y: 150}, g.TargetGlyph)
	require.NotNil(t, g.Label)
	assert.Equal(t, Glyph{Text: "places", X: 50, Y: 100}, *g.Label)

	bare := EdgeGeometry(0, 0, 10, 10, EdgeData{})
	assert.Nil(t, bare.Label)
	assert.Empty(t, bare.SourceGlyph.Text)
}

func TestAnchors(t *testing.T) {
	src := Node{Position: model.Point{X: 0, Y: 0}, Width: 180, Height: 60}
	tgt := Node{Position: model.Point{X: 300, Y: 150}, Width: 180, Height: 60}

	sx, sy, tx, ty := Anchors(src, tgt)
	assert.Equal(t, []float64{90, 60, 390, 150}, []float64{sx, sy, tx, ty})
}

func TestEdges(t *testing.T) {
	nodes := []Node{
		{ID: "object-10", Data: NodeData{ObjectType: model.ObjectEntity, ObjectID: 1}},
		{ID: "object-11", Data: NodeData{ObjectType: model.ObjectEntity, ObjectID: 2}},
		{ID: "object-12", Data: NodeData{ObjectType: model.ObjectEntity, ObjectID: 1}},
		{ID: "object-13", Data: NodeData{ObjectType: model.ObjectDomain, ObjectID: 3}},
	}
	rels := []model.Relationship{
		{ID: 1, SourceEntityID: 1, TargetEntityID: 2, SourceCardinality: model.CardinalityOne, TargetCardinality: model.CardinalityZeroMany, Description: "places"},
		{ID: 2, SourceEntityID: 2, TargetEntityID: 3},
		{ID: 3, SourceEntityID: 2, TargetEntityID: 1},
	}

	t.Run("placed entities only", func(t *testing.T) {
		edges := Edges(rels, nodes, nil)
		require.Len(t, edges, 2)
		assert.Equal(t, "relationship-1", edges[0].ID)
		assert.Equal(t, EdgeType, edges[0].Type)
		assert.Equal(t, NodeID("object-10"), edges[0].Source, "first placement wins")
		assert.Equal(t, NodeID("object-11"), edges[0].Target)
		assert.Equal(t, "places", edges[0].Data.Label)
		assert.Equal(t, "relationship-3", edges[1].ID)
	})

	t.Run("hidden on this diagram", func(t *testing.T) {
		edges := Edges(rels, nodes, []model.DiagramRelationship{
			{RelationshipID: 1, IsVisible: false},
			{RelationshipID: 3, IsVisible: true},
		})
		require.Len(t, edges, 1)
		assert.Equal(t, "relationship-3", edges[0].ID)
	})
}

func TestCanvas_DropAddsObject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sales := f.backend.AddSuperdomain("Sales")
	orders := f.backend.AddDomain(sales.ID, "Orders")
	order := f.backend.AddEntity(orders.ID, "Order")
	f.openDiagram(t)

	payload, err := json.Marshal(order)
	require.NoError(t, err)

	obj, err := f.canvas.Drop(ctx, payload, 250, 180, Rect{Left: 50, Top: 30, Width: 800, Height: 600})
	require.NoError(t, err)
	require.NotNil(t, obj)
	assert.Equal(t, model.ObjectEntity, obj.ObjectType)
	assert.Equal(t, order.ID, obj.ObjectID)
	assert.Equal(t, 200.0, obj.PositionX)
	assert.Equal(t, 150.0, obj.PositionY)

	nodes := f.canvas.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, NodeIDFor(obj.ID), nodes[0].ID)
	assert.Equal(t, NodeType, nodes[0].Type)
}

func TestCanvas_DropWithoutPayload(t *testing.T) {
	f := newFixture(t)
	f.openDiagram(t)

	obj, err := f.canvas.Drop(context.Background(), nil, 10, 10, Rect{})
	require.NoError(t, err)
	assert.Nil(t, obj)
	assert.Zero(t, f.backend.CallCount("Diagrams.AddObject"))
}

func TestCanvas_DropRejectsBadPayload(t *testing.T) {
	f := newFixture(t)
	f.openDiagram(t)

	_, err := f.canvas.Drop(context.Background(), []byte("not json"), 10, 10, Rect{})
	assert.Error(t, err)
}

func TestCanvas_DragStop(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		snap  bool
		x, y  float64
		wantX float64
		wantY float64
	}{
		{name: "snapped", snap: true, x: 101, y: 52, wantX: 105, wantY: 45},
		{name: "free", snap: false, x: 101, y: 52, wantX: 101, wantY: 52},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			e := f.backend.AddEntity(1, "Customer")
			f.openDiagram(t, e)
			f.diagrams.SetSnapToGrid(tt.snap)

			node := f.canvas.Nodes()[0]
			require.NoError(t, f.canvas.DragStop(ctx, node.ID, tt.x, tt.y))

			moved := f.canvas.Nodes()[0]
			assert.Equal(t, tt.wantX, moved.Position.X)
			assert.Equal(t, tt.wantY, moved.Position.Y)
			assert.Equal(t, 1, f.backend.CallCount("Diagrams.UpdateObject"))
		})
	}
}

func TestCanvas_DragStopRejectsForeignID(t *testing.T) {
	f := newFixture(t)
	f.openDiagram(t)

	err := f.canvas.DragStop(context.Background(), "relationship-4", 0, 0)
	assert.Error(t, err)
	assert.Zero(t, f.backend.CallCount("Diagrams.UpdateObject"))
}

func TestCanvas_Connect(t *testing.T) {
	f := newFixture(t)
	a := f.backend.AddEntity(1, "Customer")
	b := f.backend.AddEntity(1, "Order")
	f.openDiagram(t, a, b)
	nodes := f.canvas.Nodes()

	edge, ok := f.canvas.Connect(nodes[0].ID, nodes[1].ID)
	require.True(t, ok)
	assert.Equal(t, "id-1", edge.ID)
	assert.True(t, edge.Local)

	_, ok = f.canvas.Connect(nodes[0].ID, nodes[1].ID)
	assert.False(t, ok, "duplicate connection")

	_, ok = f.canvas.Connect(nodes[0].ID, "object-999")
	assert.False(t, ok, "unknown target")

	assert.Len(t, f.canvas.LocalEdges(), 1)
	assert.Zero(t, f.backend.CallCount("Relationships.Create"), "connect stays local")

	f.canvas.ClearLocalEdges()
	assert.Empty(t, f.canvas.LocalEdges())
}

func TestCanvas_Graph(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sales := f.backend.AddSuperdomain("Sales")
	orders := f.backend.AddDomain(sales.ID, "Orders")
	customer := f.backend.AddEntity(orders.ID, "Customer")
	order := f.backend.AddEntity(orders.ID, "Order")
	f.backend.AddAttribute(customer.ID, "id", "INTEGER", true)
	f.backend.AddAttribute(customer.ID, "email", "VARCHAR", false)
	f.backend.AddRelationship(customer.ID, order.ID, model.CardinalityOne, model.CardinalityZeroMany)
	f.openDiagram(t, customer, order)

	require.NoError(t, f.repo.LoadSuperdomains(ctx))
	require.NoError(t, f.repo.LoadDomains(ctx, sales.ID))
	require.NoError(t, f.repo.LoadEntities(ctx, orders.ID))
	require.NoError(t, f.repo.LoadRelationships(ctx, customer.ID))

	g, err := f.canvas.Graph(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Sales Overview", g.Name)
	require.Len(t, g.Nodes, 2)
	assert.Equal(t, "Customer", g.Nodes[0].Content.Name)
	assert.Len(t, g.Nodes[0].Content.Attributes, 2)
	assert.Equal(t, 2, f.backend.CallCount("Attributes.List"), "one load per placed entity")
	require.Len(t, g.Edges, 1)

	geo := g.Geometry()
	require.Contains(t, geo, g.Edges[0].ID)
	assert.Equal(t, "1", geo[g.Edges[0].ID].SourceGlyph.Text)

	var buf bytes.Buffer
	require.NoError(t, g.ToDot(&buf))
	dot := buf.String()
	assert.Contains(t, dot, `digraph "Sales Overview" {`)
	assert.Contains(t, dot, `label="{Customer|PK id : INTEGER\lemail : VARCHAR\l}"`)
	assert.Contains(t, dot, `taillabel="1" headlabel="*"`)
	assert.Contains(t, dot, `pos="0,0!"`)
	assert.Contains(t, dot, `pos="300,-150!"`)

	snap, err := g.Snapshot()
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(snap, &decoded))
	assert.Equal(t, "Sales Overview", decoded["name"])
}

func TestCanvas_GraphUnresolvedNode(t *testing.T) {
	f := newFixture(t)
	ghost := model.Entity{ID: 77, Name: "Ghost"}
	f.openDiagram(t, ghost)

	g, err := f.canvas.Graph(context.Background())
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.True(t, g.Nodes[0].Content.Loading)

	var buf bytes.Buffer
	require.NoError(t, g.ToDot(&buf))
	assert.Contains(t, buf.String(), `label="{entity 77}"`)
}

func TestCanvas_GraphWithoutActiveDiagram(t *testing.T) {
	f := newFixture(t)
	_, err := f.canvas.Graph(context.Background())
	assert.Error(t, err)
}

func TestDotEscape(t *testing.T) {
	assert.Equal(t, `a \"b\" \\c`, dotEscape(`a "b" \c`))
	assert.Equal(t, `\{x\|y\}`, recordEscape(`{x|y}`))
}

func TestGraphNode_ToDotPosition(t *testing.T) {
	tests := []struct {
		name string
		x, y float64
		want string
	}{
		{name: "origin", x: 0, y: 0, want: `pos="0,0!"`},
		{name: "negative zero y", x: 15, y: math.Copysign(0, -1), want: `pos="15,0!"`},
		{name: "below origin", x: 300, y: 150, want: `pos="300,-150!"`},
		{name: "above origin", x: 0, y: -20.5, want: `pos="0,20.5!"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := GraphNode{
				Node:    Node{ID: NodeIDFor(1), Position: model.Point{X: tt.x, Y: tt.y}},
				Content: Content{Name: "Customer"},
			}
			var buf bytes.Buffer
			require.NoError(t, n.ToDot(&buf))
			assert.Contains(t, buf.String(), tt.want)
			assert.NotContains(t, buf.String(), "-0!")
		})
	}
}
