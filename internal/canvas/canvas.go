package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sync"

	"dd-go/internal/dd"
	"dd-go/internal/model"
)

// Diagrams is the part of the diagram store the canvas drives.
type Diagrams interface {
	ActiveDiagram() *model.Diagram
	DiagramObjects() []model.DiagramObject
	CanvasSettings() model.CanvasSettings
	AddObject(ctx context.Context, objectType model.ObjectType, objectID int64, x, y float64) (*model.DiagramObject, error)
	UpdateObjectPosition(ctx context.Context, objectID int64, x, y float64) error
}

// Rect is the screen-space box of the canvas element.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Canvas is the gesture layer over one diagram store.
type Canvas struct {
	diagrams Diagrams
	repo     Repository
	ids      dd.IDGenerator
	logger   dd.Logger

	mu         sync.Mutex
	localEdges []Edge
}

func New(diagrams Diagrams, repo Repository, ids dd.IDGenerator, logger dd.Logger) *Canvas {
	if logger == nil {
		logger = dd.NewNopLogger()
	}
	return &Canvas{diagrams: diagrams, repo: repo, ids: ids, logger: logger}
}

// Nodes projects the active diagram's objects.
func (c *Canvas) Nodes() []Node {
	return Project(c.diagrams.DiagramObjects())
}

// DragStop commits a node's final position. Intermediate drag positions are
// never sent. With snap-to-grid on, the position is rounded to the grid.
func (c *Canvas) DragStop(ctx context.Context, id NodeID, x, y float64) error {
	placementID, err := id.PlacementID()
	if err != nil {
		return err
	}
	if c.diagrams.CanvasSettings().SnapToGrid {
		x, y = Snap(x), Snap(y)
	}
	c.logger.Debug("node dropped", "node", id, "x", x, "y", y)
	return c.diagrams.UpdateObjectPosition(ctx, placementID, x, y)
}

// Drop places an entity dragged from the repository tree. payload is the
// serialized entity; the drop point is converted from screen coordinates to
// canvas coordinates by subtracting the canvas origin. A drop carrying no
// payload is ignored and returns a nil object.
func (c *Canvas) Drop(ctx context.Context, payload []byte, clientX, clientY float64, bounds Rect) (*model.DiagramObject, error) {
	if len(payload) == 0 {
		return nil, nil
	}
	var e model.Entity
	if err := json.Unmarshal(payload, &e); err != nil {
		return nil, fmt.Errorf("decoding drop payload: %w", err)
	}
	x := clientX - bounds.Left
	y := clientY - bounds.Top
	return c.diagrams.AddObject(ctx, model.ObjectEntity, e.ID, x, y)
}

// Connect draws a local edge between two nodes on the canvas. No
// relationship is created on the server. It reports false when either node
// is not on the canvas or the two are already connected.
func (c *Canvas) Connect(source, target NodeID) (Edge, bool) {
	nodes := c.Nodes()
	has := func(id NodeID) bool {
		return slices.ContainsFunc(nodes, func(n Node) bool { return n.ID == id })
	}
	if !has(source) || !has(target) {
		return Edge{}, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, e := range c.localEdges {
		if e.Source == source && e.Target == target {
			return Edge{}, false
		}
	}
	e := Edge{ID: c.ids.New(), Type: EdgeType, Source: source, Target: target, Local: true}
	c.localEdges = append(c.localEdges, e)
	return e, true
}

// LocalEdges returns the edges drawn with Connect.
func (c *Canvas) LocalEdges() []Edge {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.localEdges)
}

// ClearLocalEdges drops all connect-gesture edges, e.g. when another diagram
// is opened.
func (c *Canvas) ClearLocalEdges() {
	c.mu.Lock()
	c.localEdges = nil
	c.mu.Unlock()
}

// Graph builds the full renderable graph of the active diagram: nodes with
// resolved content, relationship edges and local edges. Content that fails
// to resolve is logged and left in the loading state.
func (c *Canvas) Graph(ctx context.Context) (*Graph, error) {
	active := c.diagrams.ActiveDiagram()
	if active == nil {
		return nil, errors.New("no diagram is open")
	}

	nodes := c.Nodes()
	g := &Graph{
		DiagramID: active.ID,
		Name:      active.Name,
		Settings:  c.diagrams.CanvasSettings(),
		Nodes:     make([]GraphNode, 0, len(nodes)),
	}
	for _, n := range nodes {
		content, err := ResolveContent(ctx, c.repo, n)
		if err != nil {
			c.logger.Warn("resolving node content failed", "node", n.ID, "error", err)
		}
		g.Nodes = append(g.Nodes, GraphNode{Node: n, Content: content})
	}
	g.Edges = append(Edges(c.repo.Relationships(), nodes, active.Relationships), c.LocalEdges()...)
	return g, nil
}
