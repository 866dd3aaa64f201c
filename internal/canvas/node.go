// Package canvas projects a diagram's placed objects and the repository's
// relationships onto a renderable node/edge graph, and turns canvas gestures
// (drag, drop, connect) back into store operations.
package canvas

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"dd-go/internal/model"
)

const (
	// NodeType and EdgeType name the renderers a front end should use.
	NodeType = "entityNode"
	EdgeType = "relationshipEdge"

	// SnapGrid is the grid pitch positions snap to.
	SnapGrid = 15.0

	DefaultNodeWidth  = 180.0
	DefaultNodeHeight = 60.0

	nodeIDPrefix = "object-"
)

// NodeID is the stable key of a node, derived from its placement id.
type NodeID string

func NodeIDFor(placementID int64) NodeID {
	return NodeID(nodeIDPrefix + strconv.FormatInt(placementID, 10))
}

// PlacementID recovers the diagram object id from a node id.
func (id NodeID) PlacementID() (int64, error) {
	s, ok := strings.CutPrefix(string(id), nodeIDPrefix)
	if !ok {
		return 0, fmt.Errorf("node id %q: missing %q prefix", id, nodeIDPrefix)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("node id %q: %w", id, err)
	}
	return n, nil
}

// NodeData is render-only payload carried by a node.
type NodeData struct {
	ObjectID    int64            `json:"objectId"`
	ObjectType  model.ObjectType `json:"objectType"`
	VisualStyle map[string]any   `json:"style,omitempty"`
}

type Node struct {
	ID       NodeID      `json:"id"`
	Type     string      `json:"type"`
	Position model.Point `json:"position"`
	Width    float64     `json:"width"`
	Height   float64     `json:"height"`
	Data     NodeData    `json:"data"`
}

// Project maps placed objects to nodes, one per object, in order.
func Project(objects []model.DiagramObject) []Node {
	nodes := make([]Node, 0, len(objects))
	for _, o := range objects {
		nodes = append(nodes, Node{
			ID:       NodeIDFor(o.ID),
			Type:     NodeType,
			Position: model.Point{X: o.PositionX, Y: o.PositionY},
			Width:    DefaultNodeWidth,
			Height:   DefaultNodeHeight,
			Data: NodeData{
				ObjectID:    o.ObjectID,
				ObjectType:  o.ObjectType,
				VisualStyle: o.VisualStyle,
			},
		})
	}
	return nodes
}

// Repository is the part of the repository store used to fill node content.
type Repository interface {
	Superdomain(id int64) (model.Superdomain, bool)
	Domain(id int64) (model.Domain, bool)
	Entity(id int64) (model.Entity, bool)
	Attributes(entityID int64) []model.Attribute
	HasAttributes(entityID int64) bool
	LoadAttributes(ctx context.Context, entityID int64) error
	Relationships() []model.Relationship
}

// Content is what a node displays. Loading is set while the referenced
// object is not in the repository cache.
type Content struct {
	Loading     bool              `json:"loading,omitempty"`
	Name        string            `json:"name,omitempty"`
	Description string            `json:"description,omitempty"`
	Attributes  []model.Attribute `json:"attributes,omitempty"`
}

// ResolveContent looks the node's object up in the repository cache. For an
// entity whose attributes are not cached yet, the attributes are loaded.
func ResolveContent(ctx context.Context, repo Repository, n Node) (Content, error) {
	switch n.Data.ObjectType {
	case model.ObjectSuperdomain:
		if sd, ok := repo.Superdomain(n.Data.ObjectID); ok {
			return Content{Name: sd.Name, Description: sd.Description}, nil
		}
	case model.ObjectDomain:
		if d, ok := repo.Domain(n.Data.ObjectID); ok {
			return Content{Name: d.Name, Description: d.Description}, nil
		}
	case model.ObjectEntity:
		e, ok := repo.Entity(n.Data.ObjectID)
		if !ok {
			break
		}
		if !repo.HasAttributes(e.ID) {
			if err := repo.LoadAttributes(ctx, e.ID); err != nil {
				return Content{Name: e.Name, Description: e.Description}, fmt.Errorf("loading attributes of entity %d: %w", e.ID, err)
			}
		}
		return Content{Name: e.Name, Description: e.Description, Attributes: repo.Attributes(e.ID)}, nil
	}
	return Content{Loading: true}, nil
}

// Snap rounds v to the nearest grid line.
func Snap(v float64) float64 {
	return math.Round(v/SnapGrid) * SnapGrid
}
