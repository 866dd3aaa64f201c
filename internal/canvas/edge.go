package canvas

import (
	"fmt"
	"io"
	"strconv"

	"dd-go/internal/model"
)

// EdgeData is render-only payload carried by an edge.
type EdgeData struct {
	RelationshipID    int64             `json:"relationshipId,omitempty"`
	SourceCardinality model.Cardinality `json:"sourceCardinality,omitempty"`
	TargetCardinality model.Cardinality `json:"targetCardinality,omitempty"`
	Label             string            `json:"label,omitempty"`
}

// Edge joins two nodes. Local edges come from the connect gesture and are
// never persisted.
type Edge struct {
	ID     string   `json:"id"`
	Type   string   `json:"type"`
	Source NodeID   `json:"source"`
	Target NodeID   `json:"target"`
	Local  bool     `json:"local,omitempty"`
	Data   EdgeData `json:"data"`
}

// CardinalitySymbol is the glyph drawn at a relationship end. Unknown or
// empty cardinalities have no glyph.
func CardinalitySymbol(c model.Cardinality) string {
	switch c {
	case model.CardinalityOne:
		return "1"
	case model.CardinalityZeroOne:
		return "0..1"
	case model.CardinalityOneMany:
		return "1..*"
	case model.CardinalityZeroMany:
		return "*"
	default:
		return ""
	}
}

// Edges emits one edge per relationship whose two entities are both placed
// on the canvas. Relationships the diagram marks invisible are skipped. An
// entity placed twice gets the edge on its first placement.
func Edges(relationships []model.Relationship, nodes []Node, placements []model.DiagramRelationship) []Edge {
	entityNode := make(map[int64]NodeID)
	for _, n := range nodes {
		if n.Data.ObjectType != model.ObjectEntity {
			continue
		}
		if _, seen := entityNode[n.Data.ObjectID]; !seen {
			entityNode[n.Data.ObjectID] = n.ID
		}
	}
	hidden := make(map[int64]bool)
	for _, p := range placements {
		if !p.IsVisible {
			hidden[p.RelationshipID] = true
		}
	}

	var edges []Edge
	for _, r := range relationships {
		if hidden[r.ID] {
			continue
		}
		src, ok := entityNode[r.SourceEntityID]
		if !ok {
			continue
		}
		tgt, ok := entityNode[r.TargetEntityID]
		if !ok {
			continue
		}
		edges = append(edges, Edge{
			ID:     "relationship-" + strconv.FormatInt(r.ID, 10),
			Type:   EdgeType,
			Source: src,
			Target: tgt,
			Data: EdgeData{
				RelationshipID:    r.ID,
				SourceCardinality: r.SourceCardinality,
				TargetCardinality: r.TargetCardinality,
				Label:             r.Description,
			},
		})
	}
	return edges
}

// Glyph is a text placed on the canvas. Empty text draws nothing.
type Glyph struct {
	Text string  `json:"text"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Geometry is the drawable form of one edge.
type Geometry struct {
	Path        string `json:"path"`
	SourceGlyph Glyph  `json:"sourceGlyph"`
	TargetGlyph Glyph  `json:"targetGlyph"`
	Label       *Glyph `json:"label,omitempty"`
}

// Anchors returns the connection points of an edge: the bottom center of the
// source node and the top center of the target node.
func Anchors(source, target Node) (sx, sy, tx, ty float64) {
	sx = source.Position.X + source.Width/2
	sy = source.Position.Y + source.Height
	tx = target.Position.X + target.Width/2
	ty = target.Position.Y
	return sx, sy, tx, ty
}

// EdgeGeometry lays out a straight edge with the source glyph a quarter of
// the way along, the target glyph at three quarters and the label centered.
func EdgeGeometry(sx, sy, tx, ty float64, data EdgeData) Geometry {
	at := func(f float64) (float64, float64) {
		return sx + (tx-sx)*f, sy + (ty-sy)*f
	}
	g := Geometry{
		Path: fmt.Sprintf("M %s,%s L %s,%s", num(sx), num(sy), num(tx), num(ty)),
	}
	g.SourceGlyph.Text = CardinalitySymbol(data.SourceCardinality)
	g.SourceGlyph.X, g.SourceGlyph.Y = at(0.25)
	g.TargetGlyph.Text = CardinalitySymbol(data.TargetCardinality)
	g.TargetGlyph.X, g.TargetGlyph.Y = at(0.75)
	if data.Label != "" {
		x, y := at(0.5)
		g.Label = &Glyph{Text: data.Label, X: x, Y: y}
	}
	return g
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ToDot writes the edge as a DOT statement with the cardinality glyphs as
// tail and head labels.
func (e Edge) ToDot(w io.Writer) error {
	attrs := ""
	if s := CardinalitySymbol(e.Data.SourceCardinality); s != "" {
		attrs += fmt.Sprintf(` taillabel="%s"`, dotEscape(s))
	}
	if s := CardinalitySymbol(e.Data.TargetCardinality); s != "" {
		attrs += fmt.Sprintf(` headlabel="%s"`, dotEscape(s))
	}
	if e.Data.Label != "" {
		attrs += fmt.Sprintf(` label="%s"`, dotEscape(e.Data.Label))
	}
	if e.Local {
		attrs += ` style="dashed"`
	}
	if attrs != "" {
		attrs = " [" + attrs[1:] + "]"
	}

	_, err := fmt.Fprintf(
		w,
		`	"%s" -> "%s"%s;
`,
		e.Source, e.Target, attrs,
	)
	return err
}
