package canvas

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"dd-go/internal/model"
)

// GraphNode is a node with its resolved content.
type GraphNode struct {
	Node
	Content Content `json:"content"`
}

// Graph is a renderable snapshot of one diagram.
type Graph struct {
	DiagramID int64                `json:"diagramId"`
	Name      string               `json:"name"`
	Settings  model.CanvasSettings `json:"canvasSettings"`
	Nodes     []GraphNode          `json:"nodes"`
	Edges     []Edge               `json:"edges"`
}

// Node finds a node by id.
func (g *Graph) Node(id NodeID) (GraphNode, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return GraphNode{}, false
}

// Geometry lays out every edge between its nodes' anchors.
func (g *Graph) Geometry() map[string]Geometry {
	out := make(map[string]Geometry, len(g.Edges))
	for _, e := range g.Edges {
		src, ok := g.Node(e.Source)
		if !ok {
			continue
		}
		tgt, ok := g.Node(e.Target)
		if !ok {
			continue
		}
		sx, sy, tx, ty := Anchors(src.Node, tgt.Node)
		out[e.ID] = EdgeGeometry(sx, sy, tx, ty, e.Data)
	}
	return out
}

// Snapshot encodes the graph as indented JSON.
func (g *Graph) Snapshot() ([]byte, error) {
	b, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding graph snapshot: %w", err)
	}
	return b, nil
}

// ToDot writes node as a record: the name, then one row per attribute.
func (n GraphNode) ToDot(w io.Writer) error {
	name := n.Content.Name
	if n.Content.Loading || name == "" {
		name = fmt.Sprintf("%s %d", strings.ToLower(string(n.Data.ObjectType)), n.Data.ObjectID)
	}
	fields := []string{recordEscape(name)}
	if len(n.Content.Attributes) > 0 {
		rows := make([]string, 0, len(n.Content.Attributes))
		for _, a := range n.Content.Attributes {
			marker := ""
			if a.IsPrimaryKey {
				marker = "PK "
			}
			rows = append(rows, recordEscape(fmt.Sprintf("%s%s : %s", marker, a.Name, a.DataType))+`\l`)
		}
		fields = append(fields, strings.Join(rows, ""))
	}

	// DOT's y axis points up. Subtracting from 0 rather than negating keeps
	// a zero y from printing as "-0".
	y := 0 - n.Position.Y
	_, err := fmt.Fprintf(
		w,
		`	"%s" [label="{%s}" pos="%s,%s!"];
`,
		n.ID, strings.Join(fields, "|"), num(n.Position.X), num(y),
	)
	return err
}

// ToDot writes the whole graph in Graphviz DOT format.
func (g *Graph) ToDot(w io.Writer) error {
	_, err := fmt.Fprintf(w, `digraph "%s" {
	node [shape=record fontsize=10]
	edge [fontsize=10 arrowhead=none]

`, dotEscape(g.Name))
	if err != nil {
		return err
	}

	for _, n := range g.Nodes {
		if err := n.ToDot(w); err != nil {
			return err
		}
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return err
	}
	for _, e := range g.Edges {
		if err := e.ToDot(w); err != nil {
			return err
		}
	}
	_, err = w.Write([]byte("}\n"))
	return err
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func dotEscape(s string) string {
	return dotEscaper.Replace(s)
}

var recordEscaper = strings.NewReplacer(
	`\`, `\\`, `"`, `\"`, "\n", " ",
	`{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`,
)

// recordEscape escapes text placed inside a record label.
func recordEscape(s string) string {
	return recordEscaper.Replace(s)
}
