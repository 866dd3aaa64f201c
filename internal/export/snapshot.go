package export

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"dd-go/internal/canvas"
	"dd-go/internal/dd"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatDOT  Format = "dot"
)

// ParseFormat accepts "json" or "dot", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatDOT:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want json or dot)", s)
	}
}

// Render encodes g in format f.
func Render(g *canvas.Graph, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return g.Snapshot()
	case FormatDOT:
		var buf bytes.Buffer
		if err := g.ToDot(&buf); err != nil {
			return nil, fmt.Errorf("rendering dot: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", f)
	}
}

// Exporter writes diagram snapshots into a vault under timestamped names.
type Exporter struct {
	vault  dd.ExportVault
	clock  dd.Clock
	logger dd.Logger
}

func NewExporter(vault dd.ExportVault, clock dd.Clock, logger dd.Logger) *Exporter {
	if logger == nil {
		logger = dd.NewNopLogger()
	}
	return &Exporter{vault: vault, clock: clock, logger: logger}
}

// Vault is where snapshots are stored.
func (e *Exporter) Vault() dd.ExportVault { return e.vault }

// SnapshotName is diagram-<id>-<slug>-<utc timestamp>.<format>.
func SnapshotName(g *canvas.Graph, f Format, c dd.Clock) string {
	ts := c.Now().UTC().Format("20060102T150405Z")
	name := fmt.Sprintf("diagram-%d", g.DiagramID)
	if s := slug(g.Name); s != "" {
		name += "-" + s
	}
	return fmt.Sprintf("%s-%s.%s", name, ts, f)
}

// Export renders g and stores it, returning the snapshot name.
func (e *Exporter) Export(g *canvas.Graph, f Format) (string, error) {
	data, err := Render(g, f)
	if err != nil {
		return "", err
	}
	name := SnapshotName(g, f, e.clock)
	if err := e.vault.Put(name, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("storing snapshot %s: %w", name, err)
	}
	e.logger.Info("snapshot exported", "name", name, "bytes", len(data), "format", string(f))
	return name, nil
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
