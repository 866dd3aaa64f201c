package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"dd-go/internal/app"
	"dd-go/internal/canvas"
	"dd-go/internal/export"
	"dd-go/internal/form"
	"dd-go/internal/model"

	"github.com/spf13/cobra"
)

// diagram commands
var diagramCmd = &cobra.Command{
	Use:     "diagram",
	Aliases: []string{"dg"},
	Short:   "Manage diagrams and their canvas",
}

var diagramListCmd = &cobra.Command{
	Use:   "list",
	Short: "List diagrams, optionally filtered by text or tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		tag, _ := cmd.Flags().GetString("tag")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			ds := a.Diagrams()
			if err := ds.LoadDiagrams(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(ds.Diagrams()) == 0 {
				fmt.Fprintln(out, "No diagrams yet. Create your first diagram to get started.")
				return nil
			}
			items := ds.FilterDiagrams(search, tag)
			if len(items) == 0 {
				fmt.Fprintln(out, "No diagrams match your search")
				return nil
			}
			t := newTable(out, "ID", "Name", "Tags", "Updated")
			for _, d := range items {
				updated := ""
				if !d.UpdatedAt.IsZero() {
					updated = d.UpdatedAt.Format("2006-01-02 15:04")
				}
				t.Append([]string{id(d.ID), d.Name, strings.Join(d.Tags, ", "), updated})
			}
			t.Render()
			return nil
		})
	},
}

var diagramTagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "List every tag in use",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Diagrams().LoadDiagrams(ctx); err != nil {
				return err
			}
			for _, t := range a.Diagrams().AllTags() {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		})
	},
}

var diagramCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		tags, _ := cmd.Flags().GetStringSlice("tag")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			d, err := a.Diagrams().CreateDiagram(ctx, model.DiagramCreate{Name: args[0], Description: desc, Tags: tags})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created diagram %d %s\n", d.ID, d.Name)
			return nil
		})
	},
}

var diagramShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a diagram's settings and placed objects",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			d, err := a.OpenDiagram(ctx, args[0])
			if err != nil {
				return err
			}
			if err := a.LoadRepository(ctx); err != nil {
				return err
			}
			g, err := a.Canvas().Graph(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d)\n", d.Name, d.ID)
			if d.Description != "" {
				fmt.Fprintln(out, d.Description)
			}
			if len(d.Tags) > 0 {
				fmt.Fprintf(out, "Tags: %s\n", strings.Join(d.Tags, ", "))
			}
			s := g.Settings
			fmt.Fprintf(out, "Zoom %s, pan %s,%s, grid %s, snap %s\n\n",
				fmtFloat(s.Zoom), fmtFloat(s.Pan.X), fmtFloat(s.Pan.Y), onOff(s.GridEnabled), onOff(s.SnapToGrid))

			if len(g.Nodes) == 0 {
				fmt.Fprintln(out, "No objects on this diagram")
				return nil
			}
			t := newTable(out, "Object", "Type", "Ref", "Name", "X", "Y", "Attributes")
			for _, n := range g.Nodes {
				name, attrs := "loading", ""
				if n.Content.Name != "" {
					name = n.Content.Name
					attrs = strconv.Itoa(len(n.Content.Attributes))
				}
				pid, _ := n.ID.PlacementID()
				t.Append([]string{id(pid), string(n.Data.ObjectType), id(n.Data.ObjectID), name, fmtFloat(n.Position.X), fmtFloat(n.Position.Y), attrs})
			}
			t.Render()
			return nil
		})
	},
}

// diagramPatch builds an update from whichever flags were given.
func diagramPatch(cmd *cobra.Command) (model.DiagramUpdate, error) {
	var p model.DiagramUpdate
	flags := cmd.Flags()
	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		p.Name = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		p.Description = &v
	}
	if flags.Changed("tag") {
		p.Tags, _ = flags.GetStringSlice("tag")
	}
	if p.Name == nil && p.Description == nil && p.Tags == nil {
		return p, fmt.Errorf("nothing to update: pass --name, --description or --tag")
	}
	return p, nil
}

var diagramUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename, describe or retag a diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		did, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		patch, err := diagramPatch(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			d, err := a.Diagrams().UpdateDiagram(ctx, did, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated diagram %d %s\n", d.ID, d.Name)
			return nil
		})
	},
}

var diagramDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		did, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Diagrams().DeleteDiagram(ctx, did); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted diagram %d\n", did)
			return nil
		})
	},
}

var diagramAddObjectCmd = &cobra.Command{
	Use:   "add-object DIAGRAM_ID OBJECT_ID",
	Short: "Place a repository object on a diagram",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		oid, err := form.ParseID(args[1])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		x, _ := flags.GetFloat64("x")
		y, _ := flags.GetFloat64("y")
		kind, _ := flags.GetString("type")
		objectType := model.ObjectType(strings.ToUpper(kind))
		switch objectType {
		case model.ObjectEntity, model.ObjectDomain, model.ObjectSuperdomain:
		default:
			return fmt.Errorf("unknown object type %q (want ENTITY, DOMAIN or SUPERDOMAIN)", kind)
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if _, err := a.OpenDiagram(ctx, args[0]); err != nil {
				return err
			}
			ds := a.Diagrams()
			if ds.CanvasSettings().SnapToGrid {
				x, y = canvas.Snap(x), canvas.Snap(y)
			}
			obj, err := ds.AddObject(ctx, objectType, oid, x, y)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Placed %s %d as object %d at %s,%s\n",
				strings.ToLower(string(obj.ObjectType)), obj.ObjectID, obj.ID, fmtFloat(obj.PositionX), fmtFloat(obj.PositionY))
			return nil
		})
	},
}

var diagramMoveCmd = &cobra.Command{
	Use:   "move DIAGRAM_ID OBJECT X Y",
	Short: "Move a placed object (snaps when the diagram snaps to grid)",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := form.ParseID(args[1])
		if err != nil {
			return err
		}
		x, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid x %q: %w", args[2], err)
		}
		y, err := strconv.ParseFloat(args[3], 64)
		if err != nil {
			return fmt.Errorf("invalid y %q: %w", args[3], err)
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if _, err := a.OpenDiagram(ctx, args[0]); err != nil {
				return err
			}
			if err := a.Canvas().DragStop(ctx, canvas.NodeIDFor(pid), x, y); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved object %d\n", pid)
			return nil
		})
	},
}

var diagramStyleCmd = &cobra.Command{
	Use:   "style DIAGRAM_ID OBJECT JSON",
	Short: "Set the visual style of a placed object",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := form.ParseID(args[1])
		if err != nil {
			return err
		}
		var style map[string]any
		if err := json.Unmarshal([]byte(args[2]), &style); err != nil {
			return fmt.Errorf("style must be a JSON object: %w", err)
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if _, err := a.OpenDiagram(ctx, args[0]); err != nil {
				return err
			}
			if err := a.Diagrams().UpdateObjectStyle(ctx, pid, style); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Styled object %d\n", pid)
			return nil
		})
	},
}

var diagramRemoveObjectCmd = &cobra.Command{
	Use:   "remove-object DIAGRAM_ID OBJECT",
	Short: "Remove a placed object from a diagram",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pid, err := form.ParseID(args[1])
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if _, err := a.OpenDiagram(ctx, args[0]); err != nil {
				return err
			}
			if err := a.Diagrams().RemoveObject(ctx, pid); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed object %d\n", pid)
			return nil
		})
	},
}

var diagramCanvasCmd = &cobra.Command{
	Use:   "canvas DIAGRAM_ID",
	Short: "Change and save a diagram's zoom, pan, grid and snap settings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("zoom") && !flags.Changed("pan-x") && !flags.Changed("pan-y") &&
			!flags.Changed("grid") && !flags.Changed("snap") {
			return fmt.Errorf("nothing to update: pass --zoom, --pan-x, --pan-y, --grid or --snap")
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if _, err := a.OpenDiagram(ctx, args[0]); err != nil {
				return err
			}
			ds := a.Diagrams()
			cur := ds.CanvasSettings()
			if flags.Changed("zoom") {
				z, _ := flags.GetFloat64("zoom")
				if z <= 0 {
					return fmt.Errorf("zoom must be positive")
				}
				ds.SetZoom(z)
			}
			if flags.Changed("pan-x") || flags.Changed("pan-y") {
				px, py := cur.Pan.X, cur.Pan.Y
				if flags.Changed("pan-x") {
					px, _ = flags.GetFloat64("pan-x")
				}
				if flags.Changed("pan-y") {
					py, _ = flags.GetFloat64("pan-y")
				}
				ds.SetPan(px, py)
			}
			if flags.Changed("grid") {
				v, _ := flags.GetBool("grid")
				ds.SetGridEnabled(v)
			}
			if flags.Changed("snap") {
				v, _ := flags.GetBool("snap")
				ds.SetSnapToGrid(v)
			}
			if err := ds.SaveCanvasSettings(ctx); err != nil {
				return err
			}
			s := ds.CanvasSettings()
			fmt.Fprintf(cmd.OutOrStdout(), "Saved canvas: zoom %s, pan %s,%s, grid %s, snap %s\n",
				fmtFloat(s.Zoom), fmtFloat(s.Pan.X), fmtFloat(s.Pan.Y), onOff(s.GridEnabled), onOff(s.SnapToGrid))
			return nil
		})
	},
}

var diagramViewCmd = &cobra.Command{
	Use:   "view DIAGRAM_ID",
	Short: "Write the rendered diagram to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		f, err := export.ParseFormat(format)
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			g, err := a.DiagramGraph(ctx, args[0])
			if err != nil {
				return err
			}
			b, err := export.Render(g, f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		})
	},
}

var diagramExportCmd = &cobra.Command{
	Use:   "export DIAGRAM_ID",
	Short: "Store a rendered snapshot of the diagram in the export vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			name, err := a.ExportDiagram(ctx, args[0], format)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s\n", name)
			return nil
		})
	},
}

// snapshot commands read the export vault and need no session.
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Browse exported diagram snapshots",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.DDApp) error {
			names, err := a.Vault().List()
			if err != nil {
				return fmt.Errorf("listing snapshots: %w", err)
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No snapshots")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		})
	},
}

var snapshotGetCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Write a stored snapshot to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Vault().Get(args[0], cmd.OutOrStdout()); err != nil {
				return fmt.Errorf("reading snapshot %s: %w", args[0], err)
			}
			return nil
		})
	},
}

func fmtFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func init() {
	diagramListCmd.Flags().String("search", "", "Match name or description (case-insensitive)")
	diagramListCmd.Flags().String("tag", "", "Only diagrams carrying this tag")

	diagramCreateCmd.Flags().StringP("description", "d", "", "Description")
	diagramCreateCmd.Flags().StringSlice("tag", nil, "Tag (repeatable)")
	addNamedUpdateFlags(diagramUpdateCmd)
	diagramUpdateCmd.Flags().StringSlice("tag", nil, "Replace tags (repeatable)")

	diagramAddObjectCmd.Flags().Float64("x", 0, "Canvas x position")
	diagramAddObjectCmd.Flags().Float64("y", 0, "Canvas y position")
	diagramAddObjectCmd.Flags().String("type", string(model.ObjectEntity), "Object type: ENTITY, DOMAIN or SUPERDOMAIN")

	diagramCanvasCmd.Flags().Float64("zoom", 1, "Zoom factor")
	diagramCanvasCmd.Flags().Float64("pan-x", 0, "Pan x offset")
	diagramCanvasCmd.Flags().Float64("pan-y", 0, "Pan y offset")
	diagramCanvasCmd.Flags().Bool("grid", true, "Show the grid")
	diagramCanvasCmd.Flags().Bool("snap", true, "Snap positions to the grid")

	for _, c := range []*cobra.Command{diagramViewCmd, diagramExportCmd} {
		c.Flags().String("format", string(export.FormatDOT), "Output format: dot or json")
	}

	diagramCmd.AddCommand(
		diagramListCmd, diagramTagsCmd, diagramCreateCmd, diagramShowCmd, diagramUpdateCmd, diagramDeleteCmd,
		diagramAddObjectCmd, diagramMoveCmd, diagramStyleCmd, diagramRemoveObjectCmd,
		diagramCanvasCmd, diagramViewCmd, diagramExportCmd,
	)
	rootCmd.AddCommand(diagramCmd)

	snapshotCmd.AddCommand(snapshotListCmd, snapshotGetCmd)
	rootCmd.AddCommand(snapshotCmd)
}
