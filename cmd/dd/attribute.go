package main

import (
	"context"
	"fmt"
	"strings"

	"dd-go/internal/app"
	"dd-go/internal/form"
	"dd-go/internal/model"

	"github.com/spf13/cobra"
)

func printAttributes(cmd *cobra.Command, attrs []model.Attribute) {
	out := cmd.OutOrStdout()
	if len(attrs) == 0 {
		fmt.Fprintln(out, "No attributes")
		return
	}
	t := newTable(out, "ID", "Name", "Type", "PK", "Nullable", "Default")
	for _, at := range attrs {
		t.Append([]string{id(at.ID), at.Name, at.DataType, yesNo(at.IsPrimaryKey), yesNo(at.IsNullable), deref(at.DefaultValue)})
	}
	t.Render()
}

func printRelationships(cmd *cobra.Command, rels []model.Relationship) {
	out := cmd.OutOrStdout()
	if len(rels) == 0 {
		fmt.Fprintln(out, "No relationships")
		return
	}
	t := newTable(out, "ID", "Source", "Target", "Cardinality", "Roles")
	for _, r := range rels {
		roles := strings.Trim(r.SourceRole+" / "+r.TargetRole, " /")
		t.Append([]string{
			id(r.ID), id(r.SourceEntityID), id(r.TargetEntityID),
			string(r.SourceCardinality) + " : " + string(r.TargetCardinality),
			roles,
		})
	}
	t.Render()
}

func warnDataType(cmd *cobra.Command, t string) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: %q is not one of the suggested data types\n", t)
}

// attribute commands
var attributeCmd = &cobra.Command{
	Use:     "attribute",
	Aliases: []string{"attr"},
	Short:   "Manage entity attributes",
}

var attributeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the attributes of an entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		eid, err := idFlag(cmd, "entity")
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Repository().LoadAttributes(ctx, eid); err != nil {
				return err
			}
			printAttributes(cmd, a.Repository().Attributes(eid))
			return nil
		})
	},
}

var attributeTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the suggested data types",
	Run: func(cmd *cobra.Command, args []string) {
		for _, t := range form.DataTypes {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
	},
}

var attributeCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Add an attribute to an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, _ := cmd.Flags().GetString("entity")
		// Parsed leniently so a missing entity is reported by the form.
		eid, _ := form.ParseID(v)

		f := form.NewAttribute()
		f.Name = args[0]
		f.DataType, _ = cmd.Flags().GetString("type")
		f.IsNullable, _ = cmd.Flags().GetBool("nullable")
		f.IsPrimaryKey, _ = cmd.Flags().GetBool("pk")
		f.DefaultValue, _ = cmd.Flags().GetString("default")
		f.Constraints, _ = cmd.Flags().GetString("constraints")

		req, err := f.CreateRequest(eid)
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if !form.IsKnownDataType(req.DataType) {
				warnDataType(cmd, req.DataType)
			}
			at, err := a.Repository().CreateAttribute(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created attribute %d %s %s\n", at.ID, at.Name, at.DataType)
			return nil
		})
	},
}

func addAttributeFlags(c *cobra.Command) {
	c.Flags().String("type", form.DefaultDataType, "Data type (see `dd attribute types`)")
	c.Flags().Bool("nullable", true, "Allow NULL")
	c.Flags().Bool("pk", false, "Part of the primary key")
	c.Flags().String("default", "", "Default value")
	c.Flags().String("constraints", "", "Constraints as a JSON object")
}

// attributePatch builds an update from the flags that were given.
func attributePatch(cmd *cobra.Command) (model.AttributeUpdate, error) {
	var p model.AttributeUpdate
	changed := false
	flags := cmd.Flags()
	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		if strings.TrimSpace(v) == "" {
			return p, &form.ValidationError{Field: "name", Message: "Name is required"}
		}
		p.Name, changed = &v, true
	}
	if flags.Changed("type") {
		v, _ := flags.GetString("type")
		p.DataType, changed = &v, true
	}
	if flags.Changed("nullable") {
		v, _ := flags.GetBool("nullable")
		p.IsNullable, changed = &v, true
	}
	if flags.Changed("pk") {
		v, _ := flags.GetBool("pk")
		p.IsPrimaryKey, changed = &v, true
	}
	if flags.Changed("default") {
		v, _ := flags.GetString("default")
		p.DefaultValue, changed = &v, true
	}
	if flags.Changed("constraints") {
		v, _ := flags.GetString("constraints")
		c, err := form.ParseConstraints(v)
		if err != nil {
			return p, err
		}
		p.Constraints, changed = c, true
	}
	if !changed {
		return p, fmt.Errorf("nothing to update")
	}
	return p, nil
}

var attributeUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Change an attribute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		aid, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		patch, err := attributePatch(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if patch.DataType != nil && !form.IsKnownDataType(*patch.DataType) {
				warnDataType(cmd, *patch.DataType)
			}
			at, err := a.Repository().UpdateAttribute(ctx, aid, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated attribute %d %s %s\n", at.ID, at.Name, at.DataType)
			return nil
		})
	},
}

var attributeDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an attribute",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		aid, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			resp, err := a.Repository().DeleteAttribute(ctx, aid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deleteSummary("attribute", aid, resp))
			return nil
		})
	},
}

// relationship commands
var relationshipCmd = &cobra.Command{
	Use:     "relationship",
	Aliases: []string{"rel"},
	Short:   "Manage relationships between entities",
}

var relationshipListCmd = &cobra.Command{
	Use:   "list",
	Short: "List relationships, optionally those touching one entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		var eid int64
		if v, _ := cmd.Flags().GetString("entity"); v != "" {
			var err error
			if eid, err = form.ParseID(v); err != nil {
				return err
			}
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Repository().LoadRelationships(ctx, eid); err != nil {
				return err
			}
			printRelationships(cmd, a.Repository().Relationships())
			return nil
		})
	},
}

func parseCardinality(s string) (model.Cardinality, error) {
	c := model.Cardinality(strings.ToUpper(s))
	switch c {
	case model.CardinalityOne, model.CardinalityZeroOne, model.CardinalityOneMany, model.CardinalityZeroMany:
		return c, nil
	}
	return "", fmt.Errorf("unknown cardinality %q (want ONE, ZERO_ONE, ONE_MANY or ZERO_MANY)", s)
}

var relationshipCreateCmd = &cobra.Command{
	Use:   "create SOURCE_ENTITY TARGET_ENTITY",
	Short: "Relate two entities",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		dst, err := form.ParseID(args[1])
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		sc, _ := flags.GetString("source-card")
		tc, _ := flags.GetString("target-card")
		req := model.RelationshipCreate{SourceEntityID: src, TargetEntityID: dst}
		if req.SourceCardinality, err = parseCardinality(sc); err != nil {
			return err
		}
		if req.TargetCardinality, err = parseCardinality(tc); err != nil {
			return err
		}
		req.SourceRole, _ = flags.GetString("source-role")
		req.TargetRole, _ = flags.GetString("target-role")
		req.Description, _ = flags.GetString("description")

		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			r, err := a.Repository().CreateRelationship(ctx, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created relationship %d (%d -> %d)\n", r.ID, r.SourceEntityID, r.TargetEntityID)
			return nil
		})
	},
}

var relationshipDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a relationship",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rid, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			resp, err := a.Repository().DeleteRelationship(ctx, rid)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deleteSummary("relationship", rid, resp))
			return nil
		})
	},
}

func init() {
	attributeListCmd.Flags().String("entity", "", "Entity ID")
	attributeCreateCmd.Flags().String("entity", "", "Entity ID")
	addAttributeFlags(attributeCreateCmd)
	addAttributeFlags(attributeUpdateCmd)
	attributeUpdateCmd.Flags().String("name", "", "New name")
	attributeCmd.AddCommand(attributeListCmd, attributeTypesCmd, attributeCreateCmd, attributeUpdateCmd, attributeDeleteCmd)
	rootCmd.AddCommand(attributeCmd)

	relationshipListCmd.Flags().String("entity", "", "Only relationships touching this entity")
	relationshipCreateCmd.Flags().String("source-card", string(model.CardinalityOne), "Source cardinality")
	relationshipCreateCmd.Flags().String("target-card", string(model.CardinalityZeroMany), "Target cardinality")
	relationshipCreateCmd.Flags().String("source-role", "", "Role of the source end")
	relationshipCreateCmd.Flags().String("target-role", "", "Role of the target end")
	relationshipCreateCmd.Flags().StringP("description", "d", "", "Description")
	relationshipCmd.AddCommand(relationshipListCmd, relationshipCreateCmd, relationshipDeleteCmd)
	rootCmd.AddCommand(relationshipCmd)
}
