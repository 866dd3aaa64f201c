package main

import (
	"context"
	"fmt"

	"dd-go/internal/app"
	"dd-go/internal/form"
	"dd-go/internal/model"

	"github.com/spf13/cobra"
)

// namedPatch builds an update from whichever of --name/--description were
// given.
func namedPatch(cmd *cobra.Command) (model.NamedUpdate, error) {
	var p model.NamedUpdate
	if cmd.Flags().Changed("name") {
		v, _ := cmd.Flags().GetString("name")
		p.Name = &v
	}
	if cmd.Flags().Changed("description") {
		v, _ := cmd.Flags().GetString("description")
		p.Description = &v
	}
	if p.Name == nil && p.Description == nil {
		return p, fmt.Errorf("nothing to update: pass --name and/or --description")
	}
	return p, nil
}

func addNamedUpdateFlags(c *cobra.Command) {
	c.Flags().String("name", "", "New name")
	c.Flags().StringP("description", "d", "", "New description")
}

func idFlag(cmd *cobra.Command, name string) (int64, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		return 0, fmt.Errorf("--%s is required", name)
	}
	return form.ParseID(v)
}

// tree command
var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the superdomain > domain > entity tree",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			if err := a.Tree().ExpandAll(ctx); err != nil {
				return fmt.Errorf("loading tree: %w", err)
			}
			return a.Tree().Render(cmd.OutOrStdout())
		})
	},
}

// superdomain commands
var superdomainCmd = &cobra.Command{
	Use:     "superdomain",
	Aliases: []string{"sd"},
	Short:   "Manage superdomains",
}

var superdomainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List superdomains",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			repo := a.Repository()
			if err := repo.LoadSuperdomains(ctx); err != nil {
				return err
			}
			items := repo.Superdomains()
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No superdomains yet. Create one to get started.")
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "ID", "Name", "Description")
			for _, s := range items {
				t.Append([]string{id(s.ID), s.Name, s.Description})
			}
			t.Render()
			return nil
		})
	},
}

var superdomainCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a superdomain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		desc, _ := cmd.Flags().GetString("description")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			s, err := a.Repository().CreateSuperdomain(ctx, model.SuperdomainCreate{Name: args[0], Description: desc})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created superdomain %d %s\n", s.ID, s.Name)
			return nil
		})
	},
}

var superdomainUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename or describe a superdomain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		patch, err := namedPatch(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			s, err := a.Repository().UpdateSuperdomain(ctx, sid, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated superdomain %d %s\n", s.ID, s.Name)
			return nil
		})
	},
}

var superdomainDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a superdomain (--confirm cascades to its domains)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sid, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		confirm, _ := cmd.Flags().GetBool("confirm")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			resp, err := a.Repository().DeleteSuperdomain(ctx, sid, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deleteSummary("superdomain", sid, resp))
			return nil
		})
	},
}

// domain commands
var domainCmd = &cobra.Command{
	Use:   "domain",
	Short: "Manage domains",
}

var domainListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the domains of a superdomain",
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := idFlag(cmd, "superdomain")
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			repo := a.Repository()
			if err := repo.LoadDomains(ctx, parent); err != nil {
				return err
			}
			items := repo.Domains(parent)
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No domains")
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "ID", "Name", "Description")
			for _, d := range items {
				t.Append([]string{id(d.ID), d.Name, d.Description})
			}
			t.Render()
			return nil
		})
	},
}

var domainCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a domain in a superdomain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := idFlag(cmd, "superdomain")
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("description")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			d, err := a.Repository().CreateDomain(ctx, model.DomainCreate{SuperdomainID: parent, Name: args[0], Description: desc})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created domain %d %s\n", d.ID, d.Name)
			return nil
		})
	},
}

var domainUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename or describe a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		did, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		patch, err := namedPatch(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			d, err := a.Repository().UpdateDomain(ctx, did, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated domain %d %s\n", d.ID, d.Name)
			return nil
		})
	},
}

var domainDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a domain (--confirm cascades to its entities)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		did, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		confirm, _ := cmd.Flags().GetBool("confirm")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			resp, err := a.Repository().DeleteDomain(ctx, did, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deleteSummary("domain", did, resp))
			return nil
		})
	},
}

// entity commands
var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Manage entities",
}

var entityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the entities of a domain",
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := idFlag(cmd, "domain")
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			repo := a.Repository()
			if err := repo.LoadEntities(ctx, parent); err != nil {
				return err
			}
			items := repo.Entities(parent)
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No entities")
				return nil
			}
			t := newTable(cmd.OutOrStdout(), "ID", "Name", "Description")
			for _, e := range items {
				t.Append([]string{id(e.ID), e.Name, e.Description})
			}
			t.Render()
			return nil
		})
	},
}

var entityShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show an entity's attributes and relationships",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eid, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			e, err := a.API().Entities.Get(ctx, eid)
			if err != nil {
				return err
			}
			repo := a.Repository()
			if err := repo.LoadAttributes(ctx, eid); err != nil {
				return err
			}
			if err := repo.LoadRelationships(ctx, eid); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%d)\n", e.Name, e.ID)
			if e.Description != "" {
				fmt.Fprintf(out, "%s\n", e.Description)
			}
			fmt.Fprintln(out)
			printAttributes(cmd, repo.Attributes(eid))
			fmt.Fprintln(out)
			printRelationships(cmd, repo.Relationships())
			return nil
		})
	},
}

var entityCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create an entity in a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parent, err := idFlag(cmd, "domain")
		if err != nil {
			return err
		}
		desc, _ := cmd.Flags().GetString("description")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			e, err := a.Repository().CreateEntity(ctx, model.EntityCreate{DomainID: parent, Name: args[0], Description: desc})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created entity %d %s\n", e.ID, e.Name)
			return nil
		})
	},
}

var entityUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Rename or describe an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eid, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		patch, err := namedPatch(cmd)
		if err != nil {
			return err
		}
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			e, err := a.Repository().UpdateEntity(ctx, eid, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated entity %d %s\n", e.ID, e.Name)
			return nil
		})
	},
}

var entityDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eid, err := form.ParseID(args[0])
		if err != nil {
			return err
		}
		confirm, _ := cmd.Flags().GetBool("confirm")
		return withApp(cmd, true, func(ctx context.Context, a *app.DDApp) error {
			resp, err := a.Repository().DeleteEntity(ctx, eid, confirm)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), deleteSummary("entity", eid, resp))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)

	superdomainCreateCmd.Flags().StringP("description", "d", "", "Description")
	for _, c := range []*cobra.Command{superdomainUpdateCmd, domainUpdateCmd, entityUpdateCmd} {
		addNamedUpdateFlags(c)
	}
	for _, c := range []*cobra.Command{superdomainDeleteCmd, domainDeleteCmd, entityDeleteCmd} {
		c.Flags().Bool("confirm", false, "Confirm a cascading delete")
	}
	superdomainCmd.AddCommand(superdomainListCmd, superdomainCreateCmd, superdomainUpdateCmd, superdomainDeleteCmd)
	rootCmd.AddCommand(superdomainCmd)

	for _, c := range []*cobra.Command{domainListCmd, domainCreateCmd} {
		c.Flags().String("superdomain", "", "Superdomain ID")
	}
	domainCreateCmd.Flags().StringP("description", "d", "", "Description")
	domainCmd.AddCommand(domainListCmd, domainCreateCmd, domainUpdateCmd, domainDeleteCmd)
	rootCmd.AddCommand(domainCmd)

	for _, c := range []*cobra.Command{entityListCmd, entityCreateCmd} {
		c.Flags().String("domain", "", "Domain ID")
	}
	entityCreateCmd.Flags().StringP("description", "d", "", "Description")
	entityCmd.AddCommand(entityListCmd, entityShowCmd, entityCreateCmd, entityUpdateCmd, entityDeleteCmd)
	rootCmd.AddCommand(entityCmd)
}
