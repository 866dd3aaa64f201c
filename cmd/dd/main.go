package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"dd-go/internal/app"
	"dd-go/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var verbose bool

// newApp reads the config and creates a DDApp. The caller must defer app.Close().
// command identifies the CLI command being run (e.g. "diagram list").
func newApp(command string) (*app.DDApp, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, err
	}

	cfg, err := config.ReadFromFile(paths.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("reading config (run `dd config init` first): %w", err)
	}

	a, err := app.NewDDApp(cfg, command, verbose)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

// withApp runs fn against a started app. With needAuth, fn only runs when a
// session is active. Failures are recorded on the app before it closes.
func withApp(cmd *cobra.Command, needAuth bool, fn func(ctx context.Context, a *app.DDApp) error) error {
	a, err := newApp(cmd.CommandPath())
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	err = a.Start(ctx)
	if !needAuth && errors.Is(err, app.ErrNotLoggedIn) {
		// The expired session is already cleared; login and register proceed.
		err = nil
	}
	if err == nil && needAuth {
		err = a.RequireAuth()
	}
	if err == nil {
		err = fn(ctx, a)
	}
	a.Fail(err)
	return err
}

var rootCmd = &cobra.Command{
	Use:          "dd",
	Short:        "Data modeling and diagramming client",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return err
		}

		cfg := config.NewConfig(paths.BaseDir)
		if url, _ := cmd.Flags().GetString("api"); url != "" {
			cfg.APIBaseURL = url
		}

		if err := config.Init(paths.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration initialized at %s\n", paths.ConfigPath)
		fmt.Fprintf(out, "API:      %s\n", cfg.APIBaseURL)
		fmt.Fprintf(out, "Base Dir: %s\n", paths.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		paths, err := config.DefaultPaths()
		if err != nil {
			return err
		}

		cfg, err := config.ReadFromFile(paths.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", paths.ConfigPath)
		fmt.Fprintf(out, "API:        %s\n", cfg.ResolveAPIBaseURL())
		fmt.Fprintf(out, "Timeout:    %s\n", cfg.Timeout())
		fmt.Fprintf(out, "Base Dir:   %s\n", cfg.BaseDir)
		fmt.Fprintf(out, "Log Dir:    %s\n", cfg.LogDir)
		fmt.Fprintf(out, "Storage:    %s %s\n", cfg.Storage.Type, cfg.Storage.DataDir)
		fmt.Fprintf(out, "Encryption: %s %s\n", cfg.Encryption.Type, cfg.Encryption.IdentityPath)
		fmt.Fprintf(out, "Export:     %s\n", describeExport(cfg.Export))
		fmt.Fprintf(out, "Validate session on start: %t\n", cfg.Auth.ValidateOnStart)
		return nil
	},
}

func describeExport(e config.ExportConfig) string {
	switch e.Type {
	case "s3":
		s := "s3://" + e.S3Bucket
		if e.S3Prefix != "" {
			s += "/" + e.S3Prefix
		}
		return s
	case "filesystem", "":
		return "filesystem " + e.FSRoot
	default:
		return e.Type
	}
}

// health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the API server is up",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, false, func(ctx context.Context, a *app.DDApp) error {
			status, err := a.Health(ctx)
			if err != nil {
				return fmt.Errorf("health check: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", a.Config().ResolveAPIBaseURL(), status.Status)
			return nil
		})
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to stderr")

	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().String("api", "", "API base URL to store in the new config")
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(healthCmd)
}
