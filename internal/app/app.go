package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"dd-go/internal/api"
	"dd-go/internal/canvas"
	"dd-go/internal/config"
	"dd-go/internal/dd"
	"dd-go/internal/export"
	"dd-go/internal/form"
	"dd-go/internal/model"
	"dd-go/internal/storage"
	"dd-go/internal/store"
	"dd-go/internal/transport"
	"dd-go/internal/tree"
)

// ErrNotLoggedIn is returned by commands that need a session when there is
// none.
var ErrNotLoggedIn = errors.New("not logged in (run `dd login`)")

// DDApp is the application layer between the CLI and the stores.
// It constructs all dependencies from config, exposes the composite
// operations commands need (taking raw string ids), and releases local
// storage and the log file on Close.
type DDApp struct {
	cfg      *config.Config
	storage  dd.LocalStorage
	client   *transport.Client
	api      *api.API
	auth     *store.AuthStore
	repo     *store.RepositoryStore
	diagrams *store.DiagramStore
	tree     *tree.Tree
	canvas   *canvas.Canvas
	exporter *export.Exporter
	inv      *Invocation
	clock    dd.Clock
	logger   dd.Logger
	logFile  *os.File
}

// NewDDApp creates a fully wired DDApp from the given config.
// command names the CLI command being run (e.g. "diagram list").
// The caller must call Close when done.
func NewDDApp(cfg *config.Config, command string, verbose bool) (*DDApp, error) {
	clock := dd.RealClock{}
	inv := NewInvocation(command, dd.UUIDGenerator{}, clock)

	sl, logFile, err := newLogger(cfg.LogDir, inv.ID, verbose)
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}
	logger := &slogAdapter{l: sl}

	local, err := storage.NewStorageFromConfig(cfg.Storage, cfg.Encryption)
	if err != nil {
		logFile.Close()
		return nil, fmt.Errorf("creating local storage: %w", err)
	}

	vault, err := export.NewVaultFromConfig(context.Background(), cfg.Export)
	if err != nil {
		local.Close()
		logFile.Close()
		return nil, fmt.Errorf("creating export vault: %w", err)
	}

	tokens := transport.NewTokenStore(local)
	client := transport.NewClient(cfg.ResolveAPIBaseURL(), cfg.Timeout(), tokens, logger)
	a := api.New(client, tokens)

	auth, err := store.NewAuthStore(a.Auth, tokens, a.Superdomains, local, logger)
	if err != nil {
		local.Close()
		logFile.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}
	repo := store.NewRepositoryStore(store.NewRepositoryServices(a), logger)
	diagrams := store.NewDiagramStore(a.Diagrams, logger)

	logger.Debug("command started", "command", command, "api", client.BaseURL())

	return &DDApp{
		cfg:      cfg,
		storage:  local,
		client:   client,
		api:      a,
		auth:     auth,
		repo:     repo,
		diagrams: diagrams,
		tree:     tree.New(repo),
		canvas:   canvas.New(diagrams, repo, dd.UUIDGenerator{}, logger),
		exporter: export.NewExporter(vault, clock, logger),
		inv:      inv,
		clock:    clock,
		logger:   logger,
		logFile:  logFile,
	}, nil
}

func (a *DDApp) Config() *config.Config             { return a.cfg }
func (a *DDApp) API() *api.API                      { return a.api }
func (a *DDApp) Auth() *store.AuthStore             { return a.auth }
func (a *DDApp) Repository() *store.RepositoryStore { return a.repo }
func (a *DDApp) Diagrams() *store.DiagramStore      { return a.diagrams }
func (a *DDApp) Tree() *tree.Tree                   { return a.tree }
func (a *DDApp) Canvas() *canvas.Canvas             { return a.canvas }
func (a *DDApp) Vault() dd.ExportVault              { return a.exporter.Vault() }

// Health calls the server's liveness endpoint.
func (a *DDApp) Health(ctx context.Context) (*transport.HealthStatus, error) {
	return a.client.Health(ctx)
}

// Start restores the session from local storage. With
// auth.validate_on_start the token is also checked against the server.
func (a *DDApp) Start(ctx context.Context) error {
	if err := a.auth.InitializeAuth(); err != nil {
		return err
	}
	if !a.cfg.Auth.ValidateOnStart || !a.auth.IsAuthenticated() {
		return nil
	}
	ok, err := a.auth.ValidateSession(ctx)
	if err != nil {
		// Server unreachable: keep the optimistic session.
		a.logger.Warn("session validation failed", "error", err)
		return nil
	}
	if !ok {
		return fmt.Errorf("session expired: %w", ErrNotLoggedIn)
	}
	return nil
}

// RequireAuth fails with ErrNotLoggedIn when no session is active.
func (a *DDApp) RequireAuth() error {
	if !a.auth.IsAuthenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

// OpenDiagram parses rawID and makes that diagram active.
func (a *DDApp) OpenDiagram(ctx context.Context, rawID string) (*model.Diagram, error) {
	id, err := form.ParseID(rawID)
	if err != nil {
		return nil, err
	}
	if err := a.diagrams.SetActiveDiagram(ctx, id); err != nil {
		return nil, fmt.Errorf("opening diagram %d: %w", id, err)
	}
	a.canvas.ClearLocalEdges()
	return a.diagrams.ActiveDiagram(), nil
}

// LoadRepository fills every cache the canvas resolves against: the whole
// superdomain/domain/entity tree and all relationships.
func (a *DDApp) LoadRepository(ctx context.Context) error {
	if err := a.tree.ExpandAll(ctx); err != nil {
		return fmt.Errorf("loading repository: %w", err)
	}
	if err := a.repo.LoadRelationships(ctx, 0); err != nil {
		return fmt.Errorf("loading relationships: %w", err)
	}
	return nil
}

// DiagramGraph opens the diagram and builds its resolved graph.
func (a *DDApp) DiagramGraph(ctx context.Context, rawID string) (*canvas.Graph, error) {
	if _, err := a.OpenDiagram(ctx, rawID); err != nil {
		return nil, err
	}
	if err := a.LoadRepository(ctx); err != nil {
		return nil, err
	}
	return a.canvas.Graph(ctx)
}

// ExportDiagram renders the diagram in the named format and stores it in
// the export vault, returning the snapshot name.
func (a *DDApp) ExportDiagram(ctx context.Context, rawID, format string) (string, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return "", err
	}
	g, err := a.DiagramGraph(ctx, rawID)
	if err != nil {
		return "", err
	}
	return a.exporter.Export(g, f)
}

// Fail records that the command failed, for the closing log line.
func (a *DDApp) Fail(err error) {
	a.inv.Fail(err)
}

// Close logs the command outcome and releases local storage and the log
// file.
func (a *DDApp) Close() error {
	elapsed := a.clock.Now().Sub(a.inv.Started).Round(time.Millisecond)
	if a.inv.Failed() {
		a.logger.Error("command failed", "command", a.inv.Command, "elapsed", elapsed, "error", a.inv.Err)
	} else {
		a.logger.Debug("command finished", "command", a.inv.Command, "elapsed", elapsed)
	}

	var firstErr error
	if err := a.storage.Close(); err != nil {
		firstErr = fmt.Errorf("closing local storage: %w", err)
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
	return firstErr
}
