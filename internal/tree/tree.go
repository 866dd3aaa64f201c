// Package tree keeps the expand/collapse state of the repository browser and
// loads child buckets lazily the first time a node is opened.
package tree

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"dd-go/internal/model"
)

// Repository is the part of the repository store the tree reads and loads.
type Repository interface {
	Superdomains() []model.Superdomain
	HasSuperdomains() bool
	LoadSuperdomains(ctx context.Context) error
	Domains(superdomainID int64) []model.Domain
	Entities(domainID int64) []model.Entity
	HasDomains(superdomainID int64) bool
	HasEntities(domainID int64) bool
	LoadDomains(ctx context.Context, superdomainID int64) error
	LoadEntities(ctx context.Context, domainID int64) error
}

// PayloadType is the media type of an entity drag payload.
const PayloadType = "application/json"

// Kind is the level of a tree row.
type Kind string

const (
	KindSuperdomain Kind = "superdomain"
	KindDomain      Kind = "domain"
	KindEntity      Kind = "entity"
	KindEmpty       Kind = "empty"
)

// Row is one visible line of the tree.
type Row struct {
	Kind        Kind
	ID          int64
	Name        string
	Description string
	Depth       int
	Expanded    bool
	Entity      *model.Entity // set for entity rows, the drag source
}

// Tree is the browser state. The zero value is not usable; use New.
type Tree struct {
	repo Repository

	mu                   sync.Mutex
	expandedSuperdomains map[int64]bool
	expandedDomains      map[int64]bool
}

func New(repo Repository) *Tree {
	return &Tree{
		repo:                 repo,
		expandedSuperdomains: make(map[int64]bool),
		expandedDomains:      make(map[int64]bool),
	}
}

// ToggleSuperdomain flips a superdomain open or closed. Opening it loads its
// domains unless they are already cached. The node opens even when the load
// fails; the error is returned for display.
func (t *Tree) ToggleSuperdomain(ctx context.Context, id int64) (bool, error) {
	t.mu.Lock()
	if t.expandedSuperdomains[id] {
		delete(t.expandedSuperdomains, id)
		t.mu.Unlock()
		return false, nil
	}
	t.mu.Unlock()

	var err error
	if !t.repo.HasDomains(id) {
		err = t.repo.LoadDomains(ctx, id)
	}
	t.mu.Lock()
	t.expandedSuperdomains[id] = true
	t.mu.Unlock()
	return true, err
}

// ToggleDomain flips a domain open or closed, loading its entities on first open.
func (t *Tree) ToggleDomain(ctx context.Context, id int64) (bool, error) {
	t.mu.Lock()
	if t.expandedDomains[id] {
		delete(t.expandedDomains, id)
		t.mu.Unlock()
		return false, nil
	}
	t.mu.Unlock()

	var err error
	if !t.repo.HasEntities(id) {
		err = t.repo.LoadEntities(ctx, id)
	}
	t.mu.Lock()
	t.expandedDomains[id] = true
	t.mu.Unlock()
	return true, err
}

func (t *Tree) SuperdomainExpanded(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expandedSuperdomains[id]
}

func (t *Tree) DomainExpanded(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.expandedDomains[id]
}

// ExpandAll opens every superdomain and domain, loading the superdomain list
// first when it is not cached and children as it goes. It stops at the first
// load error.
func (t *Tree) ExpandAll(ctx context.Context) error {
	if !t.repo.HasSuperdomains() {
		if err := t.repo.LoadSuperdomains(ctx); err != nil {
			return fmt.Errorf("loading superdomains: %w", err)
		}
	}
	for _, sd := range t.repo.Superdomains() {
		if !t.SuperdomainExpanded(sd.ID) {
			if _, err := t.ToggleSuperdomain(ctx, sd.ID); err != nil {
				return fmt.Errorf("expanding superdomain %d: %w", sd.ID, err)
			}
		}
		for _, d := range t.repo.Domains(sd.ID) {
			if t.DomainExpanded(d.ID) {
				continue
			}
			if _, err := t.ToggleDomain(ctx, d.ID); err != nil {
				return fmt.Errorf("expanding domain %d: %w", d.ID, err)
			}
		}
	}
	return nil
}

// Rows flattens the visible part of the tree. Opened nodes without children
// get a single empty placeholder row.
func (t *Tree) Rows() []Row {
	var rows []Row
	for _, sd := range t.repo.Superdomains() {
		open := t.SuperdomainExpanded(sd.ID)
		rows = append(rows, Row{Kind: KindSuperdomain, ID: sd.ID, Name: sd.Name, Description: sd.Description, Expanded: open})
		if !open {
			continue
		}
		domains := t.repo.Domains(sd.ID)
		for _, d := range domains {
			dOpen := t.DomainExpanded(d.ID)
			rows = append(rows, Row{Kind: KindDomain, ID: d.ID, Name: d.Name, Description: d.Description, Depth: 1, Expanded: dOpen})
			if !dOpen {
				continue
			}
			entities := t.repo.Entities(d.ID)
			for i := range entities {
				e := entities[i]
				rows = append(rows, Row{Kind: KindEntity, ID: e.ID, Name: e.Name, Description: e.Description, Depth: 2, Entity: &e})
			}
			if len(entities) == 0 {
				rows = append(rows, Row{Kind: KindEmpty, Name: "No entities", Depth: 2})
			}
		}
		if len(domains) == 0 {
			rows = append(rows, Row{Kind: KindEmpty, Name: "No domains", Depth: 1})
		}
	}
	return rows
}

// Render writes the visible tree as indented text.
func (t *Tree) Render(w io.Writer) error {
	rows := t.Rows()
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No superdomains yet. Create one to get started.")
		return err
	}
	for _, r := range rows {
		var marker string
		switch r.Kind {
		case KindSuperdomain, KindDomain:
			marker = "▶ "
			if r.Expanded {
				marker = "▼ "
			}
		case KindEntity:
			marker = "• "
		default:
			marker = "  "
		}
		line := fmt.Sprintf("%s%s%s", strings.Repeat("  ", r.Depth), marker, r.Name)
		if r.Kind != KindEmpty {
			line += fmt.Sprintf(" (%d)", r.ID)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// DragPayload serializes an entity for dropping onto a canvas.
func DragPayload(e model.Entity) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding drag payload: %w", err)
	}
	return b, nil
}
