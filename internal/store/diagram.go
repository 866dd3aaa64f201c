package store

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"

	"dd-go/internal/dd"
	"dd-go/internal/model"
)

// ErrNoActiveDiagram is returned by object operations when no diagram is open.
var ErrNoActiveDiagram = errors.New("no active diagram")

// noActiveDiagramMessage is what Error reports for ErrNoActiveDiagram.
const noActiveDiagramMessage = "No active diagram"

// DiagramState is a snapshot of the diagram store.
type DiagramState struct {
	Diagrams       []model.Diagram
	ActiveDiagram  *model.Diagram
	DiagramObjects []model.DiagramObject
	CanvasSettings model.CanvasSettings
	IsLoading      bool
	Error          string
}

// DiagramStore holds the diagram list, the open diagram, its placed objects
// and the canvas view. View setters are local; SaveCanvasSettings writes
// them back.
type DiagramStore struct {
	svc    DiagramService
	logger dd.Logger
	ops    *opTracker

	mu       sync.RWMutex
	diagrams []model.Diagram
	active   *model.Diagram
	objects  []model.DiagramObject
	canvas   model.CanvasSettings
}

func NewDiagramStore(svc DiagramService, logger dd.Logger) *DiagramStore {
	if logger == nil {
		logger = dd.NewNopLogger()
	}
	return &DiagramStore{
		svc:    svc,
		logger: logger,
		ops:    newOpTracker(),
		canvas: model.DefaultCanvasSettings(),
	}
}

func (s *DiagramStore) State() DiagramState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DiagramState{
		Diagrams:       slices.Clone(s.diagrams),
		ActiveDiagram:  cloneDiagram(s.active),
		DiagramObjects: slices.Clone(s.objects),
		CanvasSettings: s.canvas,
		IsLoading:      s.ops.loading(),
		Error:          s.ops.errorMessage(),
	}
}

func (s *DiagramStore) Diagrams() []model.Diagram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.diagrams)
}

func (s *DiagramStore) ActiveDiagram() *model.Diagram {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneDiagram(s.active)
}

func (s *DiagramStore) DiagramObjects() []model.DiagramObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.objects)
}

func (s *DiagramStore) CanvasSettings() model.CanvasSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.canvas
}

func (s *DiagramStore) IsLoading() bool { return s.ops.loading() }

func (s *DiagramStore) Error() string { return s.ops.errorMessage() }

func (s *DiagramStore) ClearError() { s.ops.clearError() }

func (s *DiagramStore) LastOp(name string) (OpResult, bool) { return s.ops.lastOp(name) }

func (s *DiagramStore) LoadDiagrams(ctx context.Context) error {
	done := s.ops.begin("LoadDiagrams")
	list, err := s.svc.List(ctx, model.Page{})
	if err != nil {
		s.logger.Warn("loading diagrams failed", "error", err)
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	s.diagrams = list
	s.mu.Unlock()
	done(nil, "")
	return nil
}

func (s *DiagramStore) CreateDiagram(ctx context.Context, req model.DiagramCreate) (*model.Diagram, error) {
	done := s.ops.begin("CreateDiagram")
	created, err := s.svc.Create(ctx, req)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.diagrams = append(s.diagrams, *created)
	s.mu.Unlock()
	done(nil, "")
	return created, nil
}

// SetActiveDiagram opens a diagram: its detail replaces the active diagram,
// its placed objects replace the object list and its saved view (or the
// default view) replaces the canvas settings.
func (s *DiagramStore) SetActiveDiagram(ctx context.Context, id int64) error {
	done := s.ops.begin("SetActiveDiagram")
	d, err := s.svc.Get(ctx, id)
	if err != nil {
		done(err, defaultMessage)
		return err
	}
	canvas := model.DefaultCanvasSettings()
	if d.CanvasSettings != nil {
		canvas = *d.CanvasSettings
	}
	s.mu.Lock()
	s.active = d
	s.objects = slices.Clone(d.Objects)
	s.canvas = canvas
	s.mu.Unlock()
	done(nil, "")
	return nil
}

// ClearActiveDiagram closes the open diagram.
func (s *DiagramStore) ClearActiveDiagram() {
	s.mu.Lock()
	s.active = nil
	s.objects = nil
	s.mu.Unlock()
}

// UpdateDiagram patches a diagram in the list and, if it is open, the active
// diagram too.
func (s *DiagramStore) UpdateDiagram(ctx context.Context, id int64, patch model.DiagramUpdate) (*model.Diagram, error) {
	done := s.ops.begin("UpdateDiagram")
	updated, err := s.svc.Update(ctx, id, patch)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	for i := range s.diagrams {
		if s.diagrams[i].ID == id {
			s.diagrams[i] = *updated
		}
	}
	if s.active != nil && s.active.ID == id {
		// The update response carries no placements; keep the ones we have.
		next := *updated
		if next.Objects == nil {
			next.Objects = s.active.Objects
		}
		if next.Relationships == nil {
			next.Relationships = s.active.Relationships
		}
		s.active = &next
	}
	s.mu.Unlock()
	done(nil, "")
	return updated, nil
}

func (s *DiagramStore) DeleteDiagram(ctx context.Context, id int64) error {
	done := s.ops.begin("DeleteDiagram")
	if _, err := s.svc.Delete(ctx, id); err != nil {
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	s.diagrams = slices.DeleteFunc(s.diagrams, func(d model.Diagram) bool { return d.ID == id })
	if s.active != nil && s.active.ID == id {
		s.active = nil
	}
	s.mu.Unlock()
	done(nil, "")
	return nil
}

// activeID returns the open diagram's id, or records the local failure.
func (s *DiagramStore) activeID() (int64, error) {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == nil {
		s.ops.fail(noActiveDiagramMessage)
		return 0, ErrNoActiveDiagram
	}
	return active.ID, nil
}

// AddObject places a repository object on the open diagram.
func (s *DiagramStore) AddObject(ctx context.Context, objectType model.ObjectType, objectID int64, x, y float64) (*model.DiagramObject, error) {
	diagramID, err := s.activeID()
	if err != nil {
		return nil, err
	}
	done := s.ops.begin("AddObject")
	req := model.DiagramObjectCreate{ObjectType: objectType, ObjectID: objectID, PositionX: x, PositionY: y}
	obj, err := s.svc.AddObject(ctx, diagramID, req)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.objects = append(s.objects, *obj)
	s.mu.Unlock()
	done(nil, "")
	return obj, nil
}

func (s *DiagramStore) UpdateObjectPosition(ctx context.Context, objectID int64, x, y float64) error {
	return s.updateObject(ctx, "UpdateObjectPosition", objectID, model.DiagramObjectUpdate{PositionX: &x, PositionY: &y})
}

func (s *DiagramStore) UpdateObjectStyle(ctx context.Context, objectID int64, style map[string]any) error {
	return s.updateObject(ctx, "UpdateObjectStyle", objectID, model.DiagramObjectUpdate{VisualStyle: style})
}

func (s *DiagramStore) updateObject(ctx context.Context, op string, objectID int64, req model.DiagramObjectUpdate) error {
	diagramID, err := s.activeID()
	if err != nil {
		return err
	}
	done := s.ops.begin(op)
	updated, err := s.svc.UpdateObject(ctx, diagramID, objectID, req)
	if err != nil {
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	for i := range s.objects {
		if s.objects[i].ID == objectID {
			s.objects[i] = *updated
		}
	}
	s.mu.Unlock()
	done(nil, "")
	return nil
}

// RemoveObject takes a placement off the open diagram.
func (s *DiagramStore) RemoveObject(ctx context.Context, objectID int64) error {
	diagramID, err := s.activeID()
	if err != nil {
		return err
	}
	done := s.ops.begin("RemoveObject")
	if _, err := s.svc.RemoveObject(ctx, diagramID, objectID); err != nil {
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	s.objects = slices.DeleteFunc(s.objects, func(o model.DiagramObject) bool { return o.ID == objectID })
	s.mu.Unlock()
	done(nil, "")
	return nil
}

// View setters. These change memory only.

func (s *DiagramStore) SetZoom(zoom float64) {
	s.mu.Lock()
	s.canvas.Zoom = zoom
	s.mu.Unlock()
}

func (s *DiagramStore) SetPan(x, y float64) {
	s.mu.Lock()
	s.canvas.Pan = model.Point{X: x, Y: y}
	s.mu.Unlock()
}

func (s *DiagramStore) SetGridEnabled(enabled bool) {
	s.mu.Lock()
	s.canvas.GridEnabled = enabled
	s.mu.Unlock()
}

func (s *DiagramStore) SetSnapToGrid(enabled bool) {
	s.mu.Lock()
	s.canvas.SnapToGrid = enabled
	s.mu.Unlock()
}

// SaveCanvasSettings persists the current view on the open diagram.
func (s *DiagramStore) SaveCanvasSettings(ctx context.Context) error {
	diagramID, err := s.activeID()
	if err != nil {
		return err
	}
	settings := s.CanvasSettings()
	_, err = s.UpdateDiagram(ctx, diagramID, model.DiagramUpdate{CanvasSettings: &settings})
	return err
}

// FilterDiagrams returns the cached diagrams whose name or description
// contains search (case-insensitive) and, when tag is set, carry tag.
func (s *DiagramStore) FilterDiagrams(search, tag string) []model.Diagram {
	needle := strings.ToLower(search)
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Diagram
	for _, d := range s.diagrams {
		matches := strings.Contains(strings.ToLower(d.Name), needle) ||
			(d.Description != "" && strings.Contains(strings.ToLower(d.Description), needle))
		if !matches {
			continue
		}
		if tag != "" && !d.HasTag(tag) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// AllTags returns the distinct tags of the cached diagrams, sorted.
func (s *DiagramStore) AllTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[string]struct{})
	for _, d := range s.diagrams {
		for _, t := range d.Tags {
			set[t] = struct{}{}
		}
	}
	tags := slices.Collect(maps.Keys(set))
	sort.Strings(tags)
	return tags
}

func cloneDiagram(d *model.Diagram) *model.Diagram {
	if d == nil {
		return nil
	}
	c := *d
	c.Tags = slices.Clone(d.Tags)
	c.Objects = slices.Clone(d.Objects)
	c.Relationships = slices.Clone(d.Relationships)
	return &c
}
