package api

import (
	"context"
	"fmt"
	"net/http"

	"dd-go/internal/model"
)

type DiagramAPI struct {
	client Doer
}

// List returns the caller's diagrams as a bare array.
func (a *DiagramAPI) List(ctx context.Context, page model.Page) ([]model.Diagram, error) {
	var out []model.Diagram
	if err := a.client.Do(ctx, http.MethodGet, "/diagrams", pageQuery(nil, page), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get returns the diagram with its placed objects and relationships.
func (a *DiagramAPI) Get(ctx context.Context, id int64) (*model.Diagram, error) {
	var out model.Diagram
	if err := a.client.Do(ctx, http.MethodGet, itemPath("diagrams", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *DiagramAPI) Create(ctx context.Context, req model.DiagramCreate) (*model.Diagram, error) {
	var out model.Diagram
	if err := a.client.Do(ctx, http.MethodPost, "/diagrams", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *DiagramAPI) Update(ctx context.Context, id int64, req model.DiagramUpdate) (*model.Diagram, error) {
	var out model.Diagram
	if err := a.client.Do(ctx, http.MethodPut, itemPath("diagrams", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *DiagramAPI) Delete(ctx context.Context, id int64) (*model.DeleteResponse, error) {
	var out model.DeleteResponse
	if err := a.client.Do(ctx, http.MethodDelete, itemPath("diagrams", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func objectPath(diagramID, objectID int64) string {
	return fmt.Sprintf("/diagrams/%d/objects/%d", diagramID, objectID)
}

// AddObject places a repository object on a diagram.
func (a *DiagramAPI) AddObject(ctx context.Context, diagramID int64, req model.DiagramObjectCreate) (*model.DiagramObject, error) {
	var out model.DiagramObject
	path := fmt.Sprintf("/diagrams/%d/objects", diagramID)
	if err := a.client.Do(ctx, http.MethodPost, path, nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateObject changes a placement's position and/or visual style.
func (a *DiagramAPI) UpdateObject(ctx context.Context, diagramID, objectID int64, req model.DiagramObjectUpdate) (*model.DiagramObject, error) {
	var out model.DiagramObject
	if err := a.client.Do(ctx, http.MethodPut, objectPath(diagramID, objectID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveObject takes a placement off the diagram. The repository object
// itself is untouched.
func (a *DiagramAPI) RemoveObject(ctx context.Context, diagramID, objectID int64) (*model.DeleteResponse, error) {
	var out model.DeleteResponse
	if err := a.client.Do(ctx, http.MethodDelete, objectPath(diagramID, objectID), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
