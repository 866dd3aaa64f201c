package api

import (
	"context"
	"net/http"

	"dd-go/internal/model"
)

type AttributeList struct {
	Attributes []model.Attribute `json:"attributes"`
	Total      int               `json:"total"`
}

type AttributeAPI struct {
	client Doer
}

// List returns attributes, filtered to one entity when entityID != 0.
func (a *AttributeAPI) List(ctx context.Context, entityID int64, page model.Page) (*AttributeList, error) {
	var out AttributeList
	if err := a.client.Do(ctx, http.MethodGet, "/attributes", parentQuery("entity_id", entityID, page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AttributeAPI) Get(ctx context.Context, id int64) (*model.Attribute, error) {
	var out model.Attribute
	if err := a.client.Do(ctx, http.MethodGet, itemPath("attributes", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AttributeAPI) Create(ctx context.Context, req model.AttributeCreate) (*model.Attribute, error) {
	var out model.Attribute
	if err := a.client.Do(ctx, http.MethodPost, "/attributes", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *AttributeAPI) Update(ctx context.Context, id int64, req model.AttributeUpdate) (*model.Attribute, error) {
	var out model.Attribute
	if err := a.client.Do(ctx, http.MethodPut, itemPath("attributes", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes an attribute. Attributes have no children, so there is no
// confirm flag.
func (a *AttributeAPI) Delete(ctx context.Context, id int64) (*model.DeleteResponse, error) {
	var out model.DeleteResponse
	if err := a.client.Do(ctx, http.MethodDelete, itemPath("attributes", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type RelationshipAPI struct {
	client Doer
}

// List returns relationships touching entityID (as source or target), or all
// of them when entityID is 0. The endpoint answers with a bare array.
func (a *RelationshipAPI) List(ctx context.Context, entityID int64) ([]model.Relationship, error) {
	var out []model.Relationship
	if err := a.client.Do(ctx, http.MethodGet, "/relationships", parentQuery("entity_id", entityID, model.Page{}), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *RelationshipAPI) Get(ctx context.Context, id int64) (*model.Relationship, error) {
	var out model.Relationship
	if err := a.client.Do(ctx, http.MethodGet, itemPath("relationships", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *RelationshipAPI) Create(ctx context.Context, req model.RelationshipCreate) (*model.Relationship, error) {
	var out model.Relationship
	if err := a.client.Do(ctx, http.MethodPost, "/relationships", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *RelationshipAPI) Delete(ctx context.Context, id int64) (*model.DeleteResponse, error) {
	var out model.DeleteResponse
	if err := a.client.Do(ctx, http.MethodDelete, itemPath("relationships", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
