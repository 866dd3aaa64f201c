package api

import (
	"context"
	"net/http"

	"dd-go/internal/model"
)

type SuperdomainList struct {
	Superdomains []model.Superdomain `json:"superdomains"`
	Total        int                 `json:"total"`
}

type DomainList struct {
	Domains []model.Domain `json:"domains"`
	Total   int            `json:"total"`
}

type EntityList struct {
	Entities []model.Entity `json:"entities"`
	Total    int            `json:"total"`
}

type SuperdomainAPI struct {
	client Doer
}

func (a *SuperdomainAPI) List(ctx context.Context, page model.Page) (*SuperdomainList, error) {
	var out SuperdomainList
	if err := a.client.Do(ctx, http.MethodGet, "/superdomains", pageQuery(nil, page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *SuperdomainAPI) Get(ctx context.Context, id int64) (*model.Superdomain, error) {
	var out model.Superdomain
	if err := a.client.Do(ctx, http.MethodGet, itemPath("superdomains", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *SuperdomainAPI) Create(ctx context.Context, req model.SuperdomainCreate) (*model.Superdomain, error) {
	var out model.Superdomain
	if err := a.client.Do(ctx, http.MethodPost, "/superdomains", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *SuperdomainAPI) Update(ctx context.Context, id int64, req model.NamedUpdate) (*model.Superdomain, error) {
	var out model.Superdomain
	if err := a.client.Do(ctx, http.MethodPut, itemPath("superdomains", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a superdomain. With confirm the server cascades to its
// domains and entities; without it a non-empty superdomain is refused.
func (a *SuperdomainAPI) Delete(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error) {
	var out model.DeleteResponse
	if err := a.client.Do(ctx, http.MethodDelete, itemPath("superdomains", id), confirmQuery(confirm), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type DomainAPI struct {
	client Doer
}

// List returns domains, filtered to one superdomain when superdomainID != 0.
func (a *DomainAPI) List(ctx context.Context, superdomainID int64, page model.Page) (*DomainList, error) {
	var out DomainList
	if err := a.client.Do(ctx, http.MethodGet, "/domains", parentQuery("superdomain_id", superdomainID, page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *DomainAPI) Get(ctx context.Context, id int64) (*model.Domain, error) {
	var out model.Domain
	if err := a.client.Do(ctx, http.MethodGet, itemPath("domains", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *DomainAPI) Create(ctx context.Context, req model.DomainCreate) (*model.Domain, error) {
	var out model.Domain
	if err := a.client.Do(ctx, http.MethodPost, "/domains", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *DomainAPI) Update(ctx context.Context, id int64, req model.NamedUpdate) (*model.Domain, error) {
	var out model.Domain
	if err := a.client.Do(ctx, http.MethodPut, itemPath("domains", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *DomainAPI) Delete(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error) {
	var out model.DeleteResponse
	if err := a.client.Do(ctx, http.MethodDelete, itemPath("domains", id), confirmQuery(confirm), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type EntityAPI struct {
	client Doer
}

// List returns entities, filtered to one domain when domainID != 0.
func (a *EntityAPI) List(ctx context.Context, domainID int64, page model.Page) (*EntityList, error) {
	var out EntityList
	if err := a.client.Do(ctx, http.MethodGet, "/entities", parentQuery("domain_id", domainID, page), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EntityAPI) Get(ctx context.Context, id int64) (*model.Entity, error) {
	var out model.Entity
	if err := a.client.Do(ctx, http.MethodGet, itemPath("entities", id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EntityAPI) Create(ctx context.Context, req model.EntityCreate) (*model.Entity, error) {
	var out model.Entity
	if err := a.client.Do(ctx, http.MethodPost, "/entities", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EntityAPI) Update(ctx context.Context, id int64, req model.NamedUpdate) (*model.Entity, error) {
	var out model.Entity
	if err := a.client.Do(ctx, http.MethodPut, itemPath("entities", id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *EntityAPI) Delete(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error) {
	var out model.DeleteResponse
	if err := a.client.Do(ctx, http.MethodDelete, itemPath("entities", id), confirmQuery(confirm), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
