// Package store holds the client-side caches and the operations that keep
// them in step with the API: one store for the session, one for the object
// repository and one for diagrams.
package store

import (
	"context"

	"dd-go/internal/api"
	"dd-go/internal/model"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.AuthResponse, error)
	Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error)
	Logout() error
}

type TokenReader interface {
	GetToken() (string, error)
}

// SessionProbe is any cheap authenticated call used to validate a token.
type SessionProbe interface {
	List(ctx context.Context, page model.Page) (*api.SuperdomainList, error)
}

type SuperdomainService interface {
	List(ctx context.Context, page model.Page) (*api.SuperdomainList, error)
	Create(ctx context.Context, req model.SuperdomainCreate) (*model.Superdomain, error)
	Update(ctx context.Context, id int64, req model.NamedUpdate) (*model.Superdomain, error)
	Delete(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error)
}

type DomainService interface {
	List(ctx context.Context, superdomainID int64, page model.Page) (*api.DomainList, error)
	Create(ctx context.Context, req model.DomainCreate) (*model.Domain, error)
	Update(ctx context.Context, id int64, req model.NamedUpdate) (*model.Domain, error)
	Delete(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error)
}

type EntityService interface {
	List(ctx context.Context, domainID int64, page model.Page) (*api.EntityList, error)
	Create(ctx context.Context, req model.EntityCreate) (*model.Entity, error)
	Update(ctx context.Context, id int64, req model.NamedUpdate) (*model.Entity, error)
	Delete(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error)
}

type AttributeService interface {
	List(ctx context.Context, entityID int64, page model.Page) (*api.AttributeList, error)
	Create(ctx context.Context, req model.AttributeCreate) (*model.Attribute, error)
	Update(ctx context.Context, id int64, req model.AttributeUpdate) (*model.Attribute, error)
	Delete(ctx context.Context, id int64) (*model.DeleteResponse, error)
}

type RelationshipService interface {
	List(ctx context.Context, entityID int64) ([]model.Relationship, error)
	Create(ctx context.Context, req model.RelationshipCreate) (*model.Relationship, error)
	Delete(ctx context.Context, id int64) (*model.DeleteResponse, error)
}

type DiagramService interface {
	List(ctx context.Context, page model.Page) ([]model.Diagram, error)
	Get(ctx context.Context, id int64) (*model.Diagram, error)
	Create(ctx context.Context, req model.DiagramCreate) (*model.Diagram, error)
	Update(ctx context.Context, id int64, req model.DiagramUpdate) (*model.Diagram, error)
	Delete(ctx context.Context, id int64) (*model.DeleteResponse, error)
	AddObject(ctx context.Context, diagramID int64, req model.DiagramObjectCreate) (*model.DiagramObject, error)
	UpdateObject(ctx context.Context, diagramID, objectID int64, req model.DiagramObjectUpdate) (*model.DiagramObject, error)
	RemoveObject(ctx context.Context, diagramID, objectID int64) (*model.DeleteResponse, error)
}

// RepositoryServices are the resource APIs the repository store drives.
type RepositoryServices struct {
	Superdomains  SuperdomainService
	Domains       DomainService
	Entities      EntityService
	Attributes    AttributeService
	Relationships RelationshipService
}

// NewRepositoryServices adapts a full API set.
func NewRepositoryServices(a *api.API) RepositoryServices {
	return RepositoryServices{
		Superdomains:  a.Superdomains,
		Domains:       a.Domains,
		Entities:      a.Entities,
		Attributes:    a.Attributes,
		Relationships: a.Relationships,
	}
}

// defaultMessage is shown when a failure carries no message of its own.
const defaultMessage = "An error occurred"
