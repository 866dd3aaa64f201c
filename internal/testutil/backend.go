package testutil

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"dd-go/internal/api"
	"dd-go/internal/model"
	"dd-go/internal/transport"
)

// FakeBackend is an in-memory stand-in for the modeling API. Each resource
// is exposed through an adapter with the same method set as the matching
// api type. Safe for concurrent use.
type FakeBackend struct {
	mu     sync.Mutex
	nextID int64
	calls  []string
	fail   map[string]error
	hook   func(call string)
	tokens api.TokenWriter

	users         map[string]fakeUser
	superdomains  []model.Superdomain
	domains       []model.Domain
	entities      []model.Entity
	attributes    []model.Attribute
	relationships []model.Relationship
	diagrams      []model.Diagram
}

type fakeUser struct {
	user     model.User
	password string
}

// NewFakeBackend creates an empty backend. tokens receives tokens issued by
// login and register; it may be nil.
func NewFakeBackend(tokens api.TokenWriter) *FakeBackend {
	return &FakeBackend{
		fail:   make(map[string]error),
		users:  make(map[string]fakeUser),
		tokens: tokens,
	}
}

// FailOn makes every call named call (e.g. "Diagrams.AddObject") return err
// until cleared with a nil err.
func (b *FakeBackend) FailOn(call string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.fail, call)
		return
	}
	b.fail[call] = err
}

// SetHook installs fn to run at the start of every call, outside the lock.
// Tests use it to hold calls in flight.
func (b *FakeBackend) SetHook(fn func(call string)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hook = fn
}

// Calls returns the names of all calls made so far, in order.
func (b *FakeBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.calls)
}

// CallCount counts calls whose name starts with prefix.
func (b *FakeBackend) CallCount(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// enter records the call, runs the hook and reports an injected failure.
// On success the lock is held and must be released by the caller.
func (b *FakeBackend) enter(call string) error {
	b.mu.Lock()
	b.calls = append(b.calls, call)
	hook := b.hook
	b.mu.Unlock()

	if hook != nil {
		hook(call)
	}

	b.mu.Lock()
	if err := b.fail[call]; err != nil {
		b.mu.Unlock()
		return err
	}
	return nil
}

func (b *FakeBackend) id() int64 {
	b.nextID++
	return b.nextID
}

// NotFound builds the error the API returns for a missing record.
func NotFound(kind string) *transport.APIError {
	return &transport.APIError{Err: "Not Found", Message: kind + " not found", StatusCode: http.StatusNotFound}
}

// Unauthorized builds the error the API returns for a rejected token.
func Unauthorized() *transport.APIError {
	return &transport.APIError{Err: "Unauthorized", Message: "Token has expired", StatusCode: http.StatusUnauthorized}
}

// Seeding helpers. These do not count as calls.

func (b *FakeBackend) AddUser(email, username, password string) model.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := model.User{ID: b.id(), Email: email, Username: username, AuthProvider: model.AuthProviderLocal, IsActive: true}
	b.users[email] = fakeUser{user: u, password: password}
	return u
}

func (b *FakeBackend) AddSuperdomain(name string) model.Superdomain {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := model.Superdomain{ID: b.id(), Name: name}
	b.superdomains = append(b.superdomains, s)
	return s
}

func (b *FakeBackend) AddDomain(superdomainID int64, name string) model.Domain {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := model.Domain{ID: b.id(), SuperdomainID: superdomainID, Name: name}
	b.domains = append(b.domains, d)
	return d
}

func (b *FakeBackend) AddEntity(domainID int64, name string) model.Entity {
	b.mu.Lock()
	defer b.mu.Unlock()
	e := model.Entity{ID: b.id(), DomainID: domainID, Name: name}
	b.entities = append(b.entities, e)
	return e
}

func (b *FakeBackend) AddAttribute(entityID int64, name, dataType string, primaryKey bool) model.Attribute {
	b.mu.Lock()
	defer b.mu.Unlock()
	a := model.Attribute{ID: b.id(), EntityID: entityID, Name: name, DataType: dataType, IsPrimaryKey: primaryKey, IsNullable: !primaryKey}
	b.attributes = append(b.attributes, a)
	return a
}

func (b *FakeBackend) AddRelationship(sourceID, targetID int64, source, target model.Cardinality) model.Relationship {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := model.Relationship{
		ID: b.id(), SourceEntityID: sourceID, TargetEntityID: targetID,
		SourceCardinality: source, TargetCardinality: target,
	}
	b.relationships = append(b.relationships, r)
	return r
}

func (b *FakeBackend) AddDiagram(name string, tags ...string) model.Diagram {
	b.mu.Lock()
	defer b.mu.Unlock()
	d := model.Diagram{ID: b.id(), UserID: 1, Name: name, Tags: tags}
	b.diagrams = append(b.diagrams, d)
	return d
}

// Adapters

func (b *FakeBackend) Auth() *FakeAuth                   { return &FakeAuth{b} }
func (b *FakeBackend) Superdomains() *FakeSuperdomains   { return &FakeSuperdomains{b} }
func (b *FakeBackend) Domains() *FakeDomains             { return &FakeDomains{b} }
func (b *FakeBackend) Entities() *FakeEntities           { return &FakeEntities{b} }
func (b *FakeBackend) Attributes() *FakeAttributes       { return &FakeAttributes{b} }
func (b *FakeBackend) Relationships() *FakeRelationships { return &FakeRelationships{b} }
func (b *FakeBackend) Diagrams() *FakeDiagrams           { return &FakeDiagrams{b} }

type FakeAuth struct{ b *FakeBackend }

func (f *FakeAuth) Login(_ context.Context, email, password string) (*model.AuthResponse, error) {
	b := f.b
	if err := b.enter("Auth.Login"); err != nil {
		return nil, err
	}
	u, ok := b.users[email]
	b.mu.Unlock()
	if !ok || u.password != password {
		return nil, &transport.APIError{Err: "Unauthorized", Message: "Invalid email or password", StatusCode: http.StatusUnauthorized}
	}
	return f.issue(u.user)
}

func (f *FakeAuth) Register(_ context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	b := f.b
	if err := b.enter("Auth.Register"); err != nil {
		return nil, err
	}
	if _, taken := b.users[req.Email]; taken {
		b.mu.Unlock()
		return nil, &transport.APIError{Err: "Conflict", Message: "Email already registered", StatusCode: http.StatusConflict}
	}
	u := model.User{ID: b.id(), Email: req.Email, Username: req.Username, FullName: req.FullName, AuthProvider: model.AuthProviderLocal, IsActive: true}
	b.users[req.Email] = fakeUser{user: u, password: req.Password}
	b.mu.Unlock()
	return f.issue(u)
}

func (f *FakeAuth) issue(u model.User) (*model.AuthResponse, error) {
	token := fmt.Sprintf("token-%d", u.ID)
	if f.b.tokens != nil {
		if err := f.b.tokens.SetToken(token); err != nil {
			return nil, err
		}
	}
	return &model.AuthResponse{Token: token, User: u}, nil
}

func (f *FakeAuth) Logout() error {
	if f.b.tokens == nil {
		return nil
	}
	return f.b.tokens.RemoveToken()
}

type FakeSuperdomains struct{ b *FakeBackend }

func (f *FakeSuperdomains) List(_ context.Context, page model.Page) (*api.SuperdomainList, error) {
	b := f.b
	if err := b.enter("Superdomains.List"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	items := paginate(b.superdomains, page)
	return &api.SuperdomainList{Superdomains: items, Total: len(b.superdomains)}, nil
}

func (f *FakeSuperdomains) Create(_ context.Context, req model.SuperdomainCreate) (*model.Superdomain, error) {
	b := f.b
	if err := b.enter("Superdomains.Create"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	s := model.Superdomain{ID: b.id(), Name: req.Name, Description: req.Description}
	b.superdomains = append(b.superdomains, s)
	return &s, nil
}

func (f *FakeSuperdomains) Update(_ context.Context, id int64, req model.NamedUpdate) (*model.Superdomain, error) {
	b := f.b
	if err := b.enter("Superdomains.Update"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.superdomains, func(s model.Superdomain) bool { return s.ID == id })
	if i < 0 {
		return nil, NotFound("Superdomain")
	}
	applyNamed(&b.superdomains[i].Name, &b.superdomains[i].Description, req)
	s := b.superdomains[i]
	return &s, nil
}

func (f *FakeSuperdomains) Delete(_ context.Context, id int64, confirm bool) (*model.DeleteResponse, error) {
	b := f.b
	if err := b.enter("Superdomains.Delete"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	if !slices.ContainsFunc(b.superdomains, func(s model.Superdomain) bool { return s.ID == id }) {
		return nil, NotFound("Superdomain")
	}
	var affected []string
	for _, d := range b.domains {
		if d.SuperdomainID == id {
			affected = append(affected, d.Name)
		}
	}
	if len(affected) > 0 && !confirm {
		return nil, &transport.APIError{Err: "Conflict", Message: "Superdomain has domains; confirm to cascade", StatusCode: http.StatusConflict}
	}
	b.superdomains = slices.DeleteFunc(b.superdomains, func(s model.Superdomain) bool { return s.ID == id })
	b.domains = slices.DeleteFunc(b.domains, func(d model.Domain) bool { return d.SuperdomainID == id })
	return &model.DeleteResponse{
		Message: "Superdomain deleted successfully",
		Impact:  &model.DeleteImpact{AffectedDomains: affected, Cascade: len(affected) > 0},
	}, nil
}

type FakeDomains struct{ b *FakeBackend }

func (f *FakeDomains) List(_ context.Context, superdomainID int64, page model.Page) (*api.DomainList, error) {
	b := f.b
	if err := b.enter("Domains.List"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	var matched []model.Domain
	for _, d := range b.domains {
		if superdomainID == 0 || d.SuperdomainID == superdomainID {
			matched = append(matched, d)
		}
	}
	return &api.DomainList{Domains: paginate(matched, page), Total: len(matched)}, nil
}

func (f *FakeDomains) Create(_ context.Context, req model.DomainCreate) (*model.Domain, error) {
	b := f.b
	if err := b.enter("Domains.Create"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	d := model.Domain{ID: b.id(), SuperdomainID: req.SuperdomainID, Name: req.Name, Description: req.Description}
	b.domains = append(b.domains, d)
	return &d, nil
}

func (f *FakeDomains) Update(_ context.Context, id int64, req model.NamedUpdate) (*model.Domain, error) {
	b := f.b
	if err := b.enter("Domains.Update"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.domains, func(d model.Domain) bool { return d.ID == id })
	if i < 0 {
		return nil, NotFound("Domain")
	}
	applyNamed(&b.domains[i].Name, &b.domains[i].Description, req)
	d := b.domains[i]
	return &d, nil
}

func (f *FakeDomains) Delete(_ context.Context, id int64, confirm bool) (*model.DeleteResponse, error) {
	b := f.b
	if err := b.enter("Domains.Delete"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	if !slices.ContainsFunc(b.domains, func(d model.Domain) bool { return d.ID == id }) {
		return nil, NotFound("Domain")
	}
	var affected []string
	for _, e := range b.entities {
		if e.DomainID == id {
			affected = append(affected, e.Name)
		}
	}
	if len(affected) > 0 && !confirm {
		return nil, &transport.APIError{Err: "Conflict", Message: "Domain has entities; confirm to cascade", StatusCode: http.StatusConflict}
	}
	b.domains = slices.DeleteFunc(b.domains, func(d model.Domain) bool { return d.ID == id })
	b.entities = slices.DeleteFunc(b.entities, func(e model.Entity) bool { return e.DomainID == id })
	return &model.DeleteResponse{
		Message: "Domain deleted successfully",
		Impact:  &model.DeleteImpact{AffectedEntities: affected, Cascade: len(affected) > 0},
	}, nil
}

type FakeEntities struct{ b *FakeBackend }

func (f *FakeEntities) List(_ context.Context, domainID int64, page model.Page) (*api.EntityList, error) {
	b := f.b
	if err := b.enter("Entities.List"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	var matched []model.Entity
	for _, e := range b.entities {
		if domainID == 0 || e.DomainID == domainID {
			matched = append(matched, e)
		}
	}
	return &api.EntityList{Entities: paginate(matched, page), Total: len(matched)}, nil
}

func (f *FakeEntities) Create(_ context.Context, req model.EntityCreate) (*model.Entity, error) {
	b := f.b
	if err := b.enter("Entities.Create"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	e := model.Entity{ID: b.id(), DomainID: req.DomainID, Name: req.Name, Description: req.Description}
	b.entities = append(b.entities, e)
	return &e, nil
}

func (f *FakeEntities) Update(_ context.Context, id int64, req model.NamedUpdate) (*model.Entity, error) {
	b := f.b
	if err := b.enter("Entities.Update"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.entities, func(e model.Entity) bool { return e.ID == id })
	if i < 0 {
		return nil, NotFound("Entity")
	}
	applyNamed(&b.entities[i].Name, &b.entities[i].Description, req)
	e := b.entities[i]
	return &e, nil
}

func (f *FakeEntities) Delete(_ context.Context, id int64, _ bool) (*model.DeleteResponse, error) {
	b := f.b
	if err := b.enter("Entities.Delete"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	if !slices.ContainsFunc(b.entities, func(e model.Entity) bool { return e.ID == id }) {
		return nil, NotFound("Entity")
	}
	b.entities = slices.DeleteFunc(b.entities, func(e model.Entity) bool { return e.ID == id })
	b.attributes = slices.DeleteFunc(b.attributes, func(a model.Attribute) bool { return a.EntityID == id })
	return &model.DeleteResponse{Message: "Entity deleted successfully"}, nil
}

type FakeAttributes struct{ b *FakeBackend }

func (f *FakeAttributes) List(_ context.Context, entityID int64, page model.Page) (*api.AttributeList, error) {
	b := f.b
	if err := b.enter("Attributes.List"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	var matched []model.Attribute
	for _, a := range b.attributes {
		if entityID == 0 || a.EntityID == entityID {
			matched = append(matched, a)
		}
	}
	return &api.AttributeList{Attributes: paginate(matched, page), Total: len(matched)}, nil
}

func (f *FakeAttributes) Create(_ context.Context, req model.AttributeCreate) (*model.Attribute, error) {
	b := f.b
	if err := b.enter("Attributes.Create"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	a := model.Attribute{
		ID: b.id(), EntityID: req.EntityID, Name: req.Name, DataType: req.DataType,
		IsNullable: true, DefaultValue: req.DefaultValue, Constraints: req.Constraints,
	}
	if req.IsNullable != nil {
		a.IsNullable = *req.IsNullable
	}
	if req.IsPrimaryKey != nil {
		a.IsPrimaryKey = *req.IsPrimaryKey
	}
	b.attributes = append(b.attributes, a)
	return &a, nil
}

func (f *FakeAttributes) Update(_ context.Context, id int64, req model.AttributeUpdate) (*model.Attribute, error) {
	b := f.b
	if err := b.enter("Attributes.Update"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.attributes, func(a model.Attribute) bool { return a.ID == id })
	if i < 0 {
		return nil, NotFound("Attribute")
	}
	a := &b.attributes[i]
	if req.Name != nil {
		a.Name = *req.Name
	}
	if req.DataType != nil {
		a.DataType = *req.DataType
	}
	if req.IsNullable != nil {
		a.IsNullable = *req.IsNullable
	}
	if req.IsPrimaryKey != nil {
		a.IsPrimaryKey = *req.IsPrimaryKey
	}
	if req.DefaultValue != nil {
		a.DefaultValue = req.DefaultValue
	}
	if req.Constraints != nil {
		a.Constraints = req.Constraints
	}
	out := *a
	return &out, nil
}

func (f *FakeAttributes) Delete(_ context.Context, id int64) (*model.DeleteResponse, error) {
	b := f.b
	if err := b.enter("Attributes.Delete"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	if !slices.ContainsFunc(b.attributes, func(a model.Attribute) bool { return a.ID == id }) {
		return nil, NotFound("Attribute")
	}
	b.attributes = slices.DeleteFunc(b.attributes, func(a model.Attribute) bool { return a.ID == id })
	return &model.DeleteResponse{Message: "Attribute deleted successfully"}, nil
}

type FakeRelationships struct{ b *FakeBackend }

func (f *FakeRelationships) List(_ context.Context, entityID int64) ([]model.Relationship, error) {
	b := f.b
	if err := b.enter("Relationships.List"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	var matched []model.Relationship
	for _, r := range b.relationships {
		if entityID == 0 || r.SourceEntityID == entityID || r.TargetEntityID == entityID {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func (f *FakeRelationships) Create(_ context.Context, req model.RelationshipCreate) (*model.Relationship, error) {
	b := f.b
	if err := b.enter("Relationships.Create"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	r := model.Relationship{
		ID: b.id(), SourceEntityID: req.SourceEntityID, TargetEntityID: req.TargetEntityID,
		SourceRole: req.SourceRole, TargetRole: req.TargetRole,
		SourceCardinality: req.SourceCardinality, TargetCardinality: req.TargetCardinality,
		Description: req.Description,
	}
	b.relationships = append(b.relationships, r)
	return &r, nil
}

func (f *FakeRelationships) Delete(_ context.Context, id int64) (*model.DeleteResponse, error) {
	b := f.b
	if err := b.enter("Relationships.Delete"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	if !slices.ContainsFunc(b.relationships, func(r model.Relationship) bool { return r.ID == id }) {
		return nil, NotFound("Relationship")
	}
	b.relationships = slices.DeleteFunc(b.relationships, func(r model.Relationship) bool { return r.ID == id })
	return &model.DeleteResponse{Message: "Relationship deleted successfully"}, nil
}

type FakeDiagrams struct{ b *FakeBackend }

func (f *FakeDiagrams) List(_ context.Context, page model.Page) ([]model.Diagram, error) {
	b := f.b
	if err := b.enter("Diagrams.List"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	out := make([]model.Diagram, 0, len(b.diagrams))
	for _, d := range paginate(b.diagrams, page) {
		d.Objects = nil
		d.Relationships = nil
		out = append(out, d)
	}
	return out, nil
}

func (f *FakeDiagrams) Get(_ context.Context, id int64) (*model.Diagram, error) {
	b := f.b
	if err := b.enter("Diagrams.Get"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := b.diagramIndex(id)
	if i < 0 {
		return nil, NotFound("Diagram")
	}
	d := b.diagrams[i]
	d.Objects = slices.Clone(d.Objects)
	return &d, nil
}

func (f *FakeDiagrams) Create(_ context.Context, req model.DiagramCreate) (*model.Diagram, error) {
	b := f.b
	if err := b.enter("Diagrams.Create"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	d := model.Diagram{ID: b.id(), UserID: 1, Name: req.Name, Description: req.Description, Tags: req.Tags, CanvasSettings: req.CanvasSettings}
	b.diagrams = append(b.diagrams, d)
	return &d, nil
}

func (f *FakeDiagrams) Update(_ context.Context, id int64, req model.DiagramUpdate) (*model.Diagram, error) {
	b := f.b
	if err := b.enter("Diagrams.Update"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := b.diagramIndex(id)
	if i < 0 {
		return nil, NotFound("Diagram")
	}
	d := &b.diagrams[i]
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Tags != nil {
		d.Tags = req.Tags
	}
	if req.CanvasSettings != nil {
		cs := *req.CanvasSettings
		d.CanvasSettings = &cs
	}
	out := *d
	out.Objects = nil
	out.Relationships = nil
	return &out, nil
}

func (f *FakeDiagrams) Delete(_ context.Context, id int64) (*model.DeleteResponse, error) {
	b := f.b
	if err := b.enter("Diagrams.Delete"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := b.diagramIndex(id)
	if i < 0 {
		return nil, NotFound("Diagram")
	}
	b.diagrams = slices.Delete(b.diagrams, i, i+1)
	return &model.DeleteResponse{Message: "Diagram deleted successfully"}, nil
}

func (f *FakeDiagrams) AddObject(_ context.Context, diagramID int64, req model.DiagramObjectCreate) (*model.DiagramObject, error) {
	b := f.b
	if err := b.enter("Diagrams.AddObject"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := b.diagramIndex(diagramID)
	if i < 0 {
		return nil, NotFound("Diagram")
	}
	o := model.DiagramObject{
		ID: b.id(), DiagramID: diagramID, ObjectType: req.ObjectType, ObjectID: req.ObjectID,
		PositionX: req.PositionX, PositionY: req.PositionY, VisualStyle: req.VisualStyle,
	}
	b.diagrams[i].Objects = append(b.diagrams[i].Objects, o)
	return &o, nil
}

func (f *FakeDiagrams) UpdateObject(_ context.Context, diagramID, objectID int64, req model.DiagramObjectUpdate) (*model.DiagramObject, error) {
	b := f.b
	if err := b.enter("Diagrams.UpdateObject"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := b.diagramIndex(diagramID)
	if i < 0 {
		return nil, NotFound("Diagram")
	}
	objs := b.diagrams[i].Objects
	j := slices.IndexFunc(objs, func(o model.DiagramObject) bool { return o.ID == objectID })
	if j < 0 {
		return nil, NotFound("Diagram object")
	}
	if req.PositionX != nil {
		objs[j].PositionX = *req.PositionX
	}
	if req.PositionY != nil {
		objs[j].PositionY = *req.PositionY
	}
	if req.VisualStyle != nil {
		objs[j].VisualStyle = req.VisualStyle
	}
	o := objs[j]
	return &o, nil
}

func (f *FakeDiagrams) RemoveObject(_ context.Context, diagramID, objectID int64) (*model.DeleteResponse, error) {
	b := f.b
	if err := b.enter("Diagrams.RemoveObject"); err != nil {
		return nil, err
	}
	defer b.mu.Unlock()
	i := b.diagramIndex(diagramID)
	if i < 0 {
		return nil, NotFound("Diagram")
	}
	before := len(b.diagrams[i].Objects)
	b.diagrams[i].Objects = slices.DeleteFunc(b.diagrams[i].Objects, func(o model.DiagramObject) bool { return o.ID == objectID })
	if len(b.diagrams[i].Objects) == before {
		return nil, NotFound("Diagram object")
	}
	return &model.DeleteResponse{Message: "Object removed from diagram"}, nil
}

func (b *FakeBackend) diagramIndex(id int64) int {
	return slices.IndexFunc(b.diagrams, func(d model.Diagram) bool { return d.ID == id })
}

func applyNamed(name, description *string, req model.NamedUpdate) {
	if req.Name != nil {
		*name = *req.Name
	}
	if req.Description != nil {
		*description = *req.Description
	}
}

func paginate[T any](items []T, page model.Page) []T {
	start := min(page.Skip, len(items))
	end := len(items)
	if page.Limit > 0 {
		end = min(start+page.Limit, end)
	}
	return slices.Clone(items[start:end])
}
