package store

import (
	"context"
	"sync"

	"dd-go/internal/dd"
	"dd-go/internal/model"
)

// RepositoryStore caches the Superdomain > Domain > Entity > Attribute tree
// and the relationship list. Buckets are filled per parent on first load and
// patched in place by mutations; deletes never cascade locally.
type RepositoryStore struct {
	svc    RepositoryServices
	logger dd.Logger
	ops    *opTracker

	mu            sync.RWMutex
	superdomains  *bucketCache[model.Superdomain]
	domains       *bucketCache[model.Domain]
	entities      *bucketCache[model.Entity]
	attributes    *bucketCache[model.Attribute]
	relationships *bucketCache[model.Relationship]
}

func NewRepositoryStore(svc RepositoryServices, logger dd.Logger) *RepositoryStore {
	if logger == nil {
		logger = dd.NewNopLogger()
	}
	return &RepositoryStore{
		svc:    svc,
		logger: logger,
		ops:    newOpTracker(),
		superdomains: newBucketCache(
			func(s model.Superdomain) int64 { return s.ID },
			func(model.Superdomain) int64 { return rootParent },
		),
		domains: newBucketCache(
			func(d model.Domain) int64 { return d.ID },
			func(d model.Domain) int64 { return d.SuperdomainID },
		),
		entities: newBucketCache(
			func(e model.Entity) int64 { return e.ID },
			func(e model.Entity) int64 { return e.DomainID },
		),
		attributes: newBucketCache(
			func(a model.Attribute) int64 { return a.ID },
			func(a model.Attribute) int64 { return a.EntityID },
		),
		relationships: newBucketCache(
			func(r model.Relationship) int64 { return r.ID },
			func(model.Relationship) int64 { return rootParent },
		),
	}
}

// IsLoading reports whether any repository operation is in flight.
func (s *RepositoryStore) IsLoading() bool { return s.ops.loading() }

// Error is the message of the last failed operation, or "".
func (s *RepositoryStore) Error() string { return s.ops.errorMessage() }

func (s *RepositoryStore) ClearError() { s.ops.clearError() }

// LastOp returns the outcome of the most recent finished call of name.
func (s *RepositoryStore) LastOp(name string) (OpResult, bool) { return s.ops.lastOp(name) }

// Superdomains

func (s *RepositoryStore) LoadSuperdomains(ctx context.Context) error {
	done := s.ops.begin("LoadSuperdomains")
	list, err := s.svc.Superdomains.List(ctx, model.Page{})
	if err != nil {
		s.logger.Warn("loading superdomains failed", "error", err)
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	s.superdomains.replace(rootParent, list.Superdomains)
	s.mu.Unlock()
	done(nil, "")
	return nil
}

func (s *RepositoryStore) CreateSuperdomain(ctx context.Context, req model.SuperdomainCreate) (*model.Superdomain, error) {
	done := s.ops.begin("CreateSuperdomain")
	created, err := s.svc.Superdomains.Create(ctx, req)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.superdomains.add(*created)
	s.mu.Unlock()
	done(nil, "")
	return created, nil
}

func (s *RepositoryStore) UpdateSuperdomain(ctx context.Context, id int64, patch model.NamedUpdate) (*model.Superdomain, error) {
	done := s.ops.begin("UpdateSuperdomain")
	updated, err := s.svc.Superdomains.Update(ctx, id, patch)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.superdomains.update(*updated)
	s.mu.Unlock()
	done(nil, "")
	return updated, nil
}

// DeleteSuperdomain forwards confirm to the server, which may cascade.
// Cached domain and entity buckets of the removed superdomain are left as is.
func (s *RepositoryStore) DeleteSuperdomain(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error) {
	done := s.ops.begin("DeleteSuperdomain")
	resp, err := s.svc.Superdomains.Delete(ctx, id, confirm)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.superdomains.remove(id)
	s.mu.Unlock()
	done(nil, "")
	return resp, nil
}

// Domains

func (s *RepositoryStore) LoadDomains(ctx context.Context, superdomainID int64) error {
	done := s.ops.begin("LoadDomains")
	list, err := s.svc.Domains.List(ctx, superdomainID, model.Page{})
	if err != nil {
		s.logger.Warn("loading domains failed", "superdomain_id", superdomainID, "error", err)
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	s.domains.replace(superdomainID, list.Domains)
	s.mu.Unlock()
	done(nil, "")
	return nil
}

func (s *RepositoryStore) CreateDomain(ctx context.Context, req model.DomainCreate) (*model.Domain, error) {
	done := s.ops.begin("CreateDomain")
	created, err := s.svc.Domains.Create(ctx, req)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.domains.add(*created)
	s.mu.Unlock()
	done(nil, "")
	return created, nil
}

func (s *RepositoryStore) UpdateDomain(ctx context.Context, id int64, patch model.NamedUpdate) (*model.Domain, error) {
	done := s.ops.begin("UpdateDomain")
	updated, err := s.svc.Domains.Update(ctx, id, patch)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.domains.update(*updated)
	s.mu.Unlock()
	done(nil, "")
	return updated, nil
}

func (s *RepositoryStore) DeleteDomain(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error) {
	done := s.ops.begin("DeleteDomain")
	resp, err := s.svc.Domains.Delete(ctx, id, confirm)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.domains.remove(id)
	s.mu.Unlock()
	done(nil, "")
	return resp, nil
}

// Entities

func (s *RepositoryStore) LoadEntities(ctx context.Context, domainID int64) error {
	done := s.ops.begin("LoadEntities")
	list, err := s.svc.Entities.List(ctx, domainID, model.Page{})
	if err != nil {
		s.logger.Warn("loading entities failed", "domain_id", domainID, "error", err)
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	s.entities.replace(domainID, list.Entities)
	s.mu.Unlock()
	done(nil, "")
	return nil
}

func (s *RepositoryStore) CreateEntity(ctx context.Context, req model.EntityCreate) (*model.Entity, error) {
	done := s.ops.begin("CreateEntity")
	created, err := s.svc.Entities.Create(ctx, req)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.entities.add(*created)
	s.mu.Unlock()
	done(nil, "")
	return created, nil
}

func (s *RepositoryStore) UpdateEntity(ctx context.Context, id int64, patch model.NamedUpdate) (*model.Entity, error) {
	done := s.ops.begin("UpdateEntity")
	updated, err := s.svc.Entities.Update(ctx, id, patch)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.entities.update(*updated)
	s.mu.Unlock()
	done(nil, "")
	return updated, nil
}

func (s *RepositoryStore) DeleteEntity(ctx context.Context, id int64, confirm bool) (*model.DeleteResponse, error) {
	done := s.ops.begin("DeleteEntity")
	resp, err := s.svc.Entities.Delete(ctx, id, confirm)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.entities.remove(id)
	s.mu.Unlock()
	done(nil, "")
	return resp, nil
}

// Attributes

func (s *RepositoryStore) LoadAttributes(ctx context.Context, entityID int64) error {
	done := s.ops.begin("LoadAttributes")
	list, err := s.svc.Attributes.List(ctx, entityID, model.Page{})
	if err != nil {
		s.logger.Warn("loading attributes failed", "entity_id", entityID, "error", err)
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	s.attributes.replace(entityID, list.Attributes)
	s.mu.Unlock()
	done(nil, "")
	return nil
}

func (s *RepositoryStore) CreateAttribute(ctx context.Context, req model.AttributeCreate) (*model.Attribute, error) {
	done := s.ops.begin("CreateAttribute")
	created, err := s.svc.Attributes.Create(ctx, req)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.attributes.add(*created)
	s.mu.Unlock()
	done(nil, "")
	return created, nil
}

func (s *RepositoryStore) UpdateAttribute(ctx context.Context, id int64, patch model.AttributeUpdate) (*model.Attribute, error) {
	done := s.ops.begin("UpdateAttribute")
	updated, err := s.svc.Attributes.Update(ctx, id, patch)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.attributes.update(*updated)
	s.mu.Unlock()
	done(nil, "")
	return updated, nil
}

func (s *RepositoryStore) DeleteAttribute(ctx context.Context, id int64) (*model.DeleteResponse, error) {
	done := s.ops.begin("DeleteAttribute")
	resp, err := s.svc.Attributes.Delete(ctx, id)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.attributes.remove(id)
	s.mu.Unlock()
	done(nil, "")
	return resp, nil
}

// Relationships

// LoadRelationships replaces the relationship list with those touching
// entityID, or with every relationship when entityID is 0.
func (s *RepositoryStore) LoadRelationships(ctx context.Context, entityID int64) error {
	done := s.ops.begin("LoadRelationships")
	list, err := s.svc.Relationships.List(ctx, entityID)
	if err != nil {
		s.logger.Warn("loading relationships failed", "entity_id", entityID, "error", err)
		done(err, defaultMessage)
		return err
	}
	s.mu.Lock()
	s.relationships.replace(rootParent, list)
	s.mu.Unlock()
	done(nil, "")
	return nil
}

func (s *RepositoryStore) CreateRelationship(ctx context.Context, req model.RelationshipCreate) (*model.Relationship, error) {
	done := s.ops.begin("CreateRelationship")
	created, err := s.svc.Relationships.Create(ctx, req)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.relationships.add(*created)
	s.mu.Unlock()
	done(nil, "")
	return created, nil
}

func (s *RepositoryStore) DeleteRelationship(ctx context.Context, id int64) (*model.DeleteResponse, error) {
	done := s.ops.begin("DeleteRelationship")
	resp, err := s.svc.Relationships.Delete(ctx, id)
	if err != nil {
		done(err, defaultMessage)
		return nil, err
	}
	s.mu.Lock()
	s.relationships.remove(id)
	s.mu.Unlock()
	done(nil, "")
	return resp, nil
}

// Read accessors return copies.

func (s *RepositoryStore) Superdomains() []model.Superdomain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.superdomains.bucket(rootParent)
}

func (s *RepositoryStore) Domains(superdomainID int64) []model.Domain {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains.bucket(superdomainID)
}

func (s *RepositoryStore) Entities(domainID int64) []model.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities.bucket(domainID)
}

func (s *RepositoryStore) Attributes(entityID int64) []model.Attribute {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attributes.bucket(entityID)
}

func (s *RepositoryStore) Relationships() []model.Relationship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.relationships.bucket(rootParent)
}

func (s *RepositoryStore) Superdomain(id int64) (model.Superdomain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.superdomains.get(id)
}

func (s *RepositoryStore) Domain(id int64) (model.Domain, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains.get(id)
}

func (s *RepositoryStore) Entity(id int64) (model.Entity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities.get(id)
}

func (s *RepositoryStore) Attribute(id int64) (model.Attribute, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attributes.get(id)
}

// HasSuperdomains reports whether the superdomain list has been loaded.
func (s *RepositoryStore) HasSuperdomains() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.superdomains.loaded(rootParent)
}

// HasDomains reports whether the domain bucket of superdomainID is loaded.
func (s *RepositoryStore) HasDomains(superdomainID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.domains.loaded(superdomainID)
}

func (s *RepositoryStore) HasEntities(domainID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities.loaded(domainID)
}

func (s *RepositoryStore) HasAttributes(entityID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.attributes.loaded(entityID)
}

// checkInvariant verifies every cache. Used by tests.
func (s *RepositoryStore) checkInvariant() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	checks := []func() error{
		s.superdomains.checkInvariant,
		s.domains.checkInvariant,
		s.entities.checkInvariant,
		s.attributes.checkInvariant,
		s.relationships.checkInvariant,
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}
