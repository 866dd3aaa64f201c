package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dd-go/internal/model"
	"dd-go/internal/storage"
	"dd-go/internal/transport"
)

// recorded is what the fake server saw for the last request.
type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
	auth   string
}

func newTestAPI(t *testing.T, mux *http.ServeMux) (*API, *transport.TokenStore, *recorded) {
	t.Helper()
	rec := &recorded{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		rec.body = nil
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			assert.NoError(t, json.Unmarshal(raw, &rec.body))
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(server.Close)

	tokens := transport.NewTokenStore(storage.NewMemoryStorage())
	client := transport.NewClient(server.URL+"/api/v1", 5*time.Second, tokens, nil)
	return New(client, tokens), tokens, rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestAuthAPI_LoginStoresToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"token": "jwt-1",
			"user":  map[string]any{"id": 1, "email": "ada@example.com", "username": "ada", "auth_provider": "LOCAL", "is_active": true},
		})
	})
	a, tokens, rec := newTestAPI(t, mux)

	resp, err := a.Auth.Login(context.Background(), "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "ada", resp.User.Username)
	assert.Equal(t, map[string]any{"email": "ada@example.com", "password": "secret123"}, rec.body)

	token, err := tokens.GetToken()
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", token)

	require.NoError(t, a.Auth.Logout())
	token, err = tokens.GetToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestAuthAPI_RegisterFailureKeepsNoToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/register", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "Conflict", "message": "Email already registered"})
	})
	a, tokens, rec := newTestAPI(t, mux)

	_, err := a.Auth.Register(context.Background(), model.RegisterRequest{
		Email: "ada@example.com", Username: "ada", Password: "secret123", FullName: model.Ptr("Ada Lovelace"),
	})
	require.Error(t, err)
	assert.Equal(t, "Email already registered", err.Error())
	assert.Equal(t, "Ada Lovelace", rec.body["full_name"])

	token, err := tokens.GetToken()
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestSuperdomainAPI_ListEnvelopeAndPaging(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/superdomains", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"superdomains": []map[string]any{{"id": 1, "name": "Sales"}, {"id": 2, "name": "Finance"}},
			"total":        2,
		})
	})
	a, tokens, rec := newTestAPI(t, mux)
	require.NoError(t, tokens.SetToken("jwt"))

	list, err := a.Superdomains.List(context.Background(), model.Page{Skip: 10, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Superdomains, 2)
	assert.Equal(t, "Finance", list.Superdomains[1].Name)
	assert.Equal(t, "limit=5&skip=10", rec.query)
	assert.Equal(t, "Bearer jwt", rec.auth)
}

func TestDeleteForwardsConfirm(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/v1/{kind}/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "deleted",
			"impact":  map[string]any{"affected_domains": []string{"Orders"}, "cascade": true},
		})
	})
	a, _, rec := newTestAPI(t, mux)
	ctx := context.Background()

	tests := []struct {
		name      string
		call      func() (*model.DeleteResponse, error)
		wantPath  string
		wantQuery string
	}{
		{
			name:      "superdomain confirmed",
			call:      func() (*model.DeleteResponse, error) { return a.Superdomains.Delete(ctx, 3, true) },
			wantPath:  "/api/v1/superdomains/3",
			wantQuery: "confirm=true",
		},
		{
			name:      "domain unconfirmed",
			call:      func() (*model.DeleteResponse, error) { return a.Domains.Delete(ctx, 4, false) },
			wantPath:  "/api/v1/domains/4",
			wantQuery: "confirm=false",
		},
		{
			name:      "entity",
			call:      func() (*model.DeleteResponse, error) { return a.Entities.Delete(ctx, 5, true) },
			wantPath:  "/api/v1/entities/5",
			wantQuery: "confirm=true",
		},
		{
			name:     "attribute has no confirm",
			call:     func() (*model.DeleteResponse, error) { return a.Attributes.Delete(ctx, 6) },
			wantPath: "/api/v1/attributes/6",
		},
		{
			name:     "relationship",
			call:     func() (*model.DeleteResponse, error) { return a.Relationships.Delete(ctx, 7) },
			wantPath: "/api/v1/relationships/7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.call()
			require.NoError(t, err)
			assert.Equal(t, tt.wantPath, rec.path)
			assert.Equal(t, tt.wantQuery, rec.query)
			require.NotNil(t, resp.Impact)
			assert.True(t, resp.Impact.Cascade)
			assert.Equal(t, []string{"Orders"}, resp.Impact.AffectedDomains)
		})
	}
}

func TestParentFilters(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/domains", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"domains": []map[string]any{{"id": 9, "superdomain_id": 2, "name": "Orders"}}, "total": 1})
	})
	mux.HandleFunc("GET /api/v1/entities", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"entities": []map[string]any{}, "total": 0})
	})
	mux.HandleFunc("GET /api/v1/attributes", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"attributes": []map[string]any{{"id": 1, "entity_id": 4, "name": "id", "data_type": "UUID", "is_primary_key": true}}, "total": 1})
	})
	mux.HandleFunc("GET /api/v1/relationships", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "source_entity_id": 4, "target_entity_id": 5, "source_cardinality": "ONE", "target_cardinality": "ZERO_MANY"}})
	})
	a, _, rec := newTestAPI(t, mux)
	ctx := context.Background()

	domains, err := a.Domains.List(ctx, 2, model.Page{})
	require.NoError(t, err)
	assert.Equal(t, "superdomain_id=2", rec.query)
	assert.Equal(t, int64(2), domains.Domains[0].SuperdomainID)

	_, err = a.Entities.List(ctx, 0, model.Page{})
	require.NoError(t, err)
	assert.Empty(t, rec.query, "zero parent id means unfiltered")

	attrs, err := a.Attributes.List(ctx, 4, model.Page{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, "entity_id=4&limit=100", rec.query)
	assert.True(t, attrs.Attributes[0].IsPrimaryKey)

	rels, err := a.Relationships.List(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, "entity_id=4", rec.query)
	require.Len(t, rels, 1)
	assert.Equal(t, model.CardinalityZeroMany, rels[0].TargetCardinality)
}

func TestDiagramAPI_Objects(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/diagrams", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 1, "name": "Sales Overview", "tags": []string{"sales"}}})
	})
	mux.HandleFunc("POST /api/v1/diagrams/{id}/objects", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": 11, "diagram_id": 1, "object_type": "ENTITY", "object_id": 4, "position_x": 30, "position_y": 45})
	})
	mux.HandleFunc("PUT /api/v1/diagrams/{id}/objects/{objectID}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 11, "diagram_id": 1, "object_type": "ENTITY", "object_id": 4, "position_x": 60, "position_y": 90})
	})
	mux.HandleFunc("DELETE /api/v1/diagrams/{id}/objects/{objectID}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Object removed from diagram"})
	})
	a, _, rec := newTestAPI(t, mux)
	ctx := context.Background()

	diagrams, err := a.Diagrams.List(ctx, model.Page{})
	require.NoError(t, err)
	require.Len(t, diagrams, 1)
	assert.True(t, diagrams[0].HasTag("sales"))

	obj, err := a.Diagrams.AddObject(ctx, 1, model.DiagramObjectCreate{ObjectType: model.ObjectEntity, ObjectID: 4, PositionX: 30, PositionY: 45})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/diagrams/1/objects", rec.path)
	assert.Equal(t, "ENTITY", rec.body["object_type"])
	assert.Equal(t, int64(11), obj.ID)

	obj, err = a.Diagrams.UpdateObject(ctx, 1, 11, model.DiagramObjectUpdate{PositionX: model.Ptr(60.0), PositionY: model.Ptr(90.0)})
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/diagrams/1/objects/11", rec.path)
	assert.Equal(t, map[string]any{"position_x": 60.0, "position_y": 90.0}, rec.body)
	assert.Equal(t, 60.0, obj.PositionX)

	resp, err := a.Diagrams.RemoveObject(ctx, 1, 11)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Nil(t, resp.Impact)
}

func TestUpdateSendsOnlySetFields(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /api/v1/diagrams/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"id": 2, "name": "Renamed"})
	})
	a, _, rec := newTestAPI(t, mux)

	d, err := a.Diagrams.Update(context.Background(), 2, model.DiagramUpdate{Name: model.Ptr("Renamed")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", d.Name)
	assert.Equal(t, map[string]any{"name": "Renamed"}, rec.body)
}
