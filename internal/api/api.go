// Package api maps each REST endpoint of the modeling service to one typed
// call. The functions are stateless: all session state lives in the
// transport's token store.
package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"dd-go/internal/model"
)

// Doer is the transport capability every resource API needs.
type Doer interface {
	Do(ctx context.Context, method, path string, query url.Values, in, out any) error
}

// API groups the resource APIs that share one transport.
type API struct {
	Auth          *AuthAPI
	Superdomains  *SuperdomainAPI
	Domains       *DomainAPI
	Entities      *EntityAPI
	Attributes    *AttributeAPI
	Relationships *RelationshipAPI
	Diagrams      *DiagramAPI
}

// New creates all resource APIs on top of client. tokens receives the token
// issued by login and register.
func New(client Doer, tokens TokenWriter) *API {
	return &API{
		Auth:          &AuthAPI{client: client, tokens: tokens},
		Superdomains:  &SuperdomainAPI{client: client},
		Domains:       &DomainAPI{client: client},
		Entities:      &EntityAPI{client: client},
		Attributes:    &AttributeAPI{client: client},
		Relationships: &RelationshipAPI{client: client},
		Diagrams:      &DiagramAPI{client: client},
	}
}

// pageQuery adds skip/limit to q. Zero values are left to the server default.
func pageQuery(q url.Values, page model.Page) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if page.Skip > 0 {
		q.Set("skip", strconv.Itoa(page.Skip))
	}
	if page.Limit > 0 {
		q.Set("limit", strconv.Itoa(page.Limit))
	}
	return q
}

// parentQuery filters a list by parent id. Zero means unfiltered.
func parentQuery(key string, id int64, page model.Page) url.Values {
	q := url.Values{}
	if id != 0 {
		q.Set(key, strconv.FormatInt(id, 10))
	}
	return pageQuery(q, page)
}

func confirmQuery(confirm bool) url.Values {
	return url.Values{"confirm": []string{strconv.FormatBool(confirm)}}
}

func itemPath(collection string, id int64) string {
	return fmt.Sprintf("/%s/%d", collection, id)
}
