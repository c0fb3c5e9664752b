package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/typesense/typesense-go/v3/typesense"
	"github.com/typesense/typesense-go/v3/typesense/api"
	"github.com/typesense/typesense-go/v3/typesense/api/pointer"

	"github.com/rentaldesk/searchsync/internal/errors"
	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
)

// defaultQueryBy is searched when a query names no fields.
const defaultQueryBy = "name,category,tags,nameNormalized,categoryNormalized"

// TypesenseClient implements Client on top of the typesense-go SDK.
type TypesenseClient struct {
	client         *typesense.Client
	requestTimeout time.Duration
}

// NewTypesenseClient creates a Typesense client. Typesense only supports API key
// authentication; basic credentials are ignored.
func NewTypesenseClient(cfg Config) *TypesenseClient {
	cfg.Backend = BackendTypesense

	opts := []typesense.ClientOption{
		typesense.WithServer(cfg.BaseURL()),
		typesense.WithAPIKey(cfg.APIKey),
	}
	if cfg.ConnectTimeout > 0 {
		opts = append(opts, typesense.WithConnectionTimeout(cfg.ConnectTimeout))
	}

	return &TypesenseClient{
		client:         typesense.NewClient(opts...),
		requestTimeout: cfg.RequestTimeout,
	}
}

// Backend returns "typesense".
func (c *TypesenseClient) Backend() string {
	return BackendTypesense
}

// Ping calls the health endpoint and requires it to report ok.
func (c *TypesenseClient) Ping(ctx context.Context) error {
	timeout := c.requestTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ok, err := c.client.Health(ctx, timeout)
	if err != nil {
		return typesenseError("health", err)
	}
	if !ok {
		return &StatusError{
			Backend:    BackendTypesense,
			Operation:  "health",
			StatusCode: http.StatusServiceUnavailable,
			Body:       "node is not ready",
		}
	}
	return nil
}

// EnsureSchema creates the collection when it is absent.
func (c *TypesenseClient) EnsureSchema(ctx context.Context, name string) error {
	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	_, err := c.client.Collection(name).Retrieve(ctx)
	if err == nil {
		return nil
	}
	if err := typesenseError("retrieve collection", err); statusOf(err) != http.StatusNotFound {
		return err
	}

	_, err = c.client.Collections().Create(ctx, typesenseCollectionSchema(name))
	err = typesenseError("create collection", err)
	// 409 means another process created it first.
	if statusOf(err) == http.StatusConflict {
		return nil
	}
	return err
}

// Upsert creates or replaces doc through a one document import, so single and
// bulk writes share one code path and error shape.
func (c *TypesenseClient) Upsert(ctx context.Context, name string, doc *searchDomain.SearchDocument) error {
	result, err := c.BulkUpsert(ctx, name, []*searchDomain.SearchDocument{doc})
	if err != nil {
		return err
	}
	if failed := result.FailedItems(); len(failed) > 0 {
		return &StatusError{
			Backend:    BackendTypesense,
			Operation:  "upsert document",
			StatusCode: http.StatusBadRequest,
			Body:       failed[0].Error,
		}
	}
	return nil
}

// BulkUpsert imports docs with the upsert action. Typesense reports one result
// per document, in input order.
func (c *TypesenseClient) BulkUpsert(
	ctx context.Context,
	name string,
	docs []*searchDomain.SearchDocument,
) (searchDomain.BulkResult, error) {
	if len(docs) == 0 {
		return searchDomain.BulkResult{}, nil
	}

	documents := make([]interface{}, len(docs))
	for i, doc := range docs {
		documents[i] = doc
	}

	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	action := api.Upsert
	lines, err := c.client.Collection(name).Documents().Import(ctx, documents, &api.ImportDocumentsParams{
		Action:    &action,
		BatchSize: pointer.Int(len(documents)),
	})
	if err != nil {
		return searchDomain.BulkResult{}, typesenseError("import documents", err)
	}

	result := searchDomain.BulkResult{Items: make([]searchDomain.ItemResult, len(docs))}
	for i, doc := range docs {
		item := searchDomain.ItemResult{ID: doc.ID, Error: "missing from import response"}
		if i < len(lines) && lines[i] != nil {
			item.OK = lines[i].Success
			item.Error = ""
			if !item.OK {
				item.Error = lines[i].Error
			}
		}
		result.Items[i] = item
	}
	return result, nil
}

// Delete removes a document. A missing document is not an error.
func (c *TypesenseClient) Delete(ctx context.Context, name, id string) error {
	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	_, err := c.client.Collection(name).Document(id).Delete(ctx)
	return ignoreNotFound(typesenseError("delete document", err))
}

// DeleteSchema drops the collection. A missing collection is not an error.
func (c *TypesenseClient) DeleteSchema(ctx context.Context, name string) error {
	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	_, err := c.client.Collection(name).Delete(ctx)
	return ignoreNotFound(typesenseError("delete collection", err))
}

// Search runs query against the collection. query holds Typesense search
// parameters ({"q": "...", "query_by": "..."}); q defaults to "*" and query_by
// to the text fields of the schema.
func (c *TypesenseClient) Search(ctx context.Context, name string, query json.RawMessage) (json.RawMessage, error) {
	fields := map[string]any{}
	if len(bytes.TrimSpace(query)) > 0 {
		if err := json.Unmarshal(query, &fields); err != nil {
			return nil, fmt.Errorf("typesense: decode query: %w", err)
		}
	}
	if _, ok := fields["q"]; !ok {
		fields["q"] = "*"
	}
	if _, ok := fields["query_by"]; !ok {
		fields["query_by"] = defaultQueryBy
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("typesense: encode query: %w", err)
	}
	var params api.SearchCollectionParams
	if err := json.Unmarshal(encoded, &params); err != nil {
		return nil, fmt.Errorf("typesense: decode query: %w", err)
	}

	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	result, err := c.client.Collection(name).Documents().Search(ctx, &params)
	if err != nil {
		return nil, typesenseError("search", err)
	}

	body, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("typesense: encode search response: %w", err)
	}
	return json.RawMessage(body), nil
}

// typesenseError maps an SDK error to a StatusError when Typesense answered and
// to a transport error otherwise.
func typesenseError(operation string, err error) error {
	if err == nil {
		return nil
	}
	var httpErr *typesense.HTTPError
	if errors.As(err, &httpErr) {
		return backendError(BackendTypesense, operation, httpErr.Status, fmt.Errorf("%s", httpErr.Body))
	}
	return backendError(BackendTypesense, operation, 0, err)
}

func ignoreNotFound(err error) error {
	if statusOf(err) == http.StatusNotFound {
		return nil
	}
	return err
}

// typesenseCollectionSchema returns the inventory collection definition. The id
// field is implicit in Typesense.
func typesenseCollectionSchema(name string) *api.CollectionSchema {
	vietnamese := pointer.String("vi")
	return &api.CollectionSchema{
		Name:                name,
		DefaultSortingField: pointer.String("updatedAt"),
		EnableNestedFields:  pointer.True(),
		Fields: []api.Field{
			{Name: "formattedId", Type: "string"},
			{Name: "name", Type: "string", Locale: vietnamese},
			{Name: "category", Type: "string", Facet: pointer.True(), Locale: vietnamese},
			{Name: "tags", Type: "string[]", Facet: pointer.True(), Locale: vietnamese},
			{Name: "sizes", Type: "object[]", Optional: pointer.True()},
			{Name: "imageUrl", Type: "string", Optional: pointer.True(), Index: pointer.False()},
			{Name: "createdAt", Type: "int64", Sort: pointer.True()},
			{Name: "updatedAt", Type: "int64", Sort: pointer.True()},
			{Name: "nameNormalized", Type: "string"},
			{Name: "categoryNormalized", Type: "string"},
			{Name: "description", Type: "string", Optional: pointer.True()},
		},
	}
}
