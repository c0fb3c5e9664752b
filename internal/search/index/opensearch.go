package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"

	searchDomain "github.com/rentaldesk/searchsync/internal/search/domain"
)

// OpenSearchClient implements Client on top of the opensearch-go SDK.
type OpenSearchClient struct {
	api            *opensearchapi.Client
	requestTimeout time.Duration
}

// NewOpenSearchClient creates an OpenSearch client. An API key takes precedence
// over basic credentials. SDK retries are disabled: the sync use case owns the
// retry budget.
func NewOpenSearchClient(cfg Config) (*OpenSearchClient, error) {
	cfg.Backend = BackendOpenSearch

	clientCfg := opensearch.Config{
		Addresses:    []string{cfg.BaseURL()},
		Transport:    cfg.transport(),
		DisableRetry: true,
	}
	switch {
	case cfg.APIKey != "":
		clientCfg.Header = http.Header{"Authorization": []string{"ApiKey " + cfg.APIKey}}
	case cfg.Username != "":
		clientCfg.Username = cfg.Username
		clientCfg.Password = cfg.Password
	}

	api, err := opensearchapi.NewClient(opensearchapi.Config{Client: clientCfg})
	if err != nil {
		return nil, fmt.Errorf("opensearch: create client: %w", err)
	}
	return &OpenSearchClient{api: api, requestTimeout: cfg.RequestTimeout}, nil
}

// Backend returns "opensearch".
func (c *OpenSearchClient) Backend() string {
	return BackendOpenSearch
}

// Ping checks the cluster root answers.
func (c *OpenSearchClient) Ping(ctx context.Context) error {
	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.api.Ping(ctx, nil)
	return openSearchError("ping", resp, err)
}

// EnsureSchema creates the index with the inventory mapping when it is absent.
func (c *OpenSearchClient) EnsureSchema(ctx context.Context, name string) error {
	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	exists, err := c.api.Indices.Exists(ctx, opensearchapi.IndicesExistsReq{Indices: []string{name}})
	switch status := responseStatus(exists); {
	case status == http.StatusOK:
		return nil
	case status != http.StatusNotFound:
		return openSearchError("index exists", exists, err)
	}

	mapping, err := json.Marshal(openSearchIndexDefinition())
	if err != nil {
		return fmt.Errorf("opensearch: marshal mapping: %w", err)
	}

	created, err := c.api.Indices.Create(ctx, opensearchapi.IndicesCreateReq{
		Index: name,
		Body:  bytes.NewReader(mapping),
	})
	// Another process created the index between the check and the create.
	if err != nil && strings.Contains(err.Error(), "resource_already_exists_exception") {
		return nil
	}
	return openSearchError("create index", rawResponse(created), err)
}

// Upsert indexes doc under its id, replacing any previous version.
func (c *OpenSearchClient) Upsert(ctx context.Context, name string, doc *searchDomain.SearchDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("opensearch: marshal document: %w", err)
	}

	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.api.Index(ctx, opensearchapi.IndexReq{
		Index:      name,
		DocumentID: doc.ID,
		Body:       bytes.NewReader(body),
	})
	return openSearchError("index document", rawResponse(resp), err)
}

// BulkUpsert sends docs through the _bulk endpoint and maps each response item
// back to its document.
func (c *OpenSearchClient) BulkUpsert(
	ctx context.Context,
	name string,
	docs []*searchDomain.SearchDocument,
) (searchDomain.BulkResult, error) {
	if len(docs) == 0 {
		return searchDomain.BulkResult{}, nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		if err := enc.Encode(openSearchBulkAction{Index: openSearchBulkMeta{ID: doc.ID}}); err != nil {
			return searchDomain.BulkResult{}, fmt.Errorf("opensearch: encode bulk action: %w", err)
		}
		if err := enc.Encode(doc); err != nil {
			return searchDomain.BulkResult{}, fmt.Errorf("opensearch: encode document: %w", err)
		}
	}

	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.api.Bulk(ctx, opensearchapi.BulkReq{Index: name, Body: &buf})
	if err := openSearchError("bulk", rawResponse(resp), err); err != nil {
		return searchDomain.BulkResult{}, err
	}

	result := searchDomain.BulkResult{Items: make([]searchDomain.ItemResult, len(docs))}
	for i, doc := range docs {
		item := searchDomain.ItemResult{ID: doc.ID, Error: "missing from bulk response"}
		if outcome, ok := bulkOutcome(resp, i); ok {
			item.OK = outcome.Status >= 200 && outcome.Status < 300 && outcome.Error == nil
			item.Error = ""
			if !item.OK {
				item.Error = fmt.Sprintf("status %d", outcome.Status)
				if outcome.Error != nil {
					item.Error = strings.TrimSpace(outcome.Error.Type + ": " + outcome.Error.Reason)
				}
			}
		}
		result.Items[i] = item
	}
	return result, nil
}

// Delete removes a document. A missing document is not an error.
func (c *OpenSearchClient) Delete(ctx context.Context, name, id string) error {
	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.api.Document.Delete(ctx, opensearchapi.DocumentDeleteReq{Index: name, DocumentID: id})
	return openSearchError("delete document", rawResponse(resp), err, http.StatusNotFound)
}

// DeleteSchema drops the index. A missing index is not an error.
func (c *OpenSearchClient) DeleteSchema(ctx context.Context, name string) error {
	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.api.Indices.Delete(ctx, opensearchapi.IndicesDeleteReq{Indices: []string{name}})
	return openSearchError("delete index", rawResponse(resp), err, http.StatusNotFound)
}

// Search runs query against the index and returns the response body.
func (c *OpenSearchClient) Search(ctx context.Context, name string, query json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(query)) == 0 {
		query = json.RawMessage(`{"query":{"match_all":{}}}`)
	}

	ctx, cancel := withRequestTimeout(ctx, c.requestTimeout)
	defer cancel()

	resp, err := c.api.Search(ctx, &opensearchapi.SearchReq{
		Indices: []string{name},
		Body:    bytes.NewReader(query),
	})
	if err := openSearchError("search", rawResponse(resp), err); err != nil {
		return nil, err
	}

	// The SDK keeps the body readable after decoding; fall back to the decoded
	// form when it does not.
	if raw := rawResponse(resp); raw != nil && raw.Body != nil {
		if body, err := io.ReadAll(raw.Body); err == nil && json.Valid(body) {
			return json.RawMessage(body), nil
		}
	}
	body, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("opensearch: encode search response: %w", err)
	}
	return json.RawMessage(body), nil
}

// openSearchError maps an SDK result to nil, a StatusError or a transport
// error. Statuses listed in allowed count as success.
func openSearchError(operation string, resp *opensearch.Response, err error, allowed ...int) error {
	status := responseStatus(resp)
	if slices.Contains(allowed, status) {
		return nil
	}
	return backendError(BackendOpenSearch, operation, status, err)
}

func responseStatus(resp *opensearch.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode
}

// rawResponse returns the HTTP response behind a typed SDK response, if any.
func rawResponse[R any, P interface {
	*R
	Inspect() opensearchapi.Inspect
}](resp P) *opensearch.Response {
	if resp == nil {
		return nil
	}
	return resp.Inspect().Response
}

func bulkOutcome(resp *opensearchapi.BulkResp, i int) (opensearchapi.BulkRespItem, bool) {
	if resp == nil || i >= len(resp.Items) {
		return opensearchapi.BulkRespItem{}, false
	}
	outcome, ok := resp.Items[i]["index"]
	return outcome, ok
}

type openSearchBulkAction struct {
	Index openSearchBulkMeta `json:"index"`
}

type openSearchBulkMeta struct {
	ID string `json:"_id"`
}

// openSearchIndexDefinition returns the settings and mapping of the inventory index.
// Text fields go through an ASCII folding analyzer so "ao dai" matches "Áo Dài".
func openSearchIndexDefinition() map[string]any {
	folded := func() map[string]any {
		return map[string]any{
			"type":     "text",
			"analyzer": "folding",
			"fields": map[string]any{
				"keyword": map[string]any{"type": "keyword", "ignore_above": 256},
			},
		}
	}

	return map[string]any{
		"settings": map[string]any{
			"analysis": map[string]any{
				"analyzer": map[string]any{
					"folding": map[string]any{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding"},
					},
				},
			},
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				"id":          map[string]any{"type": "keyword"},
				"formattedId": map[string]any{"type": "keyword"},
				"name":        folded(),
				"category":    folded(),
				"tags":        folded(),
				"sizes": map[string]any{
					"type": "nested",
					"properties": map[string]any{
						"title":    map[string]any{"type": "keyword"},
						"quantity": map[string]any{"type": "long"},
						"onHand":   map[string]any{"type": "long"},
						"price":    map[string]any{"type": "long"},
					},
				},
				"imageUrl":           map[string]any{"type": "keyword", "index": false},
				"createdAt":          map[string]any{"type": "long"},
				"updatedAt":          map[string]any{"type": "long"},
				"nameNormalized":     map[string]any{"type": "keyword"},
				"categoryNormalized": map[string]any{"type": "keyword"},
				"description":        map[string]any{"type": "text", "analyzer": "folding"},
			},
		},
	}
}
