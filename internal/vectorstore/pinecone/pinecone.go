// Package pinecone is a minimal REST client to a Pinecone serverless index,
// implementing the core.VectorStore contract with namespaces.
package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/docsmith-ai/docsmith/internal/core"
)

const defaultControlURL = "https://api.pinecone.io"

type Config struct {
	APIKey    string
	IndexName string
	Cloud     string // serverless cloud, e.g. "aws"
	Region    string // serverless region, e.g. "us-east-1"
	Timeout   time.Duration

	// ControlURL overrides the control-plane endpoint; tests point it at a
	// local server.
	ControlURL string
}

// Client talks to the control plane to resolve the index host and to the data
// plane for everything else. EnsureIndex must succeed before the data-plane
// calls are usable.
type Client struct {
	apiKey     string
	indexName  string
	cloud      string
	region     string
	controlURL string
	host       string // data-plane base URL, resolved by EnsureIndex
	client     *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	controlURL := cfg.ControlURL
	if controlURL == "" {
		controlURL = defaultControlURL
	}
	return &Client{
		apiKey:     cfg.APIKey,
		indexName:  cfg.IndexName,
		cloud:      cfg.Cloud,
		region:     cfg.Region,
		controlURL: controlURL,
		client:     &http.Client{Timeout: timeout},
	}
}

type indexDescription struct {
	Name string `json:"name"`
	Host string `json:"host"`
}

// EnsureIndex creates the index only if it is absent; a second call with the
// same parameters is a no-op. It also resolves the index host used by every
// data-plane call.
func (c *Client) EnsureIndex(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}

	var desc indexDescription
	describeURL := fmt.Sprintf("%s/indexes/%s", c.controlURL, url.PathEscape(c.indexName))
	status, err := c.do(ctx, http.MethodGet, describeURL, nil, &desc)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		body := map[string]any{
			"name":      c.indexName,
			"dimension": dimension,
			"metric":    "cosine",
			"spec": map[string]any{
				"serverless": map[string]any{
					"cloud":  c.cloud,
					"region": c.region,
				},
			},
		}
		createURL := fmt.Sprintf("%s/indexes", c.controlURL)
		if status, err = c.do(ctx, http.MethodPost, createURL, body, &desc); err != nil {
			return err
		}
		if status >= 300 {
			return fmt.Errorf("create index %s: status %d", c.indexName, status)
		}
	} else if status >= 300 {
		return fmt.Errorf("describe index %s: status %d", c.indexName, status)
	}

	if desc.Host == "" {
		return fmt.Errorf("index %s: control plane returned no host", c.indexName)
	}
	if strings.HasPrefix(desc.Host, "http://") || strings.HasPrefix(desc.Host, "https://") {
		c.host = desc.Host
	} else {
		c.host = "https://" + desc.Host
	}
	return nil
}

type upsertRequest struct {
	Vectors   []core.VectorRecord `json:"vectors"`
	Namespace string              `json:"namespace"`
}

// Upsert pushes every record into the namespace, overwriting existing ids.
func (c *Client) Upsert(ctx context.Context, namespace string, records []core.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := c.requireHost(); err != nil {
		return err
	}
	body := upsertRequest{Vectors: records, Namespace: namespace}
	status, err := c.do(ctx, http.MethodPost, c.host+"/vectors/upsert", body, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("upsert %d records to namespace %q: status %d", len(records), namespace, status)
	}
	return nil
}

type listResponse struct {
	Vectors []struct {
		ID string `json:"id"`
	} `json:"vectors"`
	Pagination struct {
		Next string `json:"next"`
	} `json:"pagination"`
}

// ListIDs pages through every id in the namespace.
func (c *Client) ListIDs(ctx context.Context, namespace string) ([]string, error) {
	if err := c.requireHost(); err != nil {
		return nil, err
	}
	var (
		ids   []string
		token string
	)
	for {
		q := url.Values{}
		q.Set("namespace", namespace)
		if token != "" {
			q.Set("paginationToken", token)
		}
		var page listResponse
		status, err := c.do(ctx, http.MethodGet, c.host+"/vectors/list?"+q.Encode(), nil, &page)
		if err != nil {
			return nil, err
		}
		if status >= 300 {
			return nil, fmt.Errorf("list ids in namespace %q: status %d", namespace, status)
		}
		for _, v := range page.Vectors {
			ids = append(ids, v.ID)
		}
		token = page.Pagination.Next
		if token == "" {
			return ids, nil
		}
	}
}

type deleteRequest struct {
	IDs       []string `json:"ids,omitempty"`
	DeleteAll bool     `json:"deleteAll,omitempty"`
	Namespace string   `json:"namespace"`
}

func (c *Client) Delete(ctx context.Context, namespace string, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return c.delete(ctx, deleteRequest{IDs: ids, Namespace: namespace})
}

// DeleteAll wipes every record in the namespace. Irreversible.
func (c *Client) DeleteAll(ctx context.Context, namespace string) error {
	return c.delete(ctx, deleteRequest{DeleteAll: true, Namespace: namespace})
}

func (c *Client) delete(ctx context.Context, req deleteRequest) error {
	if err := c.requireHost(); err != nil {
		return err
	}
	status, err := c.do(ctx, http.MethodPost, c.host+"/vectors/delete", req, nil)
	if err != nil {
		return err
	}
	if status >= 300 {
		return fmt.Errorf("delete in namespace %q: status %d", req.Namespace, status)
	}
	return nil
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []core.VectorMatch `json:"matches"`
}

func (c *Client) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]core.VectorMatch, error) {
	if err := c.requireHost(); err != nil {
		return nil, err
	}
	body := queryRequest{Vector: vector, TopK: topK, Namespace: namespace, IncludeMetadata: true}
	var resp queryResponse
	status, err := c.do(ctx, http.MethodPost, c.host+"/query", body, &resp)
	if err != nil {
		return nil, err
	}
	if status >= 300 {
		return nil, fmt.Errorf("query namespace %q: status %d", namespace, status)
	}
	return resp.Matches, nil
}

func (c *Client) requireHost() error {
	if c.host == "" {
		return errors.New("index host not resolved: call EnsureIndex first")
	}
	return nil
}

// do sends a JSON request and decodes a JSON response into out when non-nil.
// The HTTP status is returned for the caller to interpret; only transport and
// decode failures are errors here.
func (c *Client) do(ctx context.Context, method, rawURL string, body, out any) (int, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, payload)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decode response from %s: %w", rawURL, err)
		}
	}
	return resp.StatusCode, nil
}

var _ core.VectorStore = (*Client)(nil)
