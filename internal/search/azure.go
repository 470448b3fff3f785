package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// azureAPIVersion pins the Azure AI Search REST API version.
	azureAPIVersion = "2023-11-01"

	// vectorField is the index field holding chunk embeddings.
	vectorField = "text_vector"
)

// AzureIndex queries an Azure AI Search index over its REST API.
type AzureIndex struct {
	endpoint   string
	apiKey     string
	index      string
	httpClient *http.Client
}

var _ Index = (*AzureIndex)(nil)

// NewAzureIndex creates a client for the given search service and index.
func NewAzureIndex(endpoint, apiKey, index string) *AzureIndex {
	return &AzureIndex{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		apiKey:   apiKey,
		index:    index,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// vectorQuery is one entry of the request's vectorQueries list.
type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	Fields string    `json:"fields"`
	K      int       `json:"k"`
}

// searchRequest is the docs/search request payload.
type searchRequest struct {
	Select        string        `json:"select"`
	VectorQueries []vectorQuery `json:"vectorQueries"`
}

// searchResponse is the docs/search response payload.
type searchResponse struct {
	Value []Document `json:"value"`
}

// Search issues a pure vector query against the index.
func (c *AzureIndex) Search(ctx context.Context, vector []float32, k int) ([]Document, error) {
	reqBody, err := json.Marshal(searchRequest{
		Select: "title, chunk",
		VectorQueries: []vectorQuery{{
			Kind:   "vector",
			Vector: vector,
			Fields: vectorField,
			K:      k,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, c.index, azureAPIVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search service error: %s - %s", resp.Status, string(body))
	}

	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("unmarshal search response: %w", err)
	}

	return result.Value, nil
}

// Close is a no-op; the client holds no persistent connection.
func (c *AzureIndex) Close(context.Context) error {
	return nil
}
