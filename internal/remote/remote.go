package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"tobewise-cli/internal/model"
)

// Source is the remote document collection the sync importer reads
// from. No pagination contract is assumed; FetchAll reads the entire
// collection each sync.
type Source interface {
	FetchAll(ctx context.Context, collection string) ([]model.Document, error)
}

// HTTPSource fetches a collection as a JSON array of documents from
// <baseURL>/<collection>.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

func (s *HTTPSource) FetchAll(ctx context.Context, collection string) ([]model.Document, error) {
	endpoint, err := url.JoinPath(s.baseURL, collection)
	if err != nil {
		return nil, fmt.Errorf("failed to build collection URL: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection %q: %w", collection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("collection %q fetch returned status %d", collection, resp.StatusCode)
	}

	var docs []model.Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("failed to decode collection %q: %w", collection, err)
	}
	return docs, nil
}
