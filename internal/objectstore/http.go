package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/uzzysan/Klauzule-zakazane/internal/util"
)

// HTTPStore fetches uploads by URL, for deployments where documents live
// behind a presigned-URL gateway.
type HTTPStore struct {
	client *http.Client
}

func NewHTTPStore() *HTTPStore {
	return &HTTPStore{client: &http.Client{Timeout: 60 * time.Second}}
}

func (s *HTTPStore) Download(ctx context.Context, location string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build object request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch object %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", util.ErrObjectNotFound, location)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch object %s: status %d", location, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object body: %w", err)
	}
	return data, nil
}
