package cache

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// HTTPBackend checks a remote blob store for artifacts with an HTTP HEAD
// request per hash. The request carries no body and the response body is
// never read, so the check is as cheap as the store allows.
type HTTPBackend struct {
	// BaseURL is the artifact endpoint; the hash is appended as the final
	// path segment.
	BaseURL string
	// Client defaults to http.DefaultClient. Timeouts are enforced by the
	// probe's context, not here.
	Client *http.Client
}

// Exists implements Backend over HTTP. 200 means present, 404 means absent,
// anything else is an error for the probe to absorb.
func (b *HTTPBackend) Exists(ctx context.Context, hash string) (bool, error) {
	url := strings.TrimSuffix(b.BaseURL, "/") + "/" + hash
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build remote cache request: %w", err)
	}

	client := b.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("remote cache check failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, fmt.Errorf("remote cache returned unexpected status %d", resp.StatusCode)
	}
}
