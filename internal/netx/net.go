package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// FetchBytes downloads url and returns the response body. Any non-200 status
// is an error carrying the status line, so callers can log what the server
// said without parsing the body.
func FetchBytes(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s failed: %s", url, resp.Status)
	}

	return io.ReadAll(resp.Body)
}
