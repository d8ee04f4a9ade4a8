// Package api is the client's gateway to the backend REST API. It attaches
// the bearer token to outbound requests, decodes the response envelope into
// an explicit ok/error result, and handles authentication failure centrally.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dberzins/camagru/internal/logging"
	"github.com/dberzins/camagru/internal/session"
)

// Gateway issues authenticated requests against the backend.
//
// 401 policy: when a token is present the session is treated as expired and
// cleared; user-initiated calls additionally fire OnUnauthorized (wired to a
// login redirect), while probe calls fail silently. When no token is present
// there is nothing to clear and the caller just gets ErrUnauthorized.
type Gateway struct {
	baseURL string
	httpc   *http.Client
	store   *session.Store
	logger  logging.Logger

	// OnUnauthorized runs after the session has been cleared because a
	// user-initiated call was rejected. Optional.
	OnUnauthorized func()
}

func New(baseURL string, client *http.Client, store *session.Store, logger logging.Logger) *Gateway {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   client,
		store:   store,
		logger:  logger.With("component", "api"),
	}
}

// BaseURL returns the backend base URL the gateway was built with.
func (g *Gateway) BaseURL() string { return g.baseURL }

// ImageURL resolves a post's image path to an absolute URL.
func (g *Gateway) ImageURL(imagePath string) string {
	if imagePath == "" {
		return ""
	}
	if strings.HasPrefix(imagePath, "http") {
		return imagePath
	}
	return g.baseURL + "/" + strings.TrimLeft(imagePath, "/")
}

// envelope is the uniform backend response shape.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// do performs one request. body (when non-nil) is JSON-encoded; on success
// the envelope's data field is decoded into out (when non-nil). probe marks
// session-probe calls, which never trigger the unauthorized redirect hook.
func (g *Gateway) do(ctx context.Context, method, path string, body, out any, probe bool) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	token := g.store.Token()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := g.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return g.handleUnauthorized(ctx, method, path, token, probe)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode >= 400 {
			return &Error{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		}
		return fmt.Errorf("decode response: %w", err)
	}

	if resp.StatusCode >= 400 || !env.Success {
		return &Error{Status: resp.StatusCode, Message: env.Message}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode response data: %w", err)
		}
	}
	return nil
}

func (g *Gateway) handleUnauthorized(ctx context.Context, method, path, token string, probe bool) error {
	if token == "" {
		return ErrUnauthorized
	}

	g.logger.Info(ctx, "session rejected, clearing auth", "method", method, "path", path, "probe", probe)
	if err := g.store.ClearAuth(ctx); err != nil {
		g.logger.Error(ctx, "failed to clear session", "error", err)
	}
	if !probe && g.OnUnauthorized != nil {
		g.OnUnauthorized()
	}
	return ErrSessionExpired
}
