package capture

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_CopyIsIsolated(t *testing.T) {
	got := Catalog()
	require.Len(t, got, 8)
	assert.Equal(t, "fire.png", got[0].ID)

	got[0].ID = "mutated"
	assert.Equal(t, "fire.png", Catalog()[0].ID)
}

func TestLoadCatalog_ToleratesPartialFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/filters/star.png":
			http.NotFound(w, r)
		case "/filters/smile.png":
			w.Write([]byte("not a png"))
		default:
			w.Write(pngBytes(t, halvesFrame(2, 2)))
		}
	}))
	defer srv.Close()

	e := NewEngine(Options{AssetBase: srv.URL + "/filters"})
	t.Cleanup(e.Release)

	e.LoadCatalog(context.Background())

	e.mu.Lock()
	defer e.mu.Unlock()
	assert.Len(t, e.overlays, 6)
	assert.NotContains(t, e.overlays, "star.png")
	assert.NotContains(t, e.overlays, "smile.png")
	assert.Contains(t, e.overlays, "heart.png")
}

func TestLoadCatalog_SecondCallIsNoop(t *testing.T) {
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write(pngBytes(t, halvesFrame(2, 2)))
	}))
	defer srv.Close()

	e := NewEngine(Options{AssetBase: srv.URL})
	t.Cleanup(e.Release)

	e.LoadCatalog(context.Background())
	first := hits.Load()
	e.LoadCatalog(context.Background())

	assert.Equal(t, first, hits.Load())
	assert.Equal(t, int64(len(catalog)), first)
}
