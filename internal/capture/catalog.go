package capture

import (
	"context"
	"sync"

	"github.com/dberzins/camagru/internal/netx"
)

// Filter is one entry of the fixed overlay catalog.
type Filter struct {
	ID    string // asset filename under the filters path
	Label string
}

// The catalog is a compile-time product decision, not server-discovered.
var catalog = []Filter{
	{ID: "fire.png", Label: "Fire"},
	{ID: "thumbs-up.png", Label: "Thumbs Up"},
	{ID: "camera.png", Label: "Camera"},
	{ID: "lightning.png", Label: "Lightning"},
	{ID: "cool.png", Label: "Cool"},
	{ID: "heart.png", Label: "Heart"},
	{ID: "star.png", Label: "Star"},
	{ID: "smile.png", Label: "Smile"},
}

// Catalog returns the ordered filter list.
func Catalog() []Filter {
	out := make([]Filter, len(catalog))
	copy(out, catalog)
	return out
}

func knownFilter(id string) bool {
	for _, f := range catalog {
		if f.ID == id {
			return true
		}
	}
	return false
}

// LoadCatalog fetches and decodes every catalog overlay from the asset
// endpoint. Entries are independent: a failed fetch or decode is logged,
// left out of the cache for the lifetime of this engine, and never aborts
// the rest. Completion order is unspecified. Calling LoadCatalog again after
// it has run is a no-op.
func (e *Engine) LoadCatalog(ctx context.Context) {
	e.mu.Lock()
	if e.catalogLoaded {
		e.mu.Unlock()
		return
	}
	e.catalogLoaded = true
	e.mu.Unlock()

	var wg sync.WaitGroup
	for _, f := range catalog {
		wg.Add(1)
		go func(f Filter) {
			defer wg.Done()

			data, err := netx.FetchBytes(ctx, e.httpc, e.assetBase+"/"+f.ID)
			if err != nil {
				e.logger.Warn(ctx, "filter overlay fetch failed", "filter", f.ID, "error", err)
				return
			}
			img, err := decodeImage(data)
			if err != nil {
				e.logger.Warn(ctx, "filter overlay decode failed", "filter", f.ID, "error", err)
				return
			}

			e.mu.Lock()
			e.overlays[f.ID] = img
			e.mu.Unlock()
		}(f)
	}
	wg.Wait()
}
