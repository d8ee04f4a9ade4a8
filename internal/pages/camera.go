package pages

import (
	"context"
	"errors"
	"os"

	"github.com/dberzins/camagru/internal/capture"
)

// CameraPage drives a capture session: preview, filter selection, still
// capture or file upload, and publishing the result as a post.
//
// Device failure is not fatal: the page degrades to upload-only mode, the
// same flow minus live capture.
type CameraPage struct {
	env    *Env
	engine *capture.Engine
	live   bool
	still  string
}

func NewCameraPage(env *Env) *CameraPage {
	return &CameraPage{env: env}
}

func (p *CameraPage) Init(ctx context.Context, _, _ map[string]string) error {
	p.env.printf("-- Camera --")

	p.engine = p.env.NewEngine()
	p.engine.LoadCatalog(ctx)

	if err := p.engine.Acquire(ctx); err != nil {
		if errors.Is(err, capture.ErrDeviceUnavailable) {
			p.env.printf("No camera available: upload-only mode (use: upload <file>)")
		} else {
			p.env.printf("Camera failed (%v): upload-only mode", err)
		}
	} else {
		p.live = true
		p.env.printf("Camera live.")
	}

	p.printFilters()
	p.env.printf("%s", p.Commands())
	return nil
}

// Teardown releases the device. The router runs it before the next page
// initializes, so the device handle never leaks across a navigation.
func (p *CameraPage) Teardown() {
	p.engine.Release()
}

func (p *CameraPage) Commands() string {
	return "filters | filter <id|none> | capture | upload <file> | post | open /"
}

func (p *CameraPage) printFilters() {
	p.env.printf("Filters:")
	active := p.engine.ActiveFilter()
	for _, f := range capture.Catalog() {
		marker := " "
		if f.ID == active {
			marker = "*"
		}
		p.env.printf("  %s %-16s %s", marker, f.ID, f.Label)
	}
}

func (p *CameraPage) Exec(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "filters":
		p.printFilters()
		return nil

	case "filter":
		if len(args) != 1 {
			p.env.printf("Usage: filter <id|none>")
			return nil
		}
		return p.setFilter(args[0])

	case "capture":
		return p.capture()

	case "upload":
		if len(args) != 1 {
			p.env.printf("Usage: upload <file>")
			return nil
		}
		return p.upload(args[0])

	case "post":
		return p.post(ctx)
	}
	return ErrUnknownCommand
}

func (p *CameraPage) setFilter(id string) error {
	if id == "none" {
		id = ""
	}
	if err := p.engine.SetFilter(id); err != nil {
		p.env.printf("%v", err)
		return nil
	}

	// An existing still is redrawn from its retained pre-filter pixels, so
	// switching filters replaces the overlay instead of stacking a new one.
	if raw, ok := p.engine.RawStill(); ok {
		still, err := p.engine.Recomposite(raw)
		if err != nil {
			p.env.printf("Recomposite failed: %v", err)
			return nil
		}
		p.still = still
		p.env.printf("Filter applied to the current still")
		return nil
	}

	p.env.printf("Filter selected")
	return nil
}

func (p *CameraPage) capture() error {
	if !p.live {
		p.env.printf("No live camera; use: upload <file>")
		return nil
	}

	still, err := p.engine.CaptureStill()
	if err != nil {
		p.env.printf("Capture failed: %v", err)
		return nil
	}
	p.still = still
	p.env.printf("Still captured (%d bytes). Publish with: post", len(still))
	return nil
}

func (p *CameraPage) upload(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		p.env.printf("Cannot read %s: %v", path, err)
		return nil
	}

	still, err := p.engine.ImportFile(data)
	if err != nil {
		p.env.printf("Import failed: %v", err)
		return nil
	}
	p.still = still
	p.env.printf("Image imported (%d bytes). Publish with: post", len(still))
	return nil
}

func (p *CameraPage) post(ctx context.Context) error {
	if p.still == "" {
		p.env.printf("Nothing to publish. capture or upload first")
		return nil
	}

	created, err := p.env.API.CreatePost(ctx, p.still, p.engine.ActiveFilter())
	if err != nil {
		p.env.printf("Publish failed: %v", err)
		return nil
	}

	p.still = ""
	p.env.printf("Published post %d. See it: open /", created.ID)
	return nil
}
