// Package capture owns the capture device, the live composited preview, and
// still-image export. One Engine corresponds to one capture session: once
// released it is terminal and a new Engine must be constructed to use the
// device again.
package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dberzins/camagru/internal/logging"
)

// State is the capture session lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateAcquiring
	StatePreviewing
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateAcquiring:
		return "acquiring"
	case StatePreviewing:
		return "previewing"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

var (
	// ErrNoDevice is returned by still capture when no device is live.
	ErrNoDevice = errors.New("no active capture device")

	// ErrAlreadyAcquired is returned by Acquire outside Uninitialized.
	ErrAlreadyAcquired = errors.New("capture session already started")

	// ErrUnknownFilter is returned for filter ids outside the catalog.
	ErrUnknownFilter = errors.New("unknown filter")

	// ErrNoStill is returned by Recomposite when it has nothing to redraw.
	ErrNoStill = errors.New("no still image to recomposite")
)

const defaultFrameInterval = 33 * time.Millisecond

// Options configures an Engine.
type Options struct {
	// AssetBase is the URL prefix the filter overlays are served under.
	AssetBase string
	// Opener acquires the capture device.
	Opener Opener
	// HTTPClient fetches overlay assets; nil means http.DefaultClient.
	HTTPClient *http.Client
	// FrameInterval is the preview tick period; zero means ~30fps.
	FrameInterval time.Duration
	Logger        logging.Logger
}

// Engine mediates the capture device and maintains the composited preview
// surface. All drawing happens under mu; the render loop is a single
// goroutine, so ticks never overlap and cancellation guarantees no further
// frames are drawn.
type Engine struct {
	mu            sync.Mutex
	state         State
	opener        Opener
	device        Device
	surface       *image.RGBA
	raw           *image.RGBA // last still source before the overlay was applied
	overlays      map[string]image.Image
	catalogLoaded bool
	active        string

	assetBase     string
	httpc         *http.Client
	frameInterval time.Duration
	logger        logging.Logger

	stop chan struct{}
	done chan struct{}
}

func NewEngine(opts Options) *Engine {
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = defaultFrameInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	opener := opts.Opener
	if opener == nil {
		opener = func(ctx context.Context, c Constraints) (Device, error) {
			return nil, ErrDeviceUnavailable
		}
	}
	return &Engine{
		opener:        opener,
		overlays:      make(map[string]image.Image),
		assetBase:     strings.TrimRight(opts.AssetBase, "/"),
		httpc:         opts.HTTPClient,
		frameInterval: interval,
		logger:        logger.With("component", "capture"),
	}
}

// State returns the current lifecycle state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Acquire requests exclusive access to a front-facing device at the preferred
// resolution, blocks until the first frame's dimensions are known, sizes the
// preview surface to match exactly, and starts the preview loop.
//
// A device failure is recoverable: the engine returns to Uninitialized so
// file import still works.
func (e *Engine) Acquire(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateUninitialized {
		e.mu.Unlock()
		return ErrAlreadyAcquired
	}
	e.state = StateAcquiring
	e.mu.Unlock()

	dev, err := e.opener(ctx, Constraints{Width: 640, Height: 480, FacingFront: true})
	if err != nil {
		e.mu.Lock()
		e.state = StateUninitialized
		e.mu.Unlock()
		return fmt.Errorf("acquire device: %w", err)
	}

	frame, err := dev.Frame()
	if err != nil {
		_ = dev.Close()
		e.mu.Lock()
		e.state = StateUninitialized
		e.mu.Unlock()
		return fmt.Errorf("first frame: %w", err)
	}

	e.mu.Lock()
	if e.state != StateAcquiring {
		// Released while acquiring.
		e.mu.Unlock()
		_ = dev.Close()
		return ErrNoDevice
	}
	e.device = dev
	b := frame.Bounds()
	e.surface = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	drawFrameMirrored(e.surface, frame)
	e.composeOverlayLocked()
	e.state = StatePreviewing
	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	e.mu.Unlock()

	go e.renderLoop()

	e.logger.Debug(ctx, "device acquired", "width", b.Dx(), "height", b.Dy())
	return nil
}

// renderLoop redraws the preview once per tick until cancelled. It is the
// only writer besides the still-export paths, and both run under mu, so a
// tick never executes concurrently with itself or with an export.
func (e *Engine) renderLoop() {
	defer close(e.done)

	ticker := time.NewTicker(e.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.renderTick()
		}
	}
}

func (e *Engine) renderTick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePreviewing {
		return
	}
	frame, err := e.device.Frame()
	if err != nil {
		return
	}
	drawFrameMirrored(e.surface, frame)
	e.composeOverlayLocked()
}

// composeOverlayLocked draws the active filter's overlay, when present in the
// cache, centered over the surface. An active filter whose overlay failed to
// decode has no visual effect.
func (e *Engine) composeOverlayLocked() {
	if e.active == "" {
		return
	}
	overlay, ok := e.overlays[e.active]
	if !ok {
		return
	}
	drawOverlayCentered(e.surface, overlay)
}

// SetFilter selects the active filter ("" for none). Pure state change: it
// takes effect on the next rendered frame and costs no I/O.
func (e *Engine) SetFilter(id string) error {
	if id != "" && !knownFilter(id) {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, id)
	}
	e.mu.Lock()
	e.active = id
	e.mu.Unlock()
	return nil
}

// ActiveFilter returns the currently selected filter id, "" for none.
func (e *Engine) ActiveFilter() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// CaptureStill synchronously draws the current device frame (mirrored, with
// the active overlay) into the surface and serializes it as a PNG data URI.
// The pre-overlay pixels are retained for later recompositing.
func (e *Engine) CaptureStill() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StatePreviewing {
		return "", ErrNoDevice
	}

	frame, err := e.device.Frame()
	if err != nil {
		return "", fmt.Errorf("capture frame: %w", err)
	}

	drawFrameMirrored(e.surface, frame)
	e.raw = cloneRGBA(e.surface)
	e.composeOverlayLocked()

	return encodeDataURI(e.surface)
}

// RawStill returns the retained pre-filter still from the last capture or
// import, when one exists.
func (e *Engine) RawStill() (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.raw == nil {
		return "", false
	}
	s, err := encodeDataURI(e.raw)
	if err != nil {
		return "", false
	}
	return s, true
}

// ImportFile decodes a user-supplied image, downsizes it preserving aspect
// ratio to at most 640x480, draws it unmirrored onto a surface of the
// downsized dimensions, applies the active filter, and serializes the result.
//
// This is the device-unavailable fallback: it works with no device ever
// acquired, lazily creating a surface independent of the preview stream.
func (e *Engine) ImportFile(data []byte) (string, error) {
	img, err := decodeImage(data)
	if err != nil {
		return "", err
	}

	b := img.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxImportWidth, maxImportHeight)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateStopped {
		return "", ErrNoDevice
	}

	e.surface = image.NewRGBA(image.Rect(0, 0, w, h))
	drawScaled(e.surface, img)
	e.raw = cloneRGBA(e.surface)
	e.composeOverlayLocked()

	return encodeDataURI(e.surface)
}

// Recomposite redraws a previously produced still (camera- or file-origin)
// at the surface's current dimensions and reapplies whatever filter is
// active now. Callers pass the retained raw still, so filters never stack.
func (e *Engine) Recomposite(still string) (string, error) {
	if still == "" {
		return "", ErrNoStill
	}
	img, err := decodeDataURI(still)
	if err != nil {
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == StateStopped {
		return "", ErrNoDevice
	}

	if e.surface == nil {
		b := img.Bounds()
		e.surface = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	}
	drawScaled(e.surface, img)
	e.composeOverlayLocked()

	return encodeDataURI(e.surface)
}

// Release cancels the render loop, stops the device, and detaches it from
// the surface. Idempotent, and safe when no device was ever acquired. After
// Release no further frames are drawn.
func (e *Engine) Release() {
	e.mu.Lock()
	if e.state == StateStopped {
		e.mu.Unlock()
		return
	}
	prev := e.state
	e.state = StateStopped
	dev := e.device
	e.device = nil
	stop := e.stop
	done := e.done
	e.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}
	if dev != nil {
		_ = dev.Close()
	}

	e.logger.Debug(context.Background(), "capture session released", "from", prev.String())
}
