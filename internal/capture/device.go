package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrDeviceUnavailable means no capture device exists or access to it was
	// denied. Recoverable: callers fall back to file-based import.
	ErrDeviceUnavailable = errors.New("capture device unavailable")

	// ErrDeviceClosed is returned by a device after Close.
	ErrDeviceClosed = errors.New("capture device closed")
)

// Constraints is the preferred (not guaranteed) capture configuration.
type Constraints struct {
	Width       int
	Height      int
	FacingFront bool
}

// Device is an exclusive handle on a live frame source. Frame blocks until a
// frame is available; the first call therefore establishes the stream's
// dimensions.
type Device interface {
	Frame() (image.Image, error)
	Close() error
}

// Opener acquires a device. Implementations return ErrDeviceUnavailable when
// no device can be had, which the engine treats as a recoverable condition.
type Opener func(ctx context.Context, c Constraints) (Device, error)

// DirDevice simulates a camera by cycling through the decodable images of a
// directory. Frames are decoded once at open time.
type DirDevice struct {
	mu     sync.Mutex
	frames []image.Image
	idx    int
	closed bool
}

// DirOpener returns an Opener backed by dir. An empty dir path means no
// device is configured.
func DirOpener(dir string) Opener {
	return func(ctx context.Context, _ Constraints) (Device, error) {
		return OpenDir(ctx, dir)
	}
}

// OpenDir opens a DirDevice over dir. Files that do not decode as images are
// skipped; a directory with no usable frames yields ErrDeviceUnavailable.
func OpenDir(ctx context.Context, dir string) (*DirDevice, error) {
	if dir == "" {
		return nil, ErrDeviceUnavailable
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var frames []image.Image
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			continue
		}
		img, err := decodeImage(data)
		if err != nil {
			continue
		}
		frames = append(frames, img)
	}

	if len(frames) == 0 {
		return nil, ErrDeviceUnavailable
	}
	return &DirDevice{frames: frames}, nil
}

func (d *DirDevice) Frame() (image.Image, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrDeviceClosed
	}
	frame := d.frames[d.idx]
	d.idx = (d.idx + 1) % len(d.frames)
	return frame, nil
}

// Close releases the device. Safe to call more than once.
func (d *DirDevice) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}
