package capture

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
)

// Imported images are downsized so neither dimension exceeds these bounds.
const (
	maxImportWidth  = 640
	maxImportHeight = 480
)

const dataURIPrefix = "data:image/png;base64,"

// encodeDataURI serializes img losslessly as a PNG data URI, the transferable
// form posts are published in.
func encodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode still: %w", err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// decodeDataURI decodes a still previously produced by encodeDataURI.
func decodeDataURI(s string) (image.Image, error) {
	idx := strings.Index(s, ",")
	if !strings.HasPrefix(s, "data:image/") || idx < 0 {
		return nil, fmt.Errorf("not an image data URI")
	}
	raw, err := base64.StdEncoding.DecodeString(s[idx+1:])
	if err != nil {
		return nil, fmt.Errorf("decode data URI: %w", err)
	}
	return decodeImage(raw)
}

// decodeImage decodes PNG, JPEG or GIF bytes.
func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// fitWithin shrinks (w, h) preserving aspect ratio until w <= maxW and
// h <= maxH. Width is clamped first, then height, matching how uploads have
// always been sized. Images already inside the bounds are untouched.
func fitWithin(w, h, maxW, maxH int) (int, int) {
	fw, fh := float64(w), float64(h)
	if fw > float64(maxW) {
		fh = float64(maxW) / fw * fh
		fw = float64(maxW)
	}
	if fh > float64(maxH) {
		fw = float64(maxH) / fh * fw
		fh = float64(maxH)
	}
	nw, nh := int(fw+0.5), int(fh+0.5)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
