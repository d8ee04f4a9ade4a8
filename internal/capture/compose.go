package capture

import (
	"image"
	"image/draw"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// drawFrameMirrored draws src flipped horizontally and scaled to exactly fill
// dst. Live frames follow the selfie convention: the preview behaves like a
// mirror.
func drawFrameMirrored(dst *image.RGBA, src image.Image) {
	db := dst.Bounds()
	sb := src.Bounds()
	sx := float64(db.Dx()) / float64(sb.Dx())
	sy := float64(db.Dy()) / float64(sb.Dy())

	// x' = sx*(sb.Max.X - x): the left edge of the frame lands on the right
	// edge of the surface.
	aff := f64.Aff3{
		-sx, 0, sx * float64(sb.Max.X),
		0, sy, -sy * float64(sb.Min.Y),
	}
	xdraw.ApproxBiLinear.Transform(dst, aff, src, sb, xdraw.Src, nil)
}

// drawScaled draws src unmirrored, scaled to exactly fill dst. Used for
// imported files and recomposited stills.
func drawScaled(dst *image.RGBA, src image.Image) {
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
}

// overlayRect is the centered, unscaled placement of an overlay on a surface.
// Centering rather than stretching preserves the overlay's aspect ratio
// across varying preview resolutions.
func overlayRect(surface, overlay image.Rectangle) image.Rectangle {
	x := (surface.Dx() - overlay.Dx()) / 2
	y := (surface.Dy() - overlay.Dy()) / 2
	return image.Rect(x, y, x+overlay.Dx(), y+overlay.Dy())
}

// drawOverlayCentered alpha-composites overlay centered over dst without
// scaling.
func drawOverlayCentered(dst *image.RGBA, overlay image.Image) {
	r := overlayRect(dst.Bounds(), overlay.Bounds())
	draw.Draw(dst, r, overlay, overlay.Bounds().Min, draw.Over)
}

// cloneRGBA copies src pixel-for-pixel.
func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}
