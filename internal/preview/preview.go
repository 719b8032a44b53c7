// Package preview renders bounded previews of panoramas for display.
package preview

import (
	"fmt"
	"image"

	xdraw "golang.org/x/image/draw"

	"github.com/kiesman99/panorama/pkg/tile"
)

// Default bounds used by the CLI when none are configured.
const (
	DefaultMaxWidth  = 1600
	DefaultMaxHeight = 700
)

// Size returns the dimensions of a w×h image once it has been scaled down to
// fit maxWidth first and then maxHeight, preserving the aspect ratio.
func Size(w, h, maxWidth, maxHeight int) (int, int) {
	if w > maxWidth {
		h = h * maxWidth / w
		w = maxWidth
	}
	if h > maxHeight {
		w = w * maxHeight / h
		h = maxHeight
	}
	return max(w, 1), max(h, 1)
}

// Fit returns b scaled down to fit maxWidth × maxHeight. Buffers that
// already fit are copied unchanged.
func Fit(b *tile.Buffer, maxWidth, maxHeight int) (*tile.Buffer, error) {
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("invalid preview bounds %dx%d", maxWidth, maxHeight)
	}

	w, h := Size(b.Width, b.Height, maxWidth, maxHeight)
	if w == b.Width && h == b.Height {
		return b.Clone(), nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), b.Image(), image.Rect(0, 0, b.Width, b.Height), xdraw.Src, nil)
	return tile.FromImage(dst), nil
}
