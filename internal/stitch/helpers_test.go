package stitch

import (
	"testing"

	"github.com/kiesman99/panorama/pkg/tile"
)

// pattern returns an opaque buffer whose pixels encode their coordinates.
// seed changes the alpha so buffers of different origin never compare equal.
func pattern(w, h int, seed byte) *tile.Buffer {
	b := tile.NewBuffer(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Set(x, y, [4]byte{
				byte(x),
				byte(y),
				byte((x>>8)&0xf | ((y>>8)&0xf)<<4),
				255 - seed,
			})
		}
	}
	return b
}

func solid(w, h int, px [4]byte) *tile.Buffer {
	b := tile.NewBuffer(w, h)
	b.Fill(0, 0, w, h, px)
	return b
}

// requireRegion fails unless the w×h rectangle of got at (gx, gy) equals the
// rectangle of want at (wx, wy).
func requireRegion(t *testing.T, got *tile.Buffer, gx, gy int, want *tile.Buffer, wx, wy, w, h int) {
	t.Helper()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := got.At(gx+x, gy+y)
			e := want.At(wx+x, wy+y)
			if g != e {
				t.Fatalf("pixel (%d,%d) = %v, want %v from (%d,%d)", gx+x, gy+y, g, e, wx+x, wy+y)
			}
		}
	}
}

// requireTransparent fails unless every pixel of the rectangle is zero.
func requireTransparent(t *testing.T, b *tile.Buffer, x0, y0, w, h int) {
	t.Helper()
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			if px := b.At(x, y); px != ([4]byte{}) {
				t.Fatalf("pixel (%d,%d) = %v, want transparent", x, y, px)
			}
		}
	}
}
