package stitch

import (
	"fmt"

	"github.com/kiesman99/panorama/pkg/tile"
)

// Offsets returns the tile start offsets along an axis of n pixels. Starts
// advance by tile.ShiftSize, stay strictly below n-tile.ShiftSize, and stop
// before a window that would run past n.
//
// When n is an exact multiple of tile.ShiftSize the trailing strip beyond
// the last full window is not covered (n = 2*ShiftSize yields one tile).
func Offsets(n int) []int {
	var starts []int
	for k := 0; k < n-tile.ShiftSize; k += tile.ShiftSize {
		if k+tile.Size > n {
			break
		}
		starts = append(starts, k)
	}
	return starts
}

// Coverage returns the end of the last window placed by Offsets(n), or 0
// when an axis of n pixels holds no full window. Pixels in [Coverage(n), n)
// belong to no tile.
func Coverage(n int) int {
	starts := Offsets(n)
	if len(starts) == 0 {
		return 0
	}
	return starts[len(starts)-1] + tile.Size
}

// CheckCoverage reports ErrTileShape unless the tiles of a w×h source
// shifted toward d cover the whole tiling axis, so that the merged strip
// lines up with the canvas it is stitched onto.
func CheckCoverage(w, h int, d tile.Direction) error {
	if !d.Valid() {
		return ErrUnknownDirection
	}
	along := w
	if d.Horizontal() {
		along = h
	}
	if end := Coverage(along); end != along {
		return fmt.Errorf("%w: %s tiles cover %d of %d pixels, %d uncovered (tiling lengths are %d + k*%d)",
			ErrTileShape, d, end, along, along-end, tile.Size, tile.ShiftSize)
	}
	return nil
}

// Slice cuts a shifted buffer into tile.Size×tile.Size parts advancing along
// the axis orthogonal to d's shift axis: rows for LEFT/RIGHT, columns for
// UP/DOWN. A buffer that already is one tile yields a single part. Every
// part owns a fresh copy of its pixels.
func Slice(shifted *tile.Buffer, d tile.Direction, base string) ([]tile.Part, error) {
	if !d.Valid() {
		return nil, ErrUnknownDirection
	}

	if shifted.Width == tile.Size && shifted.Height == tile.Size {
		return []tile.Part{{
			Path:      tile.PartPath(base, d, 0),
			Direction: d,
			Buffer:    shifted.Clone(),
			Index:     0,
		}}, nil
	}

	across := axisLen(shifted, d)
	along := crossLen(shifted, d)
	if across != tile.Size || along < tile.Size {
		return nil, fmt.Errorf("%w: %dx%d for %s", ErrTileShape, shifted.Width, shifted.Height, d)
	}

	offsets := Offsets(along)
	parts := make([]tile.Part, 0, len(offsets))
	for i, k := range offsets {
		var buf *tile.Buffer
		if d.Horizontal() {
			buf = shifted.Crop(0, k, tile.Size, tile.Size)
		} else {
			buf = shifted.Crop(k, 0, tile.Size, tile.Size)
		}
		parts = append(parts, tile.Part{
			Path:      tile.PartPath(base, d, i),
			Direction: d,
			Buffer:    buf,
			Index:     i,
		})
	}
	return parts, nil
}

// ShiftLarge shifts b toward d and slices the result into parts.
func ShiftLarge(b *tile.Buffer, d tile.Direction, base string, opts ...ShiftOption) ([]tile.Part, error) {
	shifted, err := Shift(b, d, opts...)
	if err != nil {
		return nil, err
	}
	return Slice(shifted, d, base)
}
