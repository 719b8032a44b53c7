package stitch

import (
	"fmt"

	"github.com/kiesman99/panorama/pkg/tile"
)

type shiftConfig struct {
	pixels    int
	clearLogo bool
}

// ShiftOption adjusts a single Shift call.
type ShiftOption func(*shiftConfig)

// WithShift overrides the shift distance (default tile.ShiftSize).
func WithShift(pixels int) ShiftOption {
	return func(c *shiftConfig) { c.pixels = pixels }
}

// WithLogoClear controls whether LEFT and UP shifts erase the watermark
// before moving content (default true).
func WithLogoClear(on bool) ShiftOption {
	return func(c *shiftConfig) { c.clearLogo = on }
}

// axisLen returns the buffer length along the axis d shifts on.
func axisLen(b *tile.Buffer, d tile.Direction) int {
	if d.Horizontal() {
		return b.Width
	}
	return b.Height
}

// crossLen returns the buffer length across the axis d shifts on. Tile
// sequences advance along this axis.
func crossLen(b *tile.Buffer, d tile.Direction) int {
	if d.Horizontal() {
		return b.Height
	}
	return b.Width
}

// Shift moves the content of b toward d and returns the window of at most
// tile.Size pixels along the shift axis that contains the newly exposed,
// fully transparent border. LEFT and UP keep the trailing window, RIGHT and
// DOWN keep the leading one. The orthogonal size is unchanged and b is never
// modified.
func Shift(b *tile.Buffer, d tile.Direction, opts ...ShiftOption) (*tile.Buffer, error) {
	cfg := shiftConfig{pixels: tile.ShiftSize, clearLogo: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	if !d.Valid() {
		return nil, ErrUnknownDirection
	}
	n := axisLen(b, d)
	if cfg.pixels <= 0 || cfg.pixels >= n {
		return nil, fmt.Errorf("%w: %d pixels %s on an axis of %d", ErrShiftRange, cfg.pixels, d, n)
	}

	src := b
	if cfg.clearLogo && !d.Leading() {
		src = ClearLogo(b)
	}

	// Output index i along the axis reads source index i+offset; anything
	// outside the source stays transparent.
	size := min(n, tile.Size)
	offset := -cfg.pixels
	if !d.Leading() {
		offset = n - size + cfg.pixels
	}
	lo := max(0, -offset)
	hi := min(size, n-offset)

	var out *tile.Buffer
	if d.Horizontal() {
		out = tile.NewBuffer(size, b.Height)
		out.CopyRect(lo, 0, src, lo+offset, 0, hi-lo, b.Height)
	} else {
		out = tile.NewBuffer(b.Width, size)
		out.CopyRect(0, lo, src, 0, lo+offset, b.Width, hi-lo)
	}
	return out, nil
}
