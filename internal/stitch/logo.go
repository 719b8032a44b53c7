package stitch

import (
	"fmt"

	"github.com/kiesman99/panorama/pkg/tile"
)

// logoRect returns the watermark rectangle of a w×h buffer, clipped to it.
func logoRect(w, h int) (x, y, lw, lh int) {
	lw = min(tile.LogoWidth, w)
	lh = min(tile.LogoHeight, h)
	return w - lw, h - lh, lw, lh
}

// ClearLogo returns a copy of b with the watermark region fully transparent.
func ClearLogo(b *tile.Buffer) *tile.Buffer {
	out := b.Clone()
	clearLogo(out)
	return out
}

func clearLogo(b *tile.Buffer) {
	x, y, w, h := logoRect(b.Width, b.Height)
	b.Zero(x, y, w, h)
}

// TransplantLogo returns a copy of target whose watermark region holds the
// pixels that source will show at that position once it has been shifted by
// one step in direction d. This keeps the watermark of a RIGHT or DOWN
// extension from covering content of the canvas it is pasted onto. For LEFT
// and UP target is copied unchanged.
func TransplantLogo(target, source *tile.Buffer, d tile.Direction) (*tile.Buffer, error) {
	if !d.Valid() {
		return nil, ErrUnknownDirection
	}

	out := target.Clone()
	if !d.Leading() {
		return out, nil
	}

	anchor, err := Shift(source, d, WithLogoClear(false))
	if err != nil {
		return nil, fmt.Errorf("transplant logo: %w", err)
	}

	lw := min(tile.LogoWidth, out.Width, anchor.Width)
	lh := min(tile.LogoHeight, out.Height, anchor.Height)
	out.CopyRect(out.Width-lw, out.Height-lh, anchor, anchor.Width-lw, anchor.Height-lh, lw, lh)
	return out, nil
}
