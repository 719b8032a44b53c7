package stitch

import (
	"errors"
	"fmt"

	"github.com/kiesman99/panorama/pkg/tile"
)

// Combine carries the trailing overlap band of a completed part into the
// leading band of the next pending part of the same sequence. For LEFT and
// RIGHT sequences the band is rows, for UP and DOWN it is columns. The
// result keeps next's path, direction and index; bytes outside the band are
// next's own.
func Combine(done, next tile.Part) (tile.Part, error) {
	if done.Buffer == nil || next.Buffer == nil {
		return tile.Part{}, fmt.Errorf("%w: missing pixels", ErrShapeMismatch)
	}
	if done.Direction != next.Direction {
		return tile.Part{}, fmt.Errorf("%w: %s part combined into %s part", ErrDirectionMismatch, done.Direction, next.Direction)
	}
	if !done.Direction.Valid() {
		return tile.Part{}, ErrUnknownDirection
	}
	if !done.Buffer.SameShape(next.Buffer) {
		return tile.Part{}, fmt.Errorf("%w: completed part %d is %dx%d, pending part %d is %dx%d",
			ErrShapeMismatch, done.Index, done.Buffer.Width, done.Buffer.Height,
			next.Index, next.Buffer.Width, next.Buffer.Height)
	}

	src := done.Buffer
	buf := next.Buffer.Clone()
	if next.Direction.Horizontal() {
		band := min(tile.OverlapSize, src.Height)
		buf.CopyRect(0, 0, src, 0, src.Height-band, src.Width, band)
	} else {
		band := min(tile.OverlapSize, src.Width)
		buf.CopyRect(0, 0, src, src.Width-band, 0, band, src.Height)
	}

	return tile.Part{
		Path:      next.Path,
		Direction: next.Direction,
		Buffer:    buf,
		Index:     next.Index,
	}, nil
}

// MergeParts joins the completed parts of one sequence into a single strip.
// Each next part is appended after the running strip minus its trailing
// overlap band, so neighbouring parts share exactly tile.OverlapSize pixels.
func MergeParts(parts []tile.Part) (*tile.Buffer, error) {
	if len(parts) == 0 {
		return nil, errors.New("no parts to merge")
	}

	d := parts[0].Direction
	if !d.Valid() {
		return nil, ErrUnknownDirection
	}
	strip := parts[0].Buffer.Clone()

	for _, p := range parts[1:] {
		if p.Direction != d {
			return nil, fmt.Errorf("%w: part %d is %s, sequence is %s", ErrDirectionMismatch, p.Index, p.Direction, d)
		}

		b := p.Buffer
		var merged *tile.Buffer
		if d.Horizontal() {
			if b.Width != strip.Width || strip.Height <= tile.OverlapSize {
				return nil, fmt.Errorf("%w: part %d is %dx%d, strip is %dx%d", ErrShapeMismatch, p.Index, b.Width, b.Height, strip.Width, strip.Height)
			}
			keep := strip.Height - tile.OverlapSize
			merged = tile.NewBuffer(strip.Width, keep+b.Height)
			merged.CopyRect(0, 0, strip, 0, 0, strip.Width, keep)
			merged.CopyRect(0, keep, b, 0, 0, b.Width, b.Height)
		} else {
			if b.Height != strip.Height || strip.Width <= tile.OverlapSize {
				return nil, fmt.Errorf("%w: part %d is %dx%d, strip is %dx%d", ErrShapeMismatch, p.Index, b.Width, b.Height, strip.Width, strip.Height)
			}
			keep := strip.Width - tile.OverlapSize
			merged = tile.NewBuffer(keep+b.Width, strip.Height)
			merged.CopyRect(0, 0, strip, 0, 0, keep, strip.Height)
			merged.CopyRect(keep, 0, b, 0, 0, b.Width, b.Height)
		}
		strip = merged
	}
	return strip, nil
}
