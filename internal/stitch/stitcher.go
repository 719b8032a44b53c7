package stitch

import (
	"fmt"

	"github.com/kiesman99/panorama/pkg/tile"
)

// Extension is the completed strip for one direction of a panorama.
type Extension struct {
	Direction tile.Direction
	Completed *tile.Buffer
}

// Stitch grows a copy of source by one shift per extension and pastes each
// completed strip onto the grown edge. Extensions are applied in order; each
// one is positioned against the canvas produced by the ones before it, so
// the order is significant.
func Stitch(source *tile.Buffer, exts ...Extension) (*tile.Buffer, error) {
	canvas := source.Clone()
	for _, ext := range exts {
		next, err := extend(canvas, ext)
		if err != nil {
			return nil, fmt.Errorf("stitch %s: %w", ext.Direction, err)
		}
		canvas = next
	}
	return canvas, nil
}

func extend(canvas *tile.Buffer, ext Extension) (*tile.Buffer, error) {
	d := ext.Direction
	if !d.Valid() {
		return nil, ErrUnknownDirection
	}
	done := ext.Completed
	if done == nil {
		return nil, fmt.Errorf("%w: no completed strip", ErrShapeMismatch)
	}

	// The strip spans the whole canvas across the axis and one tile along it.
	if crossLen(done, d) != crossLen(canvas, d) || axisLen(done, d) != tile.Size || axisLen(canvas, d)+tile.ShiftSize < tile.Size {
		return nil, fmt.Errorf("%w: strip is %dx%d, canvas is %dx%d",
			ErrShapeMismatch, done.Width, done.Height, canvas.Width, canvas.Height)
	}

	if d.Leading() {
		moved, err := TransplantLogo(done, canvas, d)
		if err != nil {
			return nil, err
		}
		done = moved
	}

	var grown *tile.Buffer
	if d.Horizontal() {
		grown = tile.NewBuffer(canvas.Width+tile.ShiftSize, canvas.Height)
	} else {
		grown = tile.NewBuffer(canvas.Width, canvas.Height+tile.ShiftSize)
	}

	switch d {
	case tile.Left:
		grown.CopyRect(0, 0, canvas, 0, 0, canvas.Width, canvas.Height)
		grown.CopyRect(grown.Width-tile.Size, 0, done, 0, 0, done.Width, done.Height)
	case tile.Right:
		grown.CopyRect(tile.ShiftSize, 0, canvas, 0, 0, canvas.Width, canvas.Height)
		grown.CopyRect(0, 0, done, 0, 0, done.Width, done.Height)
	case tile.Up:
		grown.CopyRect(0, 0, canvas, 0, 0, canvas.Width, canvas.Height)
		grown.CopyRect(0, grown.Height-tile.Size, done, 0, 0, done.Width, done.Height)
	case tile.Down:
		grown.CopyRect(0, tile.ShiftSize, canvas, 0, 0, canvas.Width, canvas.Height)
		grown.CopyRect(0, 0, done, 0, 0, done.Width, done.Height)
	}
	return grown, nil
}
