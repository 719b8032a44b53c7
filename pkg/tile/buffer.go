package tile

import (
	"bytes"
	"image"
	"image/color"
)

// Buffer holds non-premultiplied RGBA pixels, row major, 4 bytes per pixel.
// A zero pixel is fully transparent.
type Buffer struct {
	Pix    []byte
	Width  int
	Height int
}

// NewBuffer allocates a fully transparent buffer.
func NewBuffer(width, height int) *Buffer {
	return &Buffer{
		Pix:    make([]byte, width*height*4),
		Width:  width,
		Height: height,
	}
}

// Clone returns a deep copy of b.
func (b *Buffer) Clone() *Buffer {
	pix := make([]byte, len(b.Pix))
	copy(pix, b.Pix)
	return &Buffer{Pix: pix, Width: b.Width, Height: b.Height}
}

// Offset returns the index of the first byte of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

func (b *Buffer) At(x, y int) [4]byte {
	i := b.Offset(x, y)
	return [4]byte{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}

func (b *Buffer) Set(x, y int, px [4]byte) {
	i := b.Offset(x, y)
	copy(b.Pix[i:i+4], px[:])
}

// Fill sets every pixel of the w×h rectangle at (x, y) to px. The rectangle
// is clipped to b.
func (b *Buffer) Fill(x, y, w, h int, px [4]byte) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, b.Width), min(y+h, b.Height)
	for yy := y0; yy < y1; yy++ {
		for xx := x0; xx < x1; xx++ {
			b.Set(xx, yy, px)
		}
	}
}

// Zero makes the w×h rectangle at (x, y) fully transparent.
func (b *Buffer) Zero(x, y, w, h int) {
	b.Fill(x, y, w, h, [4]byte{})
}

// CopyRect copies the w×h rectangle of src at (sx, sy) into b at (dx, dy).
// The rectangle is clipped to both buffers. src and b must not share pixels.
func (b *Buffer) CopyRect(dx, dy int, src *Buffer, sx, sy, w, h int) {
	if sx < 0 {
		dx -= sx
		w += sx
		sx = 0
	}
	if sy < 0 {
		dy -= sy
		h += sy
		sy = 0
	}
	if dx < 0 {
		sx -= dx
		w += dx
		dx = 0
	}
	if dy < 0 {
		sy -= dy
		h += dy
		dy = 0
	}
	w = min(w, src.Width-sx, b.Width-dx)
	h = min(h, src.Height-sy, b.Height-dy)
	if w <= 0 || h <= 0 {
		return
	}

	n := w * 4
	for row := 0; row < h; row++ {
		so := src.Offset(sx, sy+row)
		do := b.Offset(dx, dy+row)
		copy(b.Pix[do:do+n], src.Pix[so:so+n])
	}
}

// Crop returns a fresh copy of the w×h rectangle at (x, y).
func (b *Buffer) Crop(x, y, w, h int) *Buffer {
	out := NewBuffer(w, h)
	out.CopyRect(0, 0, b, x, y, w, h)
	return out
}

// SameShape reports whether b and o have identical dimensions.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.Width == o.Width && b.Height == o.Height
}

// Equal reports whether b and o hold identical pixels.
func (b *Buffer) Equal(o *Buffer) bool {
	return b.SameShape(o) && bytes.Equal(b.Pix, o.Pix)
}

// FromImage converts any decoded image into a 4-channel buffer. Images
// without an alpha channel become fully opaque.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	buf := NewBuffer(width, height)

	if nrgba, ok := img.(*image.NRGBA); ok {
		for y := 0; y < height; y++ {
			so := nrgba.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(buf.Pix[buf.Offset(0, y):buf.Offset(0, y+1)], nrgba.Pix[so:so+width*4])
		}
		return buf
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			buf.Set(x, y, [4]byte{c.R, c.G, c.B, c.A})
		}
	}
	return buf
}

// Image wraps a copy of the pixels as an *image.NRGBA.
func (b *Buffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	copy(img.Pix, b.Pix)
	return img
}
