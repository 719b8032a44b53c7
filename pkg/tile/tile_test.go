package tile

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry(t *testing.T) {
	assert.Equal(t, 341, OverlapSize)
	assert.Equal(t, 683, ShiftSize)
	assert.Equal(t, Size, ShiftSize+OverlapSize)
}

func TestDirectionTokens(t *testing.T) {
	cases := map[Direction]string{
		Left:  "RIGHT",
		Right: "LEFT",
		Up:    "DOWN",
		Down:  "UP",
	}
	for d, token := range cases {
		assert.Equal(t, token, d.Token(), d.String())
	}

	assert.True(t, Left.Horizontal())
	assert.True(t, Right.Horizontal())
	assert.False(t, Up.Horizontal())
	assert.True(t, Down.Leading())
	assert.False(t, Left.Leading())
	assert.False(t, Direction{}.Valid())
	assert.Equal(t, "INVALID", Direction{}.String())
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" left ")
	require.NoError(t, err)
	assert.Equal(t, Left, d)

	_, err = ParseDirection("north")
	assert.Error(t, err)

	dirs, err := ParseDirections([]string{"DOWN", "up"})
	require.NoError(t, err)
	assert.Equal(t, []Direction{Down, Up}, dirs)

	var text Direction
	require.NoError(t, text.UnmarshalText([]byte("right")))
	assert.Equal(t, Right, text)
	out, err := text.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "RIGHT", string(out))
}

func TestParseGroup(t *testing.T) {
	for _, name := range []string{"left-right", "LEFT_RIGHT", "LEFT and RIGHT"} {
		g, err := ParseGroup(name)
		require.NoError(t, err, name)
		assert.Equal(t, LeftRight, g)
	}
	g, err := ParseGroup("up_down")
	require.NoError(t, err)
	assert.Equal(t, []Direction{Up, Down}, g.Directions())
	assert.Equal(t, "UP and DOWN", g.String())

	_, err = ParseGroup("diagonal")
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	base := BaseName("/data/cat.jpg")
	assert.Equal(t, "/data/cat", base)
	assert.Equal(t, "/data/cat_RIGHT_007.png", PartPath(base, Left, 7))
	assert.Equal(t, "/data/cat_UP.png", ShiftPath(base, Down))
	assert.Equal(t, "/data/cat_RIGHT_007_done.png", DonePath(PartPath(base, Left, 7)))
	assert.Equal(t, "/data/cat_done.jpg", DonePath("/data/cat.jpg"))
	assert.Equal(t, "cat.v2_done.webp", DonePath("cat.v2.webp"))
	assert.Equal(t, "/data/cat_full.png", FullPath(base))
	assert.Equal(t, "/data/cat_full_preview.png", PreviewPath(FullPath(base)))
}

func TestCopyRectClips(t *testing.T) {
	src := NewBuffer(4, 4)
	src.Fill(0, 0, 4, 4, [4]byte{1, 2, 3, 255})
	dst := NewBuffer(3, 3)

	dst.CopyRect(-1, 1, src, 0, 0, 4, 4)

	assert.Equal(t, [4]byte{}, dst.At(0, 0))
	assert.Equal(t, [4]byte{1, 2, 3, 255}, dst.At(0, 1))
	assert.Equal(t, [4]byte{1, 2, 3, 255}, dst.At(2, 2))
}

func TestCropIsFresh(t *testing.T) {
	src := NewBuffer(2, 2)
	src.Set(1, 1, [4]byte{9, 9, 9, 9})

	c := src.Crop(1, 1, 1, 1)
	c.Set(0, 0, [4]byte{})

	assert.Equal(t, [4]byte{9, 9, 9, 9}, src.At(1, 1))
}

func TestProcessorRoundTrip(t *testing.T) {
	p := NewProcessor(afero.NewMemMapFs())
	buf := NewBuffer(5, 3)
	buf.Set(0, 0, [4]byte{10, 20, 30, 255})
	buf.Set(4, 2, [4]byte{200, 100, 50, 128})

	require.NoError(t, p.Save("/img/a.png", buf))
	ok, err := p.Exists("/img/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := p.Load("/img/a.png")
	require.NoError(t, err)
	assert.True(t, buf.Equal(got), "pixels changed across PNG round trip")

	cfg, err := p.DecodeConfig("/img/a.png")
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Width)
	assert.Equal(t, 3, cfg.Height)
}

func TestProcessorJPEGGainsAlpha(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 128
	}
	var data bytes.Buffer
	require.NoError(t, jpeg.Encode(&data, img, nil))

	p := NewProcessor(afero.NewMemMapFs())
	buf, err := p.DecodeImage(data.Bytes())
	require.NoError(t, err)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			require.Equal(t, byte(255), buf.At(x, y)[3])
		}
	}
}

func TestProcessorRejectsUnknownFormat(t *testing.T) {
	p := NewProcessor(nil)
	_, err := p.DecodeImage([]byte("GIF89a"))
	assert.Error(t, err)
}

func TestFromImageGray(t *testing.T) {
	img := image.NewGray(image.Rect(2, 2, 4, 4))
	img.SetGray(3, 3, color.Gray{Y: 77})

	buf := FromImage(img)
	assert.Equal(t, 2, buf.Width)
	assert.Equal(t, [4]byte{77, 77, 77, 255}, buf.At(1, 1))
}
