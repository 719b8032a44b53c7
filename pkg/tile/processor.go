package tile

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"github.com/spf13/afero"
)

// Processor reads and writes pixel buffers on a filesystem
type Processor struct {
	fs afero.Fs
}

// NewProcessor creates a new tile processor backed by fs
func NewProcessor(fs afero.Fs) *Processor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Processor{fs: fs}
}

// Exists reports whether path exists on the processor's filesystem
func (p *Processor) Exists(path string) (bool, error) {
	return afero.Exists(p.fs, path)
}

// Load reads and decodes the image at path into an RGBA buffer
func (p *Processor) Load(path string) (*Buffer, error) {
	data, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return nil, err
	}

	buf, err := p.DecodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return buf, nil
}

// Save encodes buf as PNG and writes it to path
func (p *Processor) Save(path string, buf *Buffer) error {
	data, err := p.EncodePNG(buf)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return afero.WriteFile(p.fs, path, data, 0o644)
}

// DecodeImage detects image format and decodes
func (p *Processor) DecodeImage(data []byte) (*Buffer, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], []byte{0x89, 0x50, 0x4E, 0x47}) {
		return p.readPNG(data)
	} else if len(data) >= 2 && bytes.Equal(data[:2], []byte{0xFF, 0xD8}) {
		return p.readJPEG(data)
	}

	return nil, fmt.Errorf("unrecognized image format")
}

// readJPEG decodes JPEG image; JPEG has no alpha so every pixel is opaque
func (p *Processor) readJPEG(data []byte) (*Buffer, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// readPNG decodes PNG image
func (p *Processor) readPNG(data []byte) (*Buffer, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// EncodePNG encodes the buffer as PNG
func (p *Processor) EncodePNG(buf *Buffer) ([]byte, error) {
	var output bytes.Buffer
	if err := png.Encode(&output, buf.Image()); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

// DecodeConfig returns the dimensions of the image at path without decoding
// its pixels
func (p *Processor) DecodeConfig(path string) (image.Config, error) {
	f, err := p.fs.Open(path)
	if err != nil {
		return image.Config{}, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	return cfg, err
}
