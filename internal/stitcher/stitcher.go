package stitcher

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/kiesman99/panorama/internal/logging"
	"github.com/kiesman99/panorama/internal/preview"
	"github.com/kiesman99/panorama/internal/stitch"
	"github.com/kiesman99/panorama/pkg/tile"
)

// Stitcher runs the file-backed panorama flows on top of the stitch engine.
// Every artifact name is derived from the source path.
type Stitcher struct {
	proc   *tile.Processor
	logger *zap.Logger
}

// New creates a new stitcher instance
func New(proc *tile.Processor, logger *zap.Logger) *Stitcher {
	return &Stitcher{
		proc:   proc,
		logger: logging.OrNop(logger),
	}
}

// Processor returns the storage the stitcher reads and writes through
func (s *Stitcher) Processor() *tile.Processor {
	return s.proc
}

// SelectGroup validates a full-panorama group selection. Exactly one group
// is accepted; the check happens before any image is read.
func SelectGroup(names []string) (tile.Group, error) {
	if len(names) != 1 {
		return tile.Group{}, fmt.Errorf("%w: got %d (%s)", ErrGroupCount, len(names), strings.Join(names, ", "))
	}
	return tile.ParseGroup(names[0])
}

func (s *Stitcher) loadSource(source string) (*tile.Buffer, error) {
	buf, err := s.proc.Load(source)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	return buf, nil
}

// Prepare writes one shifted artifact per direction for a source that fits
// in a single tile and returns their paths.
func (s *Stitcher) Prepare(ctx context.Context, source string, dirs []tile.Direction) ([]string, error) {
	if len(dirs) == 0 {
		return nil, ErrNoDirections
	}
	im, err := s.loadSource(source)
	if err != nil {
		return nil, err
	}

	base := tile.BaseName(source)
	paths := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		shifted, err := stitch.Shift(im, d)
		if err != nil {
			return nil, fmt.Errorf("shift %s: %w", d, err)
		}
		path := tile.ShiftPath(base, d)
		if err := s.proc.Save(path, shifted); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		s.logger.Info("Wrote shifted artifact",
			zap.Stringer("direction", d),
			zap.String("path", path),
			zap.Int("width", shifted.Width),
			zap.Int("height", shifted.Height))
		paths = append(paths, path)
	}
	return paths, nil
}

// PrepareParts shifts and slices the source for every direction without
// writing anything.
func (s *Stitcher) PrepareParts(ctx context.Context, source string, dirs []tile.Direction) (map[tile.Direction][]tile.Part, error) {
	if len(dirs) == 0 {
		return nil, ErrNoDirections
	}

	// Reject sources the tiles cannot cover before any pixel is decoded.
	cfg, err := s.proc.DecodeConfig(source)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}
	for _, d := range dirs {
		if err := stitch.CheckCoverage(cfg.Width, cfg.Height, d); err != nil {
			return nil, fmt.Errorf("prepare %s: %w", d, err)
		}
	}

	im, err := s.loadSource(source)
	if err != nil {
		return nil, err
	}

	base := tile.BaseName(source)
	parts := make(map[tile.Direction][]tile.Part, len(dirs))
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		seq, err := stitch.ShiftLarge(im, d, base)
		if err != nil {
			return nil, fmt.Errorf("prepare %s: %w", d, err)
		}
		parts[d] = seq
		s.logger.Debug("Prepared parts", zap.Stringer("direction", d), zap.Int("parts", len(seq)))
	}
	return parts, nil
}

// WritePart saves a pending part under its own path.
func (s *Stitcher) WritePart(p tile.Part) error {
	if err := s.proc.Save(p.Path, p.Buffer); err != nil {
		return fmt.Errorf("write part %s: %w", p.Path, err)
	}
	s.logger.Info("Wrote pending part",
		zap.Stringer("direction", p.Direction),
		zap.Int("index", p.Index),
		zap.String("path", p.Path))
	return nil
}

// loadCompleted reads the "_done" sibling of path.
func (s *Stitcher) loadCompleted(path string) (*tile.Buffer, string, error) {
	done := tile.DonePath(path)
	ok, err := s.proc.Exists(done)
	if err != nil {
		return nil, done, err
	}
	if !ok {
		return nil, done, &DoneMissingError{Path: done}
	}

	buf, err := s.proc.Load(done)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, done, &DoneMissingError{Path: done}
		}
		return nil, done, err
	}
	return buf, done, nil
}

// LoadDone reads the completed counterpart of a pending part. The
// watermark added by the generator is erased.
func (s *Stitcher) LoadDone(p tile.Part) (tile.Part, error) {
	buf, path, err := s.loadCompleted(p.Path)
	if err != nil {
		return tile.Part{}, err
	}
	if p.Buffer != nil && !buf.SameShape(p.Buffer) {
		return tile.Part{}, fmt.Errorf("%w: %s is %dx%d, pending part is %dx%d",
			stitch.ErrShapeMismatch, path, buf.Width, buf.Height, p.Buffer.Width, p.Buffer.Height)
	}

	return tile.Part{
		Path:      path,
		Direction: p.Direction,
		Buffer:    stitch.ClearLogo(buf),
		Index:     p.Index,
	}, nil
}

// MergeDirection joins the completed parts of one direction into the
// direction's "_done" strip next to the source and returns its path.
func (s *Stitcher) MergeDirection(ctx context.Context, source string, parts []tile.Part) (string, error) {
	if len(parts) == 0 {
		return "", ErrNoDirections
	}

	done := make([]tile.Part, 0, len(parts))
	for _, p := range parts {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		d, err := s.LoadDone(p)
		if err != nil {
			return "", err
		}
		done = append(done, d)
	}

	strip, err := stitch.MergeParts(done)
	if err != nil {
		return "", err
	}

	path := tile.DonePath(tile.ShiftPath(tile.BaseName(source), parts[0].Direction))
	if err := s.proc.Save(path, strip); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("Merged direction",
		zap.Stringer("direction", parts[0].Direction),
		zap.Int("parts", len(parts)),
		zap.String("path", path))
	return path, nil
}

// Combine grows the source with every direction's "_done" strip, in the
// given order, and writes the final canvas. It returns the canvas path.
func (s *Stitcher) Combine(ctx context.Context, source string, dirs []tile.Direction) (string, error) {
	if len(dirs) == 0 {
		return "", ErrNoDirections
	}
	im, err := s.loadSource(source)
	if err != nil {
		return "", err
	}

	base := tile.BaseName(source)
	exts := make([]stitch.Extension, 0, len(dirs))
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if !d.Valid() {
			return "", stitch.ErrUnknownDirection
		}
		buf, _, err := s.loadCompleted(tile.ShiftPath(base, d))
		if err != nil {
			return "", err
		}
		exts = append(exts, stitch.Extension{Direction: d, Completed: buf})
	}

	canvas, err := stitch.Stitch(im, exts...)
	if err != nil {
		return "", err
	}

	path := tile.FullPath(base)
	if err := s.proc.Save(path, canvas); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	s.logger.Info("Wrote panorama",
		zap.String("path", path),
		zap.Int("width", canvas.Width),
		zap.Int("height", canvas.Height))
	return path, nil
}

// Preview writes a copy of the image at path scaled to fit maxWidth ×
// maxHeight and returns the preview path.
func (s *Stitcher) Preview(ctx context.Context, path string, maxWidth, maxHeight int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	im, err := s.proc.Load(path)
	if err != nil {
		return "", err
	}

	small, err := preview.Fit(im, maxWidth, maxHeight)
	if err != nil {
		return "", err
	}
	out := tile.PreviewPath(path)
	if err := s.proc.Save(out, small); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	s.logger.Debug("Wrote preview", zap.String("path", out), zap.Int("width", small.Width), zap.Int("height", small.Height))
	return out, nil
}
