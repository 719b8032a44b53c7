package tile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// BaseName strips the extension from path, keeping its directory.
func BaseName(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// PartPath names the pending artifact of one tile in a sequence.
func PartPath(base string, d Direction, index int) string {
	return fmt.Sprintf("%s_%s_%03d.png", base, d.Token(), index)
}

// ShiftPath names the single-shift artifact of a small image.
func ShiftPath(base string, d Direction) string {
	return fmt.Sprintf("%s_%s.png", base, d.Token())
}

// DonePath names the externally completed counterpart of a pending artifact
// by inserting "_done" before its extension.
func DonePath(path string) string {
	return BaseName(path) + "_done" + filepath.Ext(path)
}

// FullPath names the final stitched canvas.
func FullPath(base string) string {
	return base + "_full.png"
}

// PreviewPath names the downscaled preview of an image.
func PreviewPath(path string) string {
	return BaseName(path) + "_preview.png"
}
