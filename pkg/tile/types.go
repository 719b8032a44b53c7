package tile

// Geometry shared by every stage of the pipeline.
const (
	// Size is the edge length of a generation tile.
	Size = 1024
	// OverlapSize is the band shared by two adjacent tiles.
	OverlapSize = Size / 3
	// ShiftSize is how far content moves when a window is advanced.
	ShiftSize = Size - OverlapSize

	// LogoHeight and LogoWidth describe the watermark anchored at the
	// bottom-right corner of every generated tile.
	LogoHeight = 17
	LogoWidth  = 81
)

// Part is one tile of a panorama waiting for, or returned from, external
// generation.
type Part struct {
	Path      string
	Direction Direction
	Buffer    *Buffer
	Index     int
}
