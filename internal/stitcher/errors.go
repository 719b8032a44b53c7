package stitcher

import (
	"errors"
	"fmt"
)

var (
	// ErrDoneMissing is matched by every DoneMissingError.
	ErrDoneMissing = errors.New("completed artifact missing")

	// ErrGroupCount is returned when a full panorama is requested with
	// anything other than exactly one direction group.
	ErrGroupCount = errors.New("exactly one combined direction is supported")

	// ErrSessionComplete is returned for a tile-ready event after the
	// final canvas has been written.
	ErrSessionComplete = errors.New("all directions complete")

	// ErrNoDirections is returned when a flow is started without any
	// direction.
	ErrNoDirections = errors.New("no directions requested")
)

// DoneMissingError reports the "_done" artifact a step was waiting for.
type DoneMissingError struct {
	Path string
}

func (e *DoneMissingError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Path)
}

func (e *DoneMissingError) Is(target error) bool {
	return target == ErrDoneMissing
}
