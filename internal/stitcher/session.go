package stitcher

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/kiesman99/panorama/internal/stitch"
	"github.com/kiesman99/panorama/pkg/tile"
)

// State is the position of a Session in the tile-by-tile progression.
type State int

const (
	// AwaitingFirstTile: parts are prepared, nothing has been handed out.
	AwaitingFirstTile State = iota
	// AwaitingNextTile: one pending part is out for generation.
	AwaitingNextTile
	// AllDirectionsComplete: the final canvas has been written.
	AllDirectionsComplete
)

func (s State) String() string {
	switch s {
	case AwaitingFirstTile:
		return "awaiting_first_tile"
	case AwaitingNextTile:
		return "awaiting_next_tile"
	case AllDirectionsComplete:
		return "all_directions_complete"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Session drives a full panorama one tile at a time. Each TileReady event
// either hands out the next pending part, merges a finished direction, or
// writes the final canvas. A failed event leaves the session where it was,
// so the same event can be retried once the missing artifact exists.
type Session struct {
	mu sync.Mutex

	st     *Stitcher
	source string
	group  tile.Group
	order  []tile.Direction
	parts  map[tile.Direction][]tile.Part
	counts map[tile.Direction]int

	state  State
	dir    int
	index  int
	output string
}

// NewSession prepares every part of the group's directions.
func (s *Stitcher) NewSession(ctx context.Context, source string, group tile.Group) (*Session, error) {
	if !group.Valid() {
		return nil, ErrGroupCount
	}
	order := group.Directions()
	parts, err := s.PrepareParts(ctx, source, order)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session prepared",
		zap.String("source", source),
		zap.Stringer("group", group),
		zap.Int(order[0].String(), len(parts[order[0]])),
		zap.Int(order[1].String(), len(parts[order[1]])))

	counts := make(map[tile.Direction]int, len(parts))
	for d, p := range parts {
		counts[d] = len(p)
	}

	return &Session{
		st:     s,
		source: source,
		group:  group,
		order:  order,
		parts:  parts,
		counts: counts,
		state:  AwaitingFirstTile,
	}, nil
}

// Source returns the path of the image being extended.
func (ss *Session) Source() string { return ss.source }

// Group returns the direction group being extended.
func (ss *Session) Group() tile.Group { return ss.group }

// Status is a snapshot of a session.
type Status struct {
	State     State
	Direction tile.Direction
	Index     int
	Pending   string
	Output    string
	Parts     map[tile.Direction]int
}

// Status returns a consistent snapshot of the session.
func (ss *Session) Status() Status {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.snapshot()
}

func (ss *Session) snapshot() Status {
	st := Status{
		State:  ss.state,
		Output: ss.output,
		Parts:  make(map[tile.Direction]int, len(ss.counts)),
	}
	for d, n := range ss.counts {
		st.Parts[d] = n
	}
	if ss.state == AwaitingNextTile {
		st.Direction = ss.order[ss.dir]
		st.Index = ss.index
		st.Pending = ss.parts[st.Direction][ss.index].Path
	}
	return st
}

// TileReady advances the progression by one step.
func (ss *Session) TileReady(ctx context.Context) (Status, error) {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	err := ss.advance(ctx)
	return ss.snapshot(), err
}

func (ss *Session) advance(ctx context.Context) error {
	switch ss.state {
	case AwaitingFirstTile:
		ss.dir, ss.index = 0, 0
		if err := ss.st.WritePart(ss.parts[ss.order[0]][0]); err != nil {
			return err
		}
		ss.state = AwaitingNextTile
		return nil

	case AwaitingNextTile:
		return ss.next(ctx)

	default:
		return ErrSessionComplete
	}
}

func (ss *Session) next(ctx context.Context) error {
	d := ss.order[ss.dir]
	seq := ss.parts[d]

	done, err := ss.st.LoadDone(seq[ss.index])
	if err != nil {
		return err
	}

	if ss.index+1 < len(seq) {
		combined, err := stitch.Combine(done, seq[ss.index+1])
		if err != nil {
			return err
		}
		if err := ss.st.WritePart(combined); err != nil {
			return err
		}
		seq[ss.index+1] = combined
		ss.index++
		return nil
	}

	if _, err := ss.st.MergeDirection(ctx, ss.source, seq); err != nil {
		return err
	}

	if ss.dir+1 < len(ss.order) {
		first := ss.parts[ss.order[ss.dir+1]][0]
		if err := ss.st.WritePart(first); err != nil {
			return err
		}
		ss.dir++
		ss.index = 0
		return nil
	}

	out, err := ss.st.Combine(ctx, ss.source, ss.order)
	if err != nil {
		return err
	}
	ss.output = out
	ss.state = AllDirectionsComplete
	// Finished sessions may be kept around for status queries; the tile
	// buffers are no longer needed.
	ss.parts = nil
	ss.st.logger.Info("All directions complete", zap.String("output", out))
	return nil
}
