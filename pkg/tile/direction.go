package tile

import (
	"fmt"
	"strings"
)

// Direction is the side toward which existing content is shifted. The canvas
// grows on the opposite side, which is why the filename token of a direction
// names the other compass point.
type Direction struct {
	name  string
	token string
}

var (
	Left  = Direction{name: "LEFT", token: "RIGHT"}
	Right = Direction{name: "RIGHT", token: "LEFT"}
	Up    = Direction{name: "UP", token: "DOWN"}
	Down  = Direction{name: "DOWN", token: "UP"}
)

// Directions returns every direction in canonical order.
func Directions() []Direction {
	return []Direction{Left, Right, Up, Down}
}

// ParseDirection parses a direction name, ignoring case.
func ParseDirection(s string) (Direction, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for _, d := range Directions() {
		if d.name == name {
			return d, nil
		}
	}
	return Direction{}, fmt.Errorf("unknown direction %q", s)
}

// ParseDirections parses a list of direction names, preserving order.
func ParseDirections(names []string) ([]Direction, error) {
	dirs := make([]Direction, 0, len(names))
	for _, n := range names {
		d, err := ParseDirection(n)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, d)
	}
	return dirs, nil
}

func (d Direction) String() string {
	if d.name == "" {
		return "INVALID"
	}
	return d.name
}

// Token is the string used when a direction is serialized into a path.
func (d Direction) Token() string { return d.token }

// Valid reports whether d is one of the four compass directions.
func (d Direction) Valid() bool { return d.name != "" }

// Horizontal reports whether d shifts content along the x axis.
func (d Direction) Horizontal() bool { return d == Left || d == Right }

// Leading reports whether d moves content toward the positive end of its
// axis, exposing pixels at the origin (RIGHT and DOWN).
func (d Direction) Leading() bool { return d == Right || d == Down }

func (d Direction) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("cannot marshal invalid direction")
	}
	return []byte(d.name), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Group is a pair of opposite directions extended together in one full
// panorama run.
type Group struct {
	name  string
	label string
	dirs  [2]Direction
}

var (
	LeftRight = Group{name: "left-right", label: "LEFT and RIGHT", dirs: [2]Direction{Left, Right}}
	UpDown    = Group{name: "up-down", label: "UP and DOWN", dirs: [2]Direction{Up, Down}}
)

// ParseGroup accepts "left-right", "LEFT_RIGHT" or "LEFT and RIGHT" style
// names for either group.
func ParseGroup(s string) (Group, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " and ", "-", " ", "-").Replace(norm)
	for _, g := range []Group{LeftRight, UpDown} {
		if g.name == norm {
			return g, nil
		}
	}
	return Group{}, fmt.Errorf("unknown direction group %q", s)
}

func (g Group) String() string { return g.label }

// Name is the short, flag-friendly group name.
func (g Group) Name() string { return g.name }

func (g Group) Valid() bool { return g.name != "" }

// Directions returns the group's directions in processing order.
func (g Group) Directions() []Direction {
	return []Direction{g.dirs[0], g.dirs[1]}
}
