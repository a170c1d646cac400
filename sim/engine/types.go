package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDimensions  = errors.New("width and height must be non-negative")
	ErrInvalidPosition    = errors.New("coordinates must be non-negative")
	ErrInvalidOrientation = errors.New("direction must be one of 'N', 'E', 'S', or 'W'")
)

const (
	// Validation constants for scenarios
	MaxGridSize    = 1000
	MaxCars        = 26
	MaxCommands    = 1000
	NoCollision    = "no collision"
	CommandSymbols = "LRF"
)

// Orientation is one of the four cardinal headings, in clockwise order.
type Orientation int

const (
	North Orientation = iota
	East
	South
	West
)

var orientationSymbols = [...]string{
	North: "N",
	East:  "E",
	South: "S",
	West:  "W",
}

// Unit vector for a forward move in each heading. North is +y.
var orientationDeltas = [...]Position{
	North: {X: 0, Y: 1},
	East:  {X: 1, Y: 0},
	South: {X: 0, Y: -1},
	West:  {X: -1, Y: 0},
}

// ParseOrientation converts "N", "E", "S" or "W" into an Orientation
func ParseOrientation(symbol string) (Orientation, error) {
	for i, s := range orientationSymbols {
		if s == symbol {
			return Orientation(i), nil
		}
	}
	return North, fmt.Errorf("%w, got %q", ErrInvalidOrientation, symbol)
}

// String returns the single-letter symbol
func (o Orientation) String() string {
	if !o.Valid() {
		return fmt.Sprintf("Orientation(%d)", int(o))
	}
	return orientationSymbols[o]
}

// Valid reports whether o is one of the four headings
func (o Orientation) Valid() bool {
	return o >= North && o <= West
}

// Next returns the heading after a 90 degree clockwise turn
func (o Orientation) Next() Orientation {
	return (o + 1) % 4
}

// Previous returns the heading after a 90 degree counter-clockwise turn
func (o Orientation) Previous() Orientation {
	return (o + 3) % 4
}

// Delta returns the unit vector of a forward move, or the zero vector for an
// invalid orientation
func (o Orientation) Delta() Position {
	if !o.Valid() {
		return Position{}
	}
	return orientationDeltas[o]
}

// MarshalText encodes the orientation as its symbol
func (o Orientation) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidOrientation, int(o))
	}
	return []byte(orientationSymbols[o]), nil
}

// UnmarshalText decodes an orientation symbol
func (o *Orientation) UnmarshalText(text []byte) error {
	parsed, err := ParseOrientation(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Command is a single replay instruction
type Command rune

const (
	Left    Command = 'L'
	Right   Command = 'R'
	Forward Command = 'F'
)

// Valid reports whether c is L, R or F
func (c Command) Valid() bool {
	return c == Left || c == Right || c == Forward
}

// ValidCommands reports whether every rune of commands is L, R or F
func ValidCommands(commands string) bool {
	for _, r := range commands {
		if !Command(r).Valid() {
			return false
		}
	}
	return true
}

// Position represents x,y coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the position as "x y"
func (p Position) String() string {
	return fmt.Sprintf("%d %d", p.X, p.Y)
}

// Add returns p shifted by d
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// CarState is a snapshot of a car used in results and traces
type CarState struct {
	Name        string      `json:"name,omitempty"`
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Orientation Orientation `json:"orientation"`
}

// StepInfo is a compact record of one applied command
type StepInfo struct {
	Step        int         `json:"step"`
	Car         string      `json:"car,omitempty"`
	Command     string      `json:"command"`
	From        Position    `json:"from"`
	To          Position    `json:"to"`
	Orientation Orientation `json:"orientation"`
	Blocked     bool        `json:"blocked,omitempty"`
	Ignored     bool        `json:"ignored,omitempty"`
}
