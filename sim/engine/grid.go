package engine

import "fmt"

// Grid is the rectangular field cars drive on. It is immutable once built.
type Grid struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewGrid creates a grid, rejecting negative dimensions
func NewGrid(width, height int) (*Grid, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w, got %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Grid{Width: width, Height: height}, nil
}

// Contains checks if the given coordinates are inside the grid
func (g *Grid) Contains(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// ContainsPosition is Contains for a Position
func (g *Grid) ContainsPosition(p Position) bool {
	return g.Contains(p.X, p.Y)
}

// String renders the grid as "width height"
func (g *Grid) String() string {
	return fmt.Sprintf("%d %d", g.Width, g.Height)
}
