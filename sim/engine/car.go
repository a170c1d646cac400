package engine

import "fmt"

// Car is a point agent with a position and a heading
type Car struct {
	Name        string      `json:"name,omitempty"`
	X           int         `json:"x"`
	Y           int         `json:"y"`
	Orientation Orientation `json:"orientation"`
}

// NewCar creates a car at (x, y) facing orientation ("N", "E", "S" or "W").
// The name is optional for single-car replays.
func NewCar(x, y int, orientation string, name string) (*Car, error) {
	if x < 0 || y < 0 {
		return nil, fmt.Errorf("%w, got (%d,%d)", ErrInvalidPosition, x, y)
	}
	o, err := ParseOrientation(orientation)
	if err != nil {
		return nil, err
	}
	return &Car{Name: name, X: x, Y: y, Orientation: o}, nil
}

// Position returns the current coordinates
func (c *Car) Position() Position {
	return Position{X: c.X, Y: c.Y}
}

// RotateLeft turns the car 90 degrees counter-clockwise
func (c *Car) RotateLeft() {
	c.Orientation = c.Orientation.Previous()
}

// RotateRight turns the car 90 degrees clockwise
func (c *Car) RotateRight() {
	c.Orientation = c.Orientation.Next()
}

// MoveForward advances one cell if the target is inside the grid.
// It reports whether the car moved.
func (c *Car) MoveForward(grid *Grid) bool {
	if !c.Orientation.Valid() {
		return false
	}
	next := c.Position().Add(c.Orientation.Delta())
	if !grid.ContainsPosition(next) {
		return false
	}
	c.X, c.Y = next.X, next.Y
	return true
}

// Apply executes a single command. Unknown commands are ignored.
// It reports whether the car's position changed.
func (c *Car) Apply(cmd Command, grid *Grid) bool {
	switch cmd {
	case Left:
		c.RotateLeft()
	case Right:
		c.RotateRight()
	case Forward:
		return c.MoveForward(grid)
	}
	return false
}

// ApplyCommands executes commands left to right, skipping unknown runes
func (c *Car) ApplyCommands(commands string, grid *Grid) {
	for _, r := range commands {
		c.Apply(Command(r), grid)
	}
}

// Replay is ApplyCommands that also returns one StepInfo per rune
func (c *Car) Replay(commands string, grid *Grid) []StepInfo {
	trace := make([]StepInfo, 0, len(commands))
	step := 0
	for _, r := range commands {
		step++
		trace = append(trace, c.step(step, Command(r), grid))
	}
	return trace
}

// step applies cmd and records what happened
func (c *Car) step(n int, cmd Command, grid *Grid) StepInfo {
	from := c.Position()
	c.Apply(cmd, grid)
	info := StepInfo{
		Step:        n,
		Car:         c.Name,
		Command:     string(cmd),
		From:        from,
		To:          c.Position(),
		Orientation: c.Orientation,
	}
	switch {
	case !cmd.Valid():
		info.Ignored = true
	case cmd == Forward && info.From == info.To:
		info.Blocked = true
	}
	return info
}

// State returns a snapshot of the car
func (c *Car) State() CarState {
	return CarState{Name: c.Name, X: c.X, Y: c.Y, Orientation: c.Orientation}
}

// Pose renders "x y O" without the name
func (c *Car) Pose() string {
	return fmt.Sprintf("%d %d %s", c.X, c.Y, c.Orientation)
}

// Format renders "x y O", prefixed with the name when one is set
func (c *Car) Format() string {
	if c.Name == "" {
		return c.Pose()
	}
	return c.Name + " " + c.Pose()
}

// String implements fmt.Stringer
func (c *Car) String() string {
	return c.Format()
}
