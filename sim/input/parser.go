package input

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wricardo/auto-driving-car/sim/engine"
)

// Error is a user-facing validation failure
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func errorf(format string, args ...any) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

// User-facing messages
const (
	MsgSingleLineCount    = "Please provide exactly 3 lines of input."
	MsgDimensions         = "Field dimensions must be integers."
	MsgPosition           = "Initial position must be integers."
	MsgDirection          = "Initial direction must be one of 'N', 'E', 'S', or 'W'."
	MsgCommands           = "Commands must be a sequence of 'R', 'L', and 'F' only."
	MsgCommandLimit       = "Commands must be at most %d characters long."
	MsgNegativeDimensions = "Width and height must be non-negative."
	MsgNegativePosition   = "Coordinates must be non-negative."
	MsgMultiFormat        = "Invalid input format. Please provide field size and details for each car."
	MsgCarPositionFormat  = "Invalid position for car %s. Must be integers."
	MsgCarDirectionFormat = "Invalid direction for car %s. Must be one of 'N', 'E', 'S', 'W'."
	MsgCarCommandsFormat  = "Invalid commands for car %s. Must be 'R', 'L', 'F' only."
	MsgCarNameFormat      = "Duplicate car name %s."
	MsgCarCommandLimit    = "Too many commands for car %s. At most %d are allowed."
)

// CarInput is one parsed car
type CarInput struct {
	Name        string `json:"name,omitempty"`
	X           int    `json:"x"`
	Y           int    `json:"y"`
	Orientation string `json:"orientation"`
	Commands    string `json:"commands"`
}

// SingleInput is a parsed single-car request
type SingleInput struct {
	Width  int      `json:"width"`
	Height int      `json:"height"`
	Car    CarInput `json:"car"`
}

// MultiInput is a parsed multi-car request
type MultiInput struct {
	Width  int        `json:"width"`
	Height int        `json:"height"`
	Cars   []CarInput `json:"cars"`
}

// Scenario converts the input into an engine scenario
func (in *SingleInput) Scenario(name string) *engine.Scenario {
	return &engine.Scenario{
		Name:   name,
		Width:  in.Width,
		Height: in.Height,
		Cars:   []engine.CarSpec{in.Car.spec()},
	}
}

// Scenario converts the input into an engine scenario
func (in *MultiInput) Scenario(name string) *engine.Scenario {
	sc := &engine.Scenario{
		Name:   name,
		Width:  in.Width,
		Height: in.Height,
		Cars:   make([]engine.CarSpec, 0, len(in.Cars)),
	}
	for _, car := range in.Cars {
		sc.Cars = append(sc.Cars, car.spec())
	}
	return sc
}

func (c CarInput) spec() engine.CarSpec {
	return engine.CarSpec{
		Name:        c.Name,
		X:           c.X,
		Y:           c.Y,
		Orientation: c.Orientation,
		Commands:    c.Commands,
	}
}

// splitLines normalizes line endings and trims surrounding whitespace
func splitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	return strings.Split(strings.TrimSpace(raw), "\n")
}

// parseDimensions reads "W H"
func parseDimensions(line string) (int, int, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, false
	}
	width, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, false
	}
	height, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, false
	}
	return width, height, true
}

// parsePose reads "X Y O". The heading is returned unchecked.
func parsePose(line string) (int, int, string, bool) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return 0, 0, "", false
	}
	x, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, "", false
	}
	y, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, "", false
	}
	return x, y, fields[2], true
}

func validDirection(orientation string) bool {
	_, err := engine.ParseOrientation(orientation)
	return err == nil
}

// ParseSingle parses the three-line single-car layout. Format errors are
// reported before range errors.
func ParseSingle(raw string) (*SingleInput, error) {
	lines := splitLines(raw)
	if len(lines) != 3 {
		return nil, errorf(MsgSingleLineCount)
	}

	width, height, ok := parseDimensions(lines[0])
	if !ok {
		return nil, errorf(MsgDimensions)
	}

	x, y, orientation, ok := parsePose(lines[1])
	if !ok {
		return nil, errorf(MsgPosition)
	}

	if !validDirection(orientation) {
		return nil, errorf(MsgDirection)
	}

	commands := strings.TrimSpace(lines[2])
	if len(commands) > engine.MaxCommands {
		return nil, errorf(MsgCommandLimit, engine.MaxCommands)
	}
	if !engine.ValidCommands(commands) {
		return nil, errorf(MsgCommands)
	}

	if width < 0 || height < 0 {
		return nil, errorf(MsgNegativeDimensions)
	}
	if x < 0 || y < 0 {
		return nil, errorf(MsgNegativePosition)
	}

	return &SingleInput{
		Width:  width,
		Height: height,
		Car: CarInput{
			X:           x,
			Y:           y,
			Orientation: orientation,
			Commands:    commands,
		},
	}, nil
}

// ParseMulti parses the field size followed by name/pose/commands blocks.
// At least two cars are required.
func ParseMulti(raw string) (*MultiInput, error) {
	var lines []string
	for _, line := range splitLines(raw) {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	if len(lines) < 7 || (len(lines)-1)%3 != 0 {
		return nil, errorf(MsgMultiFormat)
	}

	width, height, ok := parseDimensions(lines[0])
	if !ok {
		return nil, errorf(MsgDimensions)
	}
	if width < 0 || height < 0 {
		return nil, errorf(MsgNegativeDimensions)
	}

	in := &MultiInput{Width: width, Height: height}
	seen := make(map[string]bool)

	for i := 1; i < len(lines); i += 3 {
		name := lines[i]
		if seen[name] {
			return nil, errorf(MsgCarNameFormat, name)
		}
		seen[name] = true

		x, y, orientation, ok := parsePose(lines[i+1])
		if !ok {
			return nil, errorf(MsgCarPositionFormat, name)
		}
		if !validDirection(orientation) {
			return nil, errorf(MsgCarDirectionFormat, name)
		}

		commands := lines[i+2]
		if len(commands) > engine.MaxCommands {
			return nil, errorf(MsgCarCommandLimit, name, engine.MaxCommands)
		}
		if !engine.ValidCommands(commands) {
			return nil, errorf(MsgCarCommandsFormat, name)
		}
		if x < 0 || y < 0 {
			return nil, errorf(MsgNegativePosition)
		}

		in.Cars = append(in.Cars, CarInput{
			Name:        name,
			X:           x,
			Y:           y,
			Orientation: orientation,
			Commands:    commands,
		})
	}

	return in, nil
}

