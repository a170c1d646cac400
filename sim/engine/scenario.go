package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
	"github.com/zclconf/go-cty/cty/gocty"
)

// CarSpec describes one car of a scenario
type CarSpec struct {
	Name        string `json:"name" hcl:"name,label"`
	X           int    `json:"x" hcl:"x"`
	Y           int    `json:"y" hcl:"y"`
	Orientation string `json:"orientation" hcl:"orientation"`
	Commands    string `json:"commands" hcl:"commands"`
}

// Scenario is a named, replayable simulation input loaded from JSON or HCL
type Scenario struct {
	Name        string    `json:"name" hcl:"name"`
	Description string    `json:"description,omitempty" hcl:"description,optional"`
	Width       int       `json:"width" hcl:"width"`
	Height      int       `json:"height" hcl:"height"`
	Cars        []CarSpec `json:"cars" hcl:"car,block"`
}

// Multi reports whether the scenario runs the collision simulator
func (sc *Scenario) Multi() bool {
	return len(sc.Cars) > 1
}

// ValidateScenario validates a scenario for correctness and replayability
func ValidateScenario(sc *Scenario) error {
	if sc == nil {
		return fmt.Errorf("scenario validation: scenario is nil")
	}
	if sc.Name == "" {
		return fmt.Errorf("scenario validation: name is required")
	}

	if sc.Width < 0 || sc.Height < 0 {
		return fmt.Errorf("scenario validation: %w, got %dx%d", ErrInvalidDimensions, sc.Width, sc.Height)
	}
	if sc.Width > MaxGridSize || sc.Height > MaxGridSize {
		return fmt.Errorf("scenario validation: width and height must be at most %d, got %dx%d", MaxGridSize, sc.Width, sc.Height)
	}

	if len(sc.Cars) == 0 {
		return fmt.Errorf("scenario validation: at least one car is required")
	}
	if len(sc.Cars) > MaxCars {
		return fmt.Errorf("scenario validation: at most %d cars are allowed, got %d", MaxCars, len(sc.Cars))
	}

	seen := make(map[string]bool, len(sc.Cars))
	for i, car := range sc.Cars {
		label := car.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
		}

		if sc.Multi() {
			if car.Name == "" {
				return fmt.Errorf("scenario validation: car %s needs a name when several cars are present", label)
			}
			if seen[car.Name] {
				return fmt.Errorf("scenario validation: duplicate car name %q", car.Name)
			}
			seen[car.Name] = true
		}

		if car.X < 0 || car.Y < 0 {
			return fmt.Errorf("scenario validation: car %s: %w, got (%d,%d)", label, ErrInvalidPosition, car.X, car.Y)
		}
		if car.X >= sc.Width || car.Y >= sc.Height {
			return fmt.Errorf("scenario validation: car %s starts at (%d,%d) outside the %dx%d grid", label, car.X, car.Y, sc.Width, sc.Height)
		}
		if _, err := ParseOrientation(car.Orientation); err != nil {
			return fmt.Errorf("scenario validation: car %s: %w", label, err)
		}
		if !ValidCommands(car.Commands) {
			return fmt.Errorf("scenario validation: car %s: commands must only contain %q, got %q", label, CommandSymbols, car.Commands)
		}
		if len(car.Commands) > MaxCommands {
			return fmt.Errorf("scenario validation: car %s: at most %d commands are allowed, got %d", label, MaxCommands, len(car.Commands))
		}
	}

	return nil
}

// Build creates a fresh grid and participants from the scenario
func (sc *Scenario) Build() (*Grid, []Participant, error) {
	grid, err := NewGrid(sc.Width, sc.Height)
	if err != nil {
		return nil, nil, err
	}

	participants := make([]Participant, 0, len(sc.Cars))
	for _, spec := range sc.Cars {
		car, err := NewCar(spec.X, spec.Y, spec.Orientation, spec.Name)
		if err != nil {
			if spec.Name == "" {
				return nil, nil, err
			}
			return nil, nil, fmt.Errorf("car %s: %w", spec.Name, err)
		}
		participants = append(participants, Participant{Car: car, Commands: spec.Commands})
	}

	return grid, participants, nil
}

// repeatFunc implements repeat(commands, count) for HCL scenario files
var repeatFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "commands", Type: cty.String},
		{Name: "count", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.String),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		var n int
		if err := gocty.FromCtyValue(args[1], &n); err != nil {
			return cty.UnknownVal(cty.String), err
		}
		if n < 0 || n > MaxCommands {
			return cty.UnknownVal(cty.String), fmt.Errorf("count must be between 0 and %d, got %d", MaxCommands, n)
		}
		return cty.StringVal(strings.Repeat(args[0].AsString(), n)), nil
	},
})

// hclContext exposes helper functions to HCL scenario files, e.g.
//
//	commands = "${repeat("F", 4)}R${repeat("F", 2)}"
var hclContext = &hcl.EvalContext{
	Functions: map[string]function.Function{
		"repeat": repeatFunc,
		"upper":  stdlib.UpperFunc,
	},
}

// DecodeScenario parses scenario data. Files ending in .hcl use HCL native
// syntax, everything else is read as JSON.
func DecodeScenario(filename string, data []byte) (*Scenario, error) {
	var sc Scenario
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".hcl":
		if err := hclsimple.Decode(filename, data, hclContext, &sc); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &sc); err != nil {
			return nil, err
		}
	}
	return &sc, nil
}

// LoadScenarioFile reads, decodes and validates a scenario file
func LoadScenarioFile(filename string) (*Scenario, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	sc, err := DecodeScenario(filename, data)
	if err != nil {
		return nil, err
	}

	if err := ValidateScenario(sc); err != nil {
		return nil, err
	}

	return sc, nil
}

// DefaultScenario returns the two-car collision example used when no
// scenario library is available
func DefaultScenario() *Scenario {
	return &Scenario{
		Name:        "collision",
		Description: "Two cars whose paths cross at step 7",
		Width:       10,
		Height:      10,
		Cars: []CarSpec{
			{Name: "A", X: 1, Y: 2, Orientation: "N", Commands: "FFRFFFFRRL"},
			{Name: "B", X: 7, Y: 8, Orientation: "W", Commands: "FFLFFFFFFF"},
		},
	}
}
