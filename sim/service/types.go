package service

import "github.com/wricardo/auto-driving-car/sim/engine"

// Run modes
const (
	ModeSingle = "single"
	ModeMulti  = "multi"
)

// RunResult contains the result of one simulation run
type RunResult struct {
	Mode     string `json:"mode"`
	Scenario string `json:"scenario,omitempty"`

	// Output is the plain-text answer: the final pose for a single car,
	// otherwise the collision report or "no collision".
	Output string `json:"output"`

	Grid          engine.Grid       `json:"grid"`
	Cars          []engine.CarState `json:"cars"`
	Collision     *engine.Collision `json:"collision,omitempty"`
	MaxSteps      int               `json:"max_steps"`
	StepsExecuted int               `json:"steps_executed"`

	// Per-step compact trace
	Trace []engine.StepInfo `json:"trace,omitempty"`
}

// ScenarioInfo provides information about a stored scenario
type ScenarioInfo struct {
	Filename    string `json:"filename"`
	ScenarioID  string `json:"scenario_id"` // The identifier to use for runs
	Name        string `json:"name"`
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Cars        int    `json:"cars"`
	Mode        string `json:"mode"`
}
