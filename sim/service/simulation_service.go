package service

import (
	"context"
	"errors"

	"github.com/wricardo/auto-driving-car/sim/engine"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// SimulationService defines all simulation operations
type SimulationService interface {
	// Ad-hoc runs from raw text
	SimulateSingle(ctx context.Context, raw string) (*RunResult, error)
	SimulateMulti(ctx context.Context, raw string) (*RunResult, error)

	// Scenario library
	RunScenario(ctx context.Context, name string) (*RunResult, error)
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, name string) (*engine.Scenario, error)
	SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error
}

// ScenarioManager handles scenario loading and storage
type ScenarioManager interface {
	LoadScenario(name string) (*engine.Scenario, error)
	ListScenarios() ([]*ScenarioInfo, error)
	GetDefault() *engine.Scenario
	SaveScenario(name string, scenario *engine.Scenario) error
}

// InputError wraps a caller mistake. The wrapped error's message is safe to
// show to the user.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	return e.Err.Error()
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Is makes every InputError match ErrInvalidInput
func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}
