package service

import (
	"context"
	"fmt"

	"github.com/wricardo/auto-driving-car/sim/engine"
	"github.com/wricardo/auto-driving-car/sim/input"
)

// simulationServiceImpl implements the SimulationService interface
type simulationServiceImpl struct {
	scenarios ScenarioManager
}

// NewSimulationService creates a new simulation service instance
func NewSimulationService(scenarios ScenarioManager) SimulationService {
	return &simulationServiceImpl{
		scenarios: scenarios,
	}
}

// SimulateSingle replays one car from the three-line text layout
func (s *simulationServiceImpl) SimulateSingle(ctx context.Context, raw string) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in, err := input.ParseSingle(raw)
	if err != nil {
		return nil, &InputError{Err: err}
	}

	result, err := runSingle(in.Scenario(""))
	if err != nil {
		return nil, &InputError{Err: err}
	}
	return result, nil
}

// SimulateMulti runs the collision simulator from the multi-car text layout
func (s *simulationServiceImpl) SimulateMulti(ctx context.Context, raw string) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	in, err := input.ParseMulti(raw)
	if err != nil {
		return nil, &InputError{Err: err}
	}

	result, err := runMulti(in.Scenario(""))
	if err != nil {
		return nil, &InputError{Err: err}
	}
	return result, nil
}

// RunScenario replays a stored scenario on fresh state
func (s *simulationServiceImpl) RunScenario(ctx context.Context, name string) (*RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sc, err := s.scenarios.LoadScenario(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenario %s: %w", name, err)
	}

	var result *RunResult
	if sc.Multi() {
		result, err = runMulti(sc)
	} else {
		result, err = runSingle(sc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to run scenario %s: %w", name, err)
	}

	result.Scenario = name
	return result, nil
}

// ListScenarios returns all available scenarios
func (s *simulationServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.scenarios.ListScenarios()
}

// LoadScenario returns a stored scenario definition
func (s *simulationServiceImpl) LoadScenario(ctx context.Context, name string) (*engine.Scenario, error) {
	return s.scenarios.LoadScenario(name)
}

// SaveScenario validates and stores a scenario
func (s *simulationServiceImpl) SaveScenario(ctx context.Context, name string, scenario *engine.Scenario) error {
	if scenario == nil {
		return &InputError{Err: fmt.Errorf("scenario cannot be nil")}
	}
	if scenario.Name == "" {
		scenario.Name = name
	}
	if err := engine.ValidateScenario(scenario); err != nil {
		return &InputError{Err: err}
	}
	return s.scenarios.SaveScenario(name, scenario)
}

// runSingle replays the only car of sc command by command
func runSingle(sc *engine.Scenario) (*RunResult, error) {
	grid, participants, err := sc.Build()
	if err != nil {
		return nil, err
	}
	if len(participants) != 1 {
		return nil, fmt.Errorf("single-car run needs exactly one car, got %d", len(participants))
	}

	car := participants[0].Car
	trace := car.Replay(participants[0].Commands, grid)

	return &RunResult{
		Mode:          ModeSingle,
		Output:        car.Pose(),
		Grid:          *grid,
		Cars:          []engine.CarState{car.State()},
		MaxSteps:      len(trace),
		StepsExecuted: len(trace),
		Trace:         trace,
	}, nil
}

// runMulti drives every car of sc through the collision simulator
func runMulti(sc *engine.Scenario) (*RunResult, error) {
	grid, participants, err := sc.Build()
	if err != nil {
		return nil, err
	}

	outcome := engine.NewSimulator(grid).Run(participants)

	return &RunResult{
		Mode:          ModeMulti,
		Output:        outcome.Report(),
		Grid:          *grid,
		Cars:          outcome.Cars,
		Collision:     outcome.Collision,
		MaxSteps:      outcome.MaxSteps,
		StepsExecuted: outcome.StepsExecuted,
		Trace:         outcome.Trace,
	}, nil
}
