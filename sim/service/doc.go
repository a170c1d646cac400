// Package service provides the business logic layer for the Auto Driving Car
// Simulator.
//
// The service package implements:
//   - Parsing and validating raw single-car and multi-car input
//   - Running the engine on fresh state for every request
//   - Replaying named scenarios from the scenario library
//   - Shaping results for the HTTP, WebSocket and MCP transports
//
// Core Interfaces:
//
// SimulationService is the main service interface. ScenarioManager loads,
// lists and saves scenarios and is implemented by the config package.
//
// Architecture:
//
// The service layer sits between the transports and the engine. It owns no
// simulation state between calls: every request builds its own grid, cars
// and simulator, so concurrent requests never share engine objects.
//
// Usage:
//
//	scenarios, err := config.NewManager("scenarios")
//	if err != nil {
//		log.Fatal(err)
//	}
//	sims := service.NewSimulationService(scenarios)
//
//	result, err := sims.SimulateSingle(ctx, "10 10\n1 2 N\nFFRFFFRRLF")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(result.Output) // 4 3 S
//
// Errors:
//
// Caller mistakes (malformed text, negative sizes, unknown headings) are
// returned as *InputError, which matches ErrInvalidInput with errors.Is.
package service
