// Package mcp exposes the car simulator to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call is translated into a request
// against the REST API (see package api) and the JSON reply is rendered as
// readable text.
//
// MCP Tools:
//   - simulate_car: replay one car from the three-line input
//   - simulate_collision: replay several cars and report the first collision
//   - list_scenarios: list the scenario library
//   - get_scenario: show one scenario
//   - run_scenario: replay a stored scenario
//   - save_scenario: add a scenario to the library
//   - simulation_instructions: input formats and rules
//
// simulate_car, simulate_collision and run_scenario accept an optional
// channel argument; the run is then also pushed to WebSocket watchers.
//
// Transport Modes:
//   - Stdio: ServeStdio, used by the "mcp" subcommand
//   - HTTP: GetMCPServer().HandleMessage mounted at POST /mcp by "serve"
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	if err := client.ServeStdio(); err != nil {
//		log.Fatal(err)
//	}
package mcp
