// Package api provides the HTTP handlers of the car simulator.
//
// Endpoints:
//
// Form endpoints (plain-text replies, kept compatible with the browser form):
//   - POST /simulate - alias of /simulate_part1
//   - POST /simulate_part1 - one car, form field "input" with three lines
//   - POST /simulate_part2 - several cars, form field "input"
//
// A successful reply is the bare result, e.g. "5 4 S", "A B\n5 4\n7" or
// "no collision". Invalid input is answered with status 400 and a body
// starting with "Error: ".
//
// JSON API:
//   - GET /api/health - liveness probe
//   - POST /api/simulate - {"mode":"single|multi","input":"..."} returns the full run
//   - GET /api/scenarios - list the scenario library
//   - POST /api/scenarios - store a scenario (optional ?id= overrides its name)
//   - GET /api/scenarios/{name} - scenario definition
//   - POST /api/scenarios/{name}/run - replay a stored scenario
//
// Runs posted to /api/simulate or /api/scenarios/{name}/run with
// ?channel=<name> are also pushed to WebSocket watchers of that channel,
// which connect with GET /ws?channel=<name>.
//
// Errors are returned as JSON:
//
//	{
//	  "error": "error message"
//	}
//
// Usage:
//
//	svc := service.NewSimulationService(manager)
//	server := api.NewServer(svc, hub)
//	http.ListenAndServe(":8080", server)
package api
