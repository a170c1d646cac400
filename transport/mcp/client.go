package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/auto-driving-car/sim/engine"
	"github.com/wricardo/auto-driving-car/sim/service"
)

// Number of trace lines shown before the output is truncated
const traceLimit = 40

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Auto Driving Car Simulator",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Auto Driving Car Simulator - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Cars drive on a rectangular grid. Each car has a position and a facing
(N, E, S, W) and replays a command string: L turns left, R turns right,
F moves one cell forward. A move that would leave the grid is ignored.

AVAILABLE TOOLS:
- simulate_car: Replay one car and get its final position
- simulate_collision: Replay several cars in lock-step and report the first collision
- list_scenarios: List stored scenarios
- get_scenario: Show a stored scenario
- run_scenario: Replay a stored scenario
- save_scenario: Store a new scenario
- simulation_instructions: Input formats and rules in detail`),
	)

	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulate_car",
		Description: "Replay a single car. Input is three lines: 'W H', 'X Y D', commands.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"input": map[string]interface{}{
					"type":        "string",
					"description": "Three lines, e.g. \"10 10\\n1 2 N\\nFFRFFFFRRL\"",
				},
				"channel": map[string]interface{}{
					"type":        "string",
					"description": "WebSocket channel to broadcast the run to (optional)",
				},
			},
			Required: []string{"input"},
		},
	}, c.handleSimulateCar)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulate_collision",
		Description: "Replay several named cars in lock-step and report the first collision",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"input": map[string]interface{}{
					"type":        "string",
					"description": "Field line 'W H' then, per car, a name line, an 'X Y D' line and a commands line",
				},
				"channel": map[string]interface{}{
					"type":        "string",
					"description": "WebSocket channel to broadcast the run to (optional)",
				},
			},
			Required: []string{"input"},
		},
	}, c.handleSimulateCollision)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List stored scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_scenario",
		Description: "Show the definition of a stored scenario",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario identifier from list_scenarios",
				},
			},
			Required: []string{"scenario_id"},
		},
	}, c.handleGetScenario)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_scenario",
		Description: "Replay a stored scenario on fresh state",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario identifier from list_scenarios",
				},
				"channel": map[string]interface{}{
					"type":        "string",
					"description": "WebSocket channel to broadcast the run to (optional)",
				},
			},
			Required: []string{"scenario_id"},
		},
	}, c.handleRunScenario)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "save_scenario",
		Description: "Store a scenario in the library",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario": map[string]interface{}{
					"type":        "object",
					"description": "Scenario with name, description, width, height and cars [{name, x, y, orientation, commands}]",
				},
			},
			Required: []string{"scenario"},
		},
	}, c.handleSaveScenario)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "simulation_instructions",
		Description: "Get input formats, movement rules and collision rules",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// ServeStdio serves the MCP protocol over stdin/stdout until EOF
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// apiCall makes an HTTP call to the REST API
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// arguments returns the tool arguments as a map, never nil
func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

func withChannel(path, channel string) string {
	if channel == "" {
		return path
	}
	return path + "?channel=" + url.QueryEscape(channel)
}

// Tool handlers

func (c *Client) handleSimulateCar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.simulate(ctx, request, service.ModeSingle)
}

func (c *Client) handleSimulateCollision(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return c.simulate(ctx, request, service.ModeMulti)
}

func (c *Client) simulate(ctx context.Context, request mcp.CallToolRequest, mode string) (*mcp.CallToolResult, error) {
	args := arguments(request)
	input, _ := args["input"].(string)
	channel, _ := args["channel"].(string)

	if strings.TrimSpace(input) == "" {
		return mcp.NewToolResultError("input is required"), nil
	}

	body := map[string]string{
		"mode":  mode,
		"input": input,
	}

	var result service.RunResult
	if err := c.apiCall(ctx, "POST", withChannel("/api/simulate", channel), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []*service.ScenarioInfo
	if err := c.apiCall(ctx, "GET", "/api/scenarios", nil, &scenarios); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(scenarios) == 0 {
		return mcp.NewToolResultText("No scenarios stored."), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Available scenarios (%d):\n", len(scenarios))
	for _, info := range scenarios {
		fmt.Fprintf(&b, "- %s: %s (%dx%d, %d car(s), %s)\n",
			info.ScenarioID, info.Name, info.Width, info.Height, info.Cars, info.Mode)
		if info.Description != "" {
			fmt.Fprintf(&b, "  %s\n", info.Description)
		}
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, _ := args["scenario_id"].(string)
	if id == "" {
		return mcp.NewToolResultError("scenario_id is required"), nil
	}

	var sc engine.Scenario
	if err := c.apiCall(ctx, "GET", "/api/scenarios/"+url.PathEscape(id), nil, &sc); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatScenario(&sc)), nil
}

func (c *Client) handleRunScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	id, _ := args["scenario_id"].(string)
	channel, _ := args["channel"].(string)
	if id == "" {
		return mcp.NewToolResultError("scenario_id is required"), nil
	}

	path := withChannel("/api/scenarios/"+url.PathEscape(id)+"/run", channel)

	var result service.RunResult
	if err := c.apiCall(ctx, "POST", path, nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatRunResult(&result)), nil
}

func (c *Client) handleSaveScenario(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	raw, ok := args["scenario"]
	if !ok {
		return mcp.NewToolResultError("scenario is required"), nil
	}

	var resp struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := c.apiCall(ctx, "POST", "/api/scenarios", raw, &resp); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Saved scenario: %s", resp.ScenarioID)), nil
}

func (c *Client) handleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Auto Driving Car Simulator - Instructions

GRID:
• Width W and height H; cells are (x, y) with 0 <= x < W and 0 <= y < H
• (0, 0) is the bottom-left corner, north is +y and east is +x

COMMANDS:
• L - rotate 90° left (N -> W -> S -> E -> N)
• R - rotate 90° right (N -> E -> S -> W -> N)
• F - move one cell forward; a move that would leave the grid is ignored

SINGLE CAR (simulate_car):
  10 10
  1 2 N
  FFRFFFFRRL
Result: the final position and facing, e.g. "5 4 S"

SEVERAL CARS (simulate_collision):
  10 10

  A
  1 2 N
  FFRFFFFRRL

  B
  7 8 W
  FFLFFFFFFF
Blank lines are optional. Car names must be unique.

COLLISION RULES:
• All cars take step 1, then step 2, and so on, in input order within a step
• A collision happens when a car moves onto a cell occupied by another car
• Cars that finished their commands stay on the grid and can still be hit
• Turning or a move blocked by the edge never causes a collision
• The first collision stops the run
Result: "A B" (names sorted), the cell "x y", and the step number on three
lines, or "no collision".

SCENARIOS:
Use list_scenarios, get_scenario and run_scenario to replay stored setups,
or save_scenario to add one.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatRunResult(result *service.RunResult) string {
	var b strings.Builder

	if result.Scenario != "" {
		fmt.Fprintf(&b, "Scenario: %s\n", result.Scenario)
	}
	fmt.Fprintf(&b, "Result:\n%s\n\n", result.Output)
	fmt.Fprintf(&b, "Grid: %dx%d | Mode: %s | Steps: %d/%d\n",
		result.Grid.Width, result.Grid.Height, result.Mode, result.StepsExecuted, result.MaxSteps)

	if result.Collision != nil {
		col := result.Collision
		fmt.Fprintf(&b, "Collision: %s and %s at (%d,%d) on step %d\n",
			col.Cars[0], col.Cars[1], col.Position.X, col.Position.Y, col.Step)
	}

	if len(result.Cars) > 0 {
		b.WriteString("Final cars:\n")
		for _, car := range result.Cars {
			name := car.Name
			if name == "" {
				name = "car"
			}
			fmt.Fprintf(&b, "  %s: %d %d %s\n", name, car.X, car.Y, car.Orientation)
		}
	}

	if len(result.Trace) > 0 {
		b.WriteString("Trace:\n")
		for i, step := range result.Trace {
			if i == traceLimit {
				fmt.Fprintf(&b, "  ... %d more\n", len(result.Trace)-traceLimit)
				break
			}
			b.WriteString("  " + formatStep(step) + "\n")
		}
	}

	return b.String()
}

func formatStep(step engine.StepInfo) string {
	line := fmt.Sprintf("%d", step.Step)
	if step.Car != "" {
		line += " " + step.Car
	}
	line += fmt.Sprintf(" %s (%d,%d)->(%d,%d) %s", step.Command, step.From.X, step.From.Y, step.To.X, step.To.Y, step.Orientation)
	switch {
	case step.Ignored:
		line += " ignored"
	case step.Blocked:
		line += " blocked"
	}
	return line
}

func formatScenario(sc *engine.Scenario) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Fprintf(&b, "%s\n", sc.Description)
	}
	fmt.Fprintf(&b, "Grid: %dx%d\n", sc.Width, sc.Height)
	for _, car := range sc.Cars {
		name := car.Name
		if name == "" {
			name = "car"
		}
		fmt.Fprintf(&b, "- %s at %d %d %s, commands %s\n", name, car.X, car.Y, car.Orientation, car.Commands)
	}
	return b.String()
}
