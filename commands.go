package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/auto-driving-car/sim/engine"
	"github.com/wricardo/auto-driving-car/sim/service"
)

// errValidationFailed is returned by validate when any file is invalid
var errValidationFailed = errors.New("one or more scenarios are invalid")

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Replay input text from FILE (or stdin) and print the result",
		ArgsUsage: "[FILE]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "multi",
				Aliases: []string{"m"},
				Usage:   "Read the multi-car layout and report the first collision",
			},
			&cli.StringFlag{
				Name:  "scenario",
				Usage: "Replay a stored scenario instead of reading input text",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "Print every executed step after the result",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			simService := runService(cmd.String("scenario-dir"))

			result, err := executeRun(ctx, cmd, simService)
			if err != nil {
				var inputErr *service.InputError
				if errors.As(err, &inputErr) {
					return fmt.Errorf("Error: %s", inputErr.Error())
				}
				return err
			}

			out := writer(cmd)
			fmt.Fprintln(out, result.Output)
			if cmd.Bool("trace") {
				for _, step := range result.Trace {
					fmt.Fprintln(out, formatTraceLine(step))
				}
			}
			return nil
		},
	}
}

func executeRun(ctx context.Context, cmd *cli.Command, simService service.SimulationService) (*service.RunResult, error) {
	if name := cmd.String("scenario"); name != "" {
		return simService.RunScenario(ctx, name)
	}

	raw, err := readInput(cmd)
	if err != nil {
		return nil, err
	}

	if cmd.Bool("multi") {
		return simService.SimulateMulti(ctx, raw)
	}
	return simService.SimulateSingle(ctx, raw)
}

// readInput reads the FILE argument, or stdin when it is absent or "-"
func readInput(cmd *cli.Command) (string, error) {
	path := cmd.Args().First()

	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(reader(cmd))
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(data), nil
}

// runService lets "run" work without a scenario directory as long as no
// stored scenario is requested
func runService(scenarioDir string) service.SimulationService {
	if simService, _, err := initializeServices(scenarioDir); err == nil {
		return simService
	}
	return service.NewSimulationService(emptyLibrary{})
}

// emptyLibrary is the scenario manager used when no directory is available
type emptyLibrary struct{}

func (emptyLibrary) LoadScenario(name string) (*engine.Scenario, error) {
	return nil, fmt.Errorf("scenario %s: no scenario directory", name)
}

func (emptyLibrary) ListScenarios() ([]*service.ScenarioInfo, error) {
	return nil, nil
}

func (emptyLibrary) GetDefault() *engine.Scenario {
	return engine.DefaultScenario()
}

func (emptyLibrary) SaveScenario(name string, sc *engine.Scenario) error {
	return fmt.Errorf("scenario %s: no scenario directory", name)
}

func formatTraceLine(step engine.StepInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%3d", step.Step)
	if step.Car != "" {
		fmt.Fprintf(&b, " %s", step.Car)
	}
	fmt.Fprintf(&b, " %s %s -> %s %s", step.Command, step.From, step.To, step.Orientation)
	switch {
	case step.Ignored:
		b.WriteString(" (ignored)")
	case step.Blocked:
		b.WriteString(" (blocked)")
	}
	return b.String()
}

// ValidationResult captures the outcome of validating a single file.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func validateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Validate every scenario file in DIR (defaults to --scenario-dir)",
		ArgsUsage: "[DIR]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			dir := cmd.Args().First()
			if dir == "" {
				dir = cmd.String("scenario-dir")
			}

			results, err := validateDir(dir)
			if err != nil {
				return err
			}

			out := writer(cmd)
			invalid := 0
			for _, result := range results {
				if result.Valid {
					fmt.Fprintf(out, "✓ %s\n", result.File)
					continue
				}
				invalid++
				fmt.Fprintf(out, "✗ %s\n", result.File)
				for _, msg := range result.Errors {
					fmt.Fprintf(out, "    - %s\n", msg)
				}
			}
			fmt.Fprintf(out, "\n%d scenario(s), %d invalid\n", len(results), invalid)

			if invalid > 0 {
				return errValidationFailed
			}
			return nil
		},
	}
}

// validateDir validates every .json and .hcl file in dir, sorted by name
func validateDir(dir string) ([]ValidationResult, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.hcl"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("cannot read scenario directory: %w", err)
		}
	}
	sort.Strings(files)

	results := make([]ValidationResult, 0, len(files))
	for _, file := range files {
		results = append(results, validateScenarioFile(file))
	}
	return results, nil
}

// validateScenarioFile decodes, validates and dry-runs one scenario
func validateScenarioFile(path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
	}

	sc, err := engine.LoadScenarioFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	if _, _, err := sc.Build(); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}
	return result
}
