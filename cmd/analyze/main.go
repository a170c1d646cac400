// Command analyze prints quick, human-readable heuristics about scenario
// files: grid size, car count, command mix, blocked moves at the edges,
// shared starting cells and the simulated outcome.
//
// Usage:
//
//	go run ./cmd/analyze [DIR]
//
// DIR defaults to "scenarios".
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/auto-driving-car/sim/engine"
)

// CarStats summarizes one car of a scenario
type CarStats struct {
	Name     string
	Start    string
	Commands int
	Forward  int
	Turns    int
	Blocked  int
	Final    string
}

func main() {
	dir := "scenarios"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := scenarioFiles(dir)
	if err != nil {
		fmt.Printf("Error reading directory: %v\n", err)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeScenario(os.Stdout, file)
	}
}

// scenarioFiles lists .json and .hcl files in dir, sorted
func scenarioFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".json", ".hcl":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func analyzeScenario(w io.Writer, path string) {
	sc, err := engine.LoadScenarioFile(path)
	if err != nil {
		fmt.Fprintf(w, "Error loading scenario: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Name: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Fprintf(w, "Description: %s\n", sc.Description)
	}
	fmt.Fprintf(w, "Grid Size: %d x %d\n", sc.Width, sc.Height)
	fmt.Fprintf(w, "Cars: %d\n", len(sc.Cars))

	grid, participants, err := sc.Build()
	if err != nil {
		fmt.Fprintf(w, "Error building scenario: %v\n", err)
		return
	}

	// Shared starting cells collide as soon as another car drives in
	starts := make(map[engine.Position][]string)
	for _, p := range participants {
		pos := p.Car.Position()
		starts[pos] = append(starts[pos], p.Car.Name)
	}
	for pos, names := range starts {
		if len(names) > 1 {
			fmt.Fprintf(w, "⚠️  WARNING: cars %s start on the same cell (%d, %d)\n", strings.Join(names, ", "), pos.X, pos.Y)
		}
	}

	outcome := engine.NewSimulator(grid).Run(participants)
	stats := collectStats(sc, outcome)

	for _, s := range stats {
		label := s.Name
		if label == "" {
			label = "car"
		}
		fmt.Fprintf(w, "  %s: start %s, %d commands (%d forward, %d turns), final %s\n",
			label, s.Start, s.Commands, s.Forward, s.Turns, s.Final)
		if s.Blocked > 0 {
			fmt.Fprintf(w, "     %d forward move(s) blocked by the edge\n", s.Blocked)
		}
	}

	fmt.Fprintf(w, "Steps: %d of %d\n", outcome.StepsExecuted, outcome.MaxSteps)
	if outcome.Collided() {
		c := outcome.Collision
		fmt.Fprintf(w, "💥 Collision: %s and %s at (%d, %d) on step %d\n", c.Cars[0], c.Cars[1], c.Position.X, c.Position.Y, c.Step)
	} else if len(sc.Cars) > 1 {
		fmt.Fprintf(w, "✅ No collision\n")
	}
}

// collectStats combines the scenario definition with the executed trace
func collectStats(sc *engine.Scenario, outcome *engine.Outcome) []CarStats {
	stats := make([]CarStats, len(sc.Cars))
	index := make(map[string]int, len(sc.Cars))

	for i, car := range sc.Cars {
		stats[i] = CarStats{
			Name:     car.Name,
			Start:    fmt.Sprintf("%d %d %s", car.X, car.Y, car.Orientation),
			Commands: len(car.Commands),
			Forward:  strings.Count(car.Commands, "F"),
			Turns:    strings.Count(car.Commands, "L") + strings.Count(car.Commands, "R"),
		}
		index[car.Name] = i
	}

	for _, step := range outcome.Trace {
		if i, ok := index[step.Car]; ok && step.Blocked {
			stats[i].Blocked++
		}
	}

	for i, state := range outcome.Cars {
		if i < len(stats) {
			stats[i].Final = fmt.Sprintf("%d %d %s", state.X, state.Y, state.Orientation)
		}
	}

	return stats
}
