package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func participant(t *testing.T, name string, x, y int, orientation, commands string) Participant {
	t.Helper()
	return Participant{Car: mustCar(t, x, y, orientation, name), Commands: commands}
}

func TestSimulator_SampleCollision(t *testing.T) {
	grid := mustGrid(t, 10, 10)
	outcome := NewSimulator(grid).Run([]Participant{
		participant(t, "A", 1, 2, "N", "FFRFFFFRRL"),
		participant(t, "B", 7, 8, "W", "FFLFFFFFFF"),
	})

	if outcome.Report() != "A B\n5 4\n7" {
		t.Errorf("Expected 'A B\\n5 4\\n7', got %q", outcome.Report())
	}

	expected := &Collision{Cars: [2]string{"A", "B"}, Position: Position{X: 5, Y: 4}, Step: 7}
	if diff := cmp.Diff(expected, outcome.Collision); diff != "" {
		t.Errorf("Collision mismatch (-want +got):\n%s", diff)
	}

	if outcome.MaxSteps != 10 {
		t.Errorf("Expected max steps 10, got %d", outcome.MaxSteps)
	}
	if outcome.StepsExecuted != 7 {
		t.Errorf("Expected 7 steps executed, got %d", outcome.StepsExecuted)
	}
	if len(outcome.Trace) != 14 {
		t.Errorf("Expected 14 trace entries, got %d", len(outcome.Trace))
	}

	wantCars := []CarState{
		{Name: "A", X: 5, Y: 4, Orientation: East},
		{Name: "B", X: 5, Y: 4, Orientation: South},
	}
	if diff := cmp.Diff(wantCars, outcome.Cars); diff != "" {
		t.Errorf("Final cars mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulator_NoCollision(t *testing.T) {
	grid := mustGrid(t, 10, 10)
	outcome := NewSimulator(grid).Run([]Participant{
		participant(t, "A", 1, 2, "N", "FFF"),
		participant(t, "B", 7, 8, "W", "FFFL"),
	})

	if outcome.Report() != NoCollision {
		t.Errorf("Expected %q, got %q", NoCollision, outcome.Report())
	}
	if outcome.Collided() {
		t.Error("Expected Collided() to be false")
	}
	if outcome.StepsExecuted != 4 {
		t.Errorf("Expected 4 steps executed, got %d", outcome.StepsExecuted)
	}

	wantCars := []CarState{
		{Name: "A", X: 1, Y: 5, Orientation: North},
		{Name: "B", X: 4, Y: 8, Orientation: South},
	}
	if diff := cmp.Diff(wantCars, outcome.Cars); diff != "" {
		t.Errorf("Final cars mismatch (-want +got):\n%s", diff)
	}
}

func TestSimulator_CollisionRules(t *testing.T) {
	tests := []struct {
		name         string
		participants func(t *testing.T) []Participant
		expected     string
	}{
		{
			name: "parked car is hit",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "A", 2, 0, "N", ""),
					participant(t, "B", 0, 0, "E", "FF"),
				}
			},
			expected: "A B\n2 0\n2",
		},
		{
			name: "car that finished early is still hit",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "A", 0, 3, "E", "F"),
					participant(t, "B", 1, 0, "N", "FFF"),
				}
			},
			expected: "A B\n1 3\n3",
		},
		{
			name: "earlier car moves into later car's cell",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "A", 0, 0, "E", "F"),
					participant(t, "B", 1, 0, "E", "F"),
				}
			},
			expected: "A B\n1 0\n1",
		},
		{
			name: "later car already moved away",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "B", 1, 0, "E", "F"),
					participant(t, "A", 0, 0, "E", "F"),
				}
			},
			expected: NoCollision,
		},
		{
			name: "head-on into the same cell",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "A", 0, 0, "E", "F"),
					participant(t, "B", 2, 0, "W", "F"),
				}
			},
			expected: "A B\n1 0\n1",
		},
		{
			name: "names reported alphabetically",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "Zed", 0, 0, "E", "F"),
					participant(t, "Alpha", 1, 0, "N", ""),
				}
			},
			expected: "Alpha Zed\n1 0\n1",
		},
		{
			name: "rotation in a shared cell does not collide",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "A", 3, 3, "N", "L"),
					participant(t, "B", 3, 3, "N", "R"),
				}
			},
			expected: NoCollision,
		},
		{
			name: "blocked move in a shared cell does not collide",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "A", 0, 0, "S", "F"),
					participant(t, "B", 0, 0, "W", "F"),
				}
			},
			expected: NoCollision,
		},
		{
			name: "unknown command consumes a step",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "A", 0, 0, "E", "XF"),
					participant(t, "B", 3, 0, "W", "FF"),
				}
			},
			expected: "A B\n1 0\n2",
		},
		{
			name: "only the first collision is reported",
			participants: func(t *testing.T) []Participant {
				return []Participant{
					participant(t, "C", 0, 0, "E", "F"),
					participant(t, "D", 1, 0, "N", ""),
					participant(t, "A", 5, 5, "E", "F"),
					participant(t, "B", 6, 5, "N", ""),
				}
			},
			expected: "C D\n1 0\n1",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			grid := mustGrid(t, 10, 10)
			outcome := NewSimulator(grid).Run(test.participants(t))
			if outcome.Report() != test.expected {
				t.Errorf("Expected %q, got %q", test.expected, outcome.Report())
			}
		})
	}
}

func TestSimulator_SingleParticipantMatchesApplyCommands(t *testing.T) {
	grid := mustGrid(t, 10, 10)
	commands := "FFRFFFRRLF"

	direct := mustCar(t, 1, 2, "N", "")
	direct.ApplyCommands(commands, grid)

	simulated := mustCar(t, 1, 2, "N", "")
	outcome := NewSimulator(grid).Run([]Participant{{Car: simulated, Commands: commands}})

	if outcome.Collided() {
		t.Fatal("Single car cannot collide")
	}
	if simulated.State() != direct.State() {
		t.Errorf("Expected %+v, got %+v", direct.State(), simulated.State())
	}
}

func TestSimulator_EmptyRun(t *testing.T) {
	grid := mustGrid(t, 10, 10)
	outcome := NewSimulator(grid).Run(nil)
	if outcome.Report() != NoCollision {
		t.Errorf("Expected %q, got %q", NoCollision, outcome.Report())
	}
	if outcome.StepsExecuted != 0 {
		t.Errorf("Expected 0 steps, got %d", outcome.StepsExecuted)
	}
}

func TestSimulator_Trace(t *testing.T) {
	grid := mustGrid(t, 10, 10)
	outcome := NewSimulator(grid).Run([]Participant{
		participant(t, "A", 0, 0, "N", "FR"),
		participant(t, "B", 5, 5, "S", "F"),
	})

	expected := []StepInfo{
		{Step: 1, Car: "A", Command: "F", From: Position{0, 0}, To: Position{0, 1}, Orientation: North},
		{Step: 1, Car: "B", Command: "F", From: Position{5, 5}, To: Position{5, 4}, Orientation: South},
		{Step: 2, Car: "A", Command: "R", From: Position{0, 1}, To: Position{0, 1}, Orientation: East},
	}
	if diff := cmp.Diff(expected, outcome.Trace); diff != "" {
		t.Errorf("Trace mismatch (-want +got):\n%s", diff)
	}
}
