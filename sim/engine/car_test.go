package engine

import (
	"errors"
	"testing"
)

func mustGrid(t *testing.T, width, height int) *Grid {
	t.Helper()
	grid, err := NewGrid(width, height)
	if err != nil {
		t.Fatalf("NewGrid(%d, %d) failed: %v", width, height, err)
	}
	return grid
}

func mustCar(t *testing.T, x, y int, orientation, name string) *Car {
	t.Helper()
	car, err := NewCar(x, y, orientation, name)
	if err != nil {
		t.Fatalf("NewCar(%d, %d, %q) failed: %v", x, y, orientation, err)
	}
	return car
}

func TestNewCar_Valid(t *testing.T) {
	car := mustCar(t, 1, 2, "N", "")
	if car.Format() != "1 2 N" {
		t.Errorf("Expected '1 2 N', got '%s'", car.Format())
	}

	named := mustCar(t, 7, 8, "W", "B")
	if named.Format() != "B 7 8 W" {
		t.Errorf("Expected 'B 7 8 W', got '%s'", named.Format())
	}
	if named.Pose() != "7 8 W" {
		t.Errorf("Expected pose '7 8 W', got '%s'", named.Pose())
	}
}

func TestNewCar_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		x, y        int
		orientation string
		expected    error
	}{
		{"negative x", -1, 2, "N", ErrInvalidPosition},
		{"negative y", 1, -2, "N", ErrInvalidPosition},
		{"bad orientation", 1, 2, "X", ErrInvalidOrientation},
		{"lowercase orientation", 1, 2, "n", ErrInvalidOrientation},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			car, err := NewCar(test.x, test.y, test.orientation, "")
			if !errors.Is(err, test.expected) {
				t.Errorf("Expected %v, got %v", test.expected, err)
			}
			if car != nil {
				t.Error("Expected no car on failure")
			}
		})
	}
}

func TestCar_RotateLeft(t *testing.T) {
	car := mustCar(t, 1, 2, "N", "")
	for _, expected := range []string{"1 2 W", "1 2 S", "1 2 E", "1 2 N"} {
		car.RotateLeft()
		if car.Format() != expected {
			t.Errorf("Expected '%s', got '%s'", expected, car.Format())
		}
	}
}

func TestCar_RotateRight(t *testing.T) {
	car := mustCar(t, 1, 2, "N", "")
	for _, expected := range []string{"1 2 E", "1 2 S", "1 2 W", "1 2 N"} {
		car.RotateRight()
		if car.Format() != expected {
			t.Errorf("Expected '%s', got '%s'", expected, car.Format())
		}
	}
}

func TestCar_MoveForward(t *testing.T) {
	grid := mustGrid(t, 10, 10)
	car := mustCar(t, 1, 2, "N", "")

	if !car.MoveForward(grid) {
		t.Error("Expected move to succeed")
	}
	if car.Format() != "1 3 N" {
		t.Errorf("Expected '1 3 N', got '%s'", car.Format())
	}

	car.RotateRight()
	car.MoveForward(grid)
	if car.Format() != "2 3 E" {
		t.Errorf("Expected '2 3 E', got '%s'", car.Format())
	}

	car.RotateRight()
	car.MoveForward(grid)
	if car.Format() != "2 2 S" {
		t.Errorf("Expected '2 2 S', got '%s'", car.Format())
	}

	car.RotateRight()
	car.MoveForward(grid)
	if car.Format() != "1 2 W" {
		t.Errorf("Expected '1 2 W', got '%s'", car.Format())
	}
}

func TestCar_MoveForward_Boundaries(t *testing.T) {
	grid := mustGrid(t, 10, 10)

	tests := []struct {
		name        string
		x, y        int
		orientation string
	}{
		{"bottom edge facing south", 4, 0, "S"},
		{"left edge facing west", 0, 4, "W"},
		{"top edge facing north", 4, 9, "N"},
		{"right edge facing east", 9, 4, "E"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			car := mustCar(t, test.x, test.y, test.orientation, "")
			before := car.Format()
			if car.MoveForward(grid) {
				t.Error("Expected move to be blocked")
			}
			if car.Format() != before {
				t.Errorf("Expected position to stay '%s', got '%s'", before, car.Format())
			}
		})
	}
}

func TestCar_SingleCellGrid(t *testing.T) {
	grid := mustGrid(t, 1, 1)
	car := mustCar(t, 0, 0, "N", "")

	car.MoveForward(grid)
	if car.Format() != "0 0 N" {
		t.Errorf("Expected '0 0 N', got '%s'", car.Format())
	}

	car.RotateLeft()
	if car.Format() != "0 0 W" {
		t.Errorf("Expected '0 0 W', got '%s'", car.Format())
	}

	car.MoveForward(grid)
	if car.Format() != "0 0 W" {
		t.Errorf("Expected '0 0 W', got '%s'", car.Format())
	}
}

func TestCar_ApplyCommands(t *testing.T) {
	tests := []struct {
		name     string
		commands string
		expected string
	}{
		{"sample route", "FFRFFFRRLF", "4 3 S"},
		{"unknown commands skipped", "FFRXFFYFRRLZ", "4 4 S"},
		{"empty", "", "1 2 N"},
		{"only rotations", "LLLL", "1 2 N"},
		{"drive into top edge", "FFFFFFFFFFFF", "1 9 N"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			grid := mustGrid(t, 10, 10)
			car := mustCar(t, 1, 2, "N", "")
			car.ApplyCommands(test.commands, grid)
			if car.Format() != test.expected {
				t.Errorf("Expected '%s', got '%s'", test.expected, car.Format())
			}
		})
	}
}

func TestCar_UnknownCommandsAreNoOps(t *testing.T) {
	grid := mustGrid(t, 10, 10)

	withNoise := mustCar(t, 1, 2, "N", "")
	withNoise.ApplyCommands("FXF", grid)

	clean := mustCar(t, 1, 2, "N", "")
	clean.ApplyCommands("FF", grid)

	if withNoise.State() != clean.State() {
		t.Errorf("Expected %+v, got %+v", clean.State(), withNoise.State())
	}
}

func TestCar_Deterministic(t *testing.T) {
	grid := mustGrid(t, 6, 4)
	commands := "FRFFLFFRRFLFFFFRF"

	first := mustCar(t, 2, 1, "E", "")
	first.ApplyCommands(commands, grid)

	second := mustCar(t, 2, 1, "E", "")
	second.ApplyCommands(commands, grid)

	if first.State() != second.State() {
		t.Errorf("Replays diverged: %+v vs %+v", first.State(), second.State())
	}
}

func TestCar_Replay(t *testing.T) {
	grid := mustGrid(t, 2, 2)
	car := mustCar(t, 0, 0, "S", "")

	trace := car.Replay("FLFX", grid)
	if len(trace) != 4 {
		t.Fatalf("Expected 4 trace entries, got %d", len(trace))
	}

	if !trace[0].Blocked {
		t.Error("Expected first move to be blocked at the bottom edge")
	}
	if trace[1].Orientation != East {
		t.Errorf("Expected E after left turn, got %v", trace[1].Orientation)
	}
	if trace[2].To != (Position{X: 1, Y: 0}) {
		t.Errorf("Expected move to (1,0), got %v", trace[2].To)
	}
	if !trace[3].Ignored {
		t.Error("Expected unknown command to be marked ignored")
	}
	for i, step := range trace {
		if step.Step != i+1 {
			t.Errorf("Expected step %d, got %d", i+1, step.Step)
		}
	}
	if car.Format() != "1 0 E" {
		t.Errorf("Expected '1 0 E', got '%s'", car.Format())
	}
}

func TestCar_InvalidOrientationDoesNotMove(t *testing.T) {
	grid := mustGrid(t, 5, 5)
	car := &Car{X: 2, Y: 2, Orientation: Orientation(7)}

	if car.MoveForward(grid) {
		t.Error("Expected MoveForward to report no move")
	}
	if car.Apply(Forward, grid) {
		t.Error("Expected Apply to report no move")
	}
	if car.X != 2 || car.Y != 2 {
		t.Errorf("Expected position (2,2), got (%d,%d)", car.X, car.Y)
	}
	if got := Orientation(7).Delta(); got != (Position{}) {
		t.Errorf("Expected zero delta, got %v", got)
	}
}
