package engine

import (
	"fmt"
	"sort"
)

// Participant pairs a car with the commands it will replay
type Participant struct {
	Car      *Car
	Commands string
}

// Collision describes the first time a car moved onto another car
type Collision struct {
	Cars     [2]string `json:"cars"`
	Position Position  `json:"position"`
	Step     int       `json:"step"`
}

// newCollision orders the two names lexicographically
func newCollision(a, b string, pos Position, step int) *Collision {
	names := []string{a, b}
	sort.Strings(names)
	return &Collision{
		Cars:     [2]string{names[0], names[1]},
		Position: pos,
		Step:     step,
	}
}

// String renders "A B\nx y\nstep"
func (c *Collision) String() string {
	return fmt.Sprintf("%s %s\n%s\n%d", c.Cars[0], c.Cars[1], c.Position, c.Step)
}

// Outcome is the result of a simulator run
type Outcome struct {
	Collision     *Collision `json:"collision,omitempty"`
	Cars          []CarState `json:"cars"`
	MaxSteps      int        `json:"max_steps"`
	StepsExecuted int        `json:"steps_executed"`
	Trace         []StepInfo `json:"trace,omitempty"`
}

// Collided reports whether the run ended in a collision
func (o *Outcome) Collided() bool {
	return o.Collision != nil
}

// Report returns the collision report or "no collision"
func (o *Outcome) Report() string {
	if o.Collision == nil {
		return NoCollision
	}
	return o.Collision.String()
}

// Simulator replays several cars in lock-step on one grid
type Simulator struct {
	grid *Grid
}

// NewSimulator creates a simulator for the given grid
func NewSimulator(grid *Grid) *Simulator {
	return &Simulator{grid: grid}
}

// occupancy tracks the last recorded cell of every participant, by index
type occupancy struct {
	cells   []Position
	present []bool
}

func newOccupancy(participants []Participant) *occupancy {
	occ := &occupancy{
		cells:   make([]Position, len(participants)),
		present: make([]bool, len(participants)),
	}
	for i, p := range participants {
		occ.set(i, p.Car.Position())
	}
	return occ
}

func (o *occupancy) set(i int, pos Position) {
	o.cells[i] = pos
	o.present[i] = true
}

func (o *occupancy) clear(i int) {
	o.present[i] = false
}

// occupant returns the lowest index recorded at pos
func (o *occupancy) occupant(pos Position) (int, bool) {
	for i, cell := range o.cells {
		if o.present[i] && cell == pos {
			return i, true
		}
	}
	return -1, false
}

// Run advances every participant one command per step, in the order given,
// and stops at the first collision. Cars are mutated in place.
func (s *Simulator) Run(participants []Participant) *Outcome {
	commands := make([][]rune, len(participants))
	outcome := &Outcome{}
	for i, p := range participants {
		commands[i] = []rune(p.Commands)
		if n := len(commands[i]); n > outcome.MaxSteps {
			outcome.MaxSteps = n
		}
	}

	occ := newOccupancy(participants)

	for step := 1; step <= outcome.MaxSteps; step++ {
		outcome.StepsExecuted = step

		for i, p := range participants {
			if step > len(commands[i]) {
				// Parked: the car keeps its cell and can still be hit
				continue
			}

			occ.clear(i)
			info := p.Car.step(step, Command(commands[i][step-1]), s.grid)
			outcome.Trace = append(outcome.Trace, info)

			if info.To != info.From {
				if j, hit := occ.occupant(info.To); hit {
					outcome.Collision = newCollision(p.Car.Name, participants[j].Car.Name, info.To, step)
					outcome.Cars = snapshot(participants)
					return outcome
				}
			}
			occ.set(i, info.To)
		}
	}

	outcome.Cars = snapshot(participants)
	return outcome
}

func snapshot(participants []Participant) []CarState {
	states := make([]CarState, len(participants))
	for i, p := range participants {
		states[i] = p.Car.State()
	}
	return states
}
