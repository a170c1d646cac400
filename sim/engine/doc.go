// Package engine provides the core simulation logic for the Auto Driving Car
// Simulator.
//
// The engine package implements:
//   - A bounded rectangular grid with containment checks
//   - Cars that rotate and move one cell at a time
//   - Lock-step replay of several cars with first-collision detection
//   - Scenario definitions and validation
//
// Core Types:
//
// Grid owns the field dimensions. Car owns a position and an Orientation and
// applies Commands against a Grid. Simulator drives a set of Participants
// through their command strings and returns an Outcome.
//
// Usage:
//
//	grid, err := engine.NewGrid(10, 10)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	car, err := engine.NewCar(1, 2, "N", "")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	car.ApplyCommands("FFRFFFRRLF", grid)
//	fmt.Println(car.Format()) // 4 3 S
//
// Collision Rules:
//
// Cars advance one command per step in the order they were supplied. A car
// that moves onto a cell recorded for another car collides with it; rotations
// and moves blocked by the grid edge never collide. Cars that run out of
// commands stay parked and can still be hit. Only the first collision is
// reported.
package engine
