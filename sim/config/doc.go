// Package config manages the scenario library of the car simulator.
//
// Scenarios are stored one per file in a directory. Files ending in .json
// are decoded with encoding/json, files ending in .hcl with HCL native
// syntax:
//
//	name        = "crossroads"
//	description = "Two cars meet in the middle of a crossing"
//	width       = 10
//	height      = 10
//
//	car "A" {
//	  x           = 1
//	  y           = 5
//	  orientation = "E"
//	  commands    = "FFFFF"
//	}
//
// The identifier of a scenario is its file name without extension. Loaded
// scenarios are validated and cached; saved scenarios are always written as
// indented JSON.
//
// Usage:
//
//	manager, err := config.NewManager("scenarios")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sc, err := manager.LoadScenario("collision")
//	infos, err := manager.ListScenarios()
//	fallback := manager.GetDefault()
//
// When the directory holds no "collision" scenario the first valid file
// becomes the default, and an empty directory falls back to the built-in
// two-car example.
package config
