// Command auto-driving-car runs the grid car simulator.
//
// Subcommands:
//  1. "serve" (default) – HTTP server exposing the form endpoints, the JSON API,
//     the WebSocket run feed and an /mcp HTTP endpoint
//  2. "mcp" – MCP stdio server; reuses a running API or starts an internal one
//  3. "run" – replay input text from a file or stdin and print the result
//  4. "validate" – check every scenario file in a directory
//  5. "version" – print version information
//
// Flags can also be set through the environment (PORT, HOST, SCENARIO_DIR,
// NGROK_*) and a .env file in the working directory.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"github.com/wricardo/auto-driving-car/sim/config"
	"github.com/wricardo/auto-driving-car/sim/service"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Auto Driving Car Simulator"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the root command
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "auto-driving-car",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "scenario-dir",
				Usage:   "Directory containing scenario files",
				Value:   config.DefaultDir,
				Sources: cli.EnvVars("SCENARIO_DIR"),
			},
		},
		Before:         setupLogging,
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			serveCommand(),
			mcpCommand(),
			runCommand(),
			validateCommand(),
			versionCommand(),
		},
	}
}

// setupLogging applies --debug before any subcommand runs
func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	} else {
		log.SetFlags(log.LstdFlags)
	}
	return ctx, nil
}

func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			fmt.Fprintf(writer(cmd), "%s v%s\n", AppName, Version)
			return nil
		},
	}
}

// initializeServices wires the scenario library and the simulation service
func initializeServices(scenarioDir string) (service.SimulationService, *config.Manager, error) {
	manager, err := config.NewManager(scenarioDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}

	return service.NewSimulationService(manager), manager, nil
}

// writer returns the output stream of the root command
func writer(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

// reader returns the input stream of the root command
func reader(cmd *cli.Command) io.Reader {
	if r := cmd.Root().Reader; r != nil {
		return r
	}
	return os.Stdin
}
