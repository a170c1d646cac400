package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/urfave/cli/v3"
	"github.com/wricardo/auto-driving-car/api"
	"github.com/wricardo/auto-driving-car/sim/service"
	"github.com/wricardo/auto-driving-car/transport/mcp"
	"github.com/wricardo/auto-driving-car/transport/websocket"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"
)

// ngrokOptions configures the optional public tunnel
type ngrokOptions struct {
	Enabled   bool
	AuthToken string
	Domain    string
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run HTTP server with API, WebSocket feed and MCP endpoint",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "HTTP server port",
				Value:   8080,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "host",
				Usage:   "HTTP server host",
				Value:   "localhost",
				Sources: cli.EnvVars("HOST"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			simService, manager, err := initializeServices(cmd.String("scenario-dir"))
			if err != nil {
				return err
			}

			if infos, err := manager.ListScenarios(); err == nil {
				log.Printf("Loaded %d scenario(s) from %s (default: %s)", len(infos), manager.Dir(), manager.GetDefault().Name)
			}

			addr := fmt.Sprintf("%s:%d", cmd.String("host"), cmd.Int("port"))
			log.Printf("Starting %s v%s", AppName, Version)

			return runHTTPServer(ctx, simService, addr, ngrokOptions{
				Enabled:   cmd.Bool("ngrok"),
				AuthToken: cmd.String("ngrok-auth"),
				Domain:    cmd.String("ngrok-domain"),
			})
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:    "mcp",
		Aliases: []string{"stdio-mcp"},
		Usage:   "Run MCP stdio server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "REST API to proxy; started internally when unreachable",
				Value:   "http://localhost:8080",
				Sources: cli.EnvVars("API_URL"),
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			simService, _, err := initializeServices(cmd.String("scenario-dir"))
			if err != nil {
				return err
			}
			return runStdioMCP(ctx, simService, cmd.String("api-url"))
		},
	}
}

// newRouter mounts the API and the /mcp endpoint on one handler
func newRouter(simService service.SimulationService, hub *websocket.Hub, baseURL string) http.Handler {
	apiServer := api.NewServer(simService, hub)
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)
	mainRouter.HandleFunc("/mcp", mcpHandler(mcpClient))
	return mainRouter
}

// mcpHandler answers single JSON-RPC messages posted to /mcp
func mcpHandler(mcpClient *mcp.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	}
}

// runHTTPServer serves until ctx is cancelled, then shuts down gracefully.
// When ngrok is enabled the same router is also served through a tunnel.
func runHTTPServer(ctx context.Context, simService service.SimulationService, addr string, tunnel ngrokOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	hub := websocket.NewHub()
	go hub.Run(ctx)

	router := newRouter(simService, hub, fmt.Sprintf("http://%s", addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("Form endpoints: http://%s/simulate_part1, http://%s/simulate_part2", addr, addr)
		log.Printf("REST API: http://%s/api", addr)
		log.Printf("WebSocket: ws://%s/ws?channel=<name>", addr)
		log.Printf("MCP endpoint: http://%s/mcp", addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- fmt.Errorf("HTTP server failed: %w", err)
			cancel()
		}
	}()

	if tunnel.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, router, tunnel)
		}()
	}

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}

// runNgrok serves handler through an ngrok HTTP endpoint until ctx ends
func runNgrok(ctx context.Context, handler http.Handler, opts ngrokOptions) {
	if opts.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN, or NGROK_AUTH_TOKEN env var)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var endpoint ngrokConfig.Tunnel
	if opts.Domain != "" {
		endpoint = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.Domain))
		log.Printf("Using custom ngrok domain: %s", opts.Domain)
	} else {
		endpoint = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, endpoint, ngrok.WithAuthtoken(opts.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			log.Printf("Failed to close ngrok tunnel: %v", err)
		}
	}()

	ngrokURL := tun.URL()
	log.Printf("Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  WebSocket (ngrok): %s/ws?channel=<name>", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed && ctx.Err() == nil {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses the API at externalURL
// when it answers; otherwise it starts an internal API on a random loopback
// port and targets that.
func runStdioMCP(ctx context.Context, simService service.SimulationService, externalURL string) error {
	baseURL, shutdown, err := resolveAPI(ctx, simService, externalURL)
	if err != nil {
		return err
	}
	defer shutdown()

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API: %s)", baseURL)

	if err := mcpClient.ServeStdio(); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// resolveAPI returns the URL of a reachable API and a function releasing any
// server started for it
func resolveAPI(ctx context.Context, simService service.SimulationService, externalURL string) (string, func(), error) {
	log.Printf("Checking for external API server at %s...", externalURL)

	testClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := testClient.Get(externalURL + "/api/health"); err == nil {
		resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			log.Printf("External API server found at %s, using it for MCP", externalURL)
			return externalURL, func() {}, nil
		}
	}

	log.Printf("No external API server found, starting internal HTTP server")

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, fmt.Errorf("failed to get available port: %w", err)
	}

	baseURL := fmt.Sprintf("http://%s", listener.Addr().String())

	hubCtx, cancel := context.WithCancel(ctx)
	hub := websocket.NewHub()
	go hub.Run(hubCtx)

	httpServer := &http.Server{Handler: api.NewServer(simService, hub)}
	go func() {
		if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Internal HTTP server error: %v", err)
		}
	}()

	log.Printf("Internal HTTP server on %s for MCP stdio", listener.Addr())

	shutdown := func() {
		cancel()
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		httpServer.Shutdown(shutdownCtx)
	}
	return baseURL, shutdown, nil
}
