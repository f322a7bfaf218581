package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/pong-server/internal/config"
	"github.com/vovakirdan/pong-server/internal/hub"
	"github.com/vovakirdan/pong-server/internal/server"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the websocket game server",
	Long: `Start the websocket server that matches players and runs games.

Clients connect to ws://<addr>/ws and speak the JSON message protocol;
game state is broadcast as fixed-size binary frames at the tick rate.

Examples:
  pongd serve                    # Listen on :8080
  pongd serve --addr :9000       # Listen on port 9000
  pongd serve --config tune.yaml # Use specific physics tuning
  pongd serve --db ./matches.db  # Use specific results database`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "Server address (host:port)")
}

func runServe(_ *cobra.Command, _ []string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "pongd",
	})

	cfg, err := config.Load(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	h := hub.New(cfg.SessionConfig(), logger)

	store, err := openStore(flagDBPath)
	if err != nil {
		logger.Warn("could not open results database", "error", err)
		// Continue without storage
	} else {
		defer store.Close()
		h.SetResultSaver(store)
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = flagAddr

	srv := server.New(srvCfg, h, logger)

	fmt.Printf("Starting pong server on %s\n", srvCfg.Addr)
	fmt.Println("Clients connect to ws://" + srvCfg.Addr + "/ws")
	fmt.Println("Press Ctrl+C to stop")

	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
