// pongd is the authoritative server for realtime two-player pong.
//
// Usage:
//
//	pongd serve              - Start the websocket game server
//	pongd matches            - Show recently finished matches
//
// Global flags:
//
//	--config <path>  - Path to a YAML config file
//	--db <path>      - Match results database (default: ~/.pong-server/matches.db)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "pongd",
	Short: "Authoritative realtime pong server",
	Long: `pongd runs the authoritative server core for two-player pong:
matchmaking, per-session simulation at a fixed tick rate, reconnect
handling, and binary state broadcast over websockets.

Available commands:
  serve    - Start the websocket game server
  matches  - Show recently finished matches

Examples:
  pongd serve
  pongd serve --addr :9000
  pongd matches -n 20`,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.pong-server/matches.db", "Path to match results database")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(matchesCmd)
}
