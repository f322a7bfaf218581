package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/pong-server/internal/storage"
)

var flagMatchLimit int

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "Show recently finished matches",
	Long: `Show the most recent match results from the database.

Examples:
  pongd matches
  pongd matches -n 20`,
	Run: runMatches,
}

func init() {
	matchesCmd.Flags().IntVarP(&flagMatchLimit, "limit", "n", 10, "Number of matches to show")
}

func runMatches(_ *cobra.Command, _ []string) {
	store, err := openStore(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	records, err := store.RecentMatches(flagMatchLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading matches: %v\n", err)
		os.Exit(1)
	}

	if len(records) == 0 {
		fmt.Println("No matches recorded yet.")
		return
	}

	fmt.Printf("%-8s %-15s %-15s %-7s %-10s %s\n", "GAME", "PLAYER 1", "PLAYER 2", "SCORE", "RESULT", "WHEN")
	for _, r := range records {
		result := r.EndReason
		if r.WinnerName != "" {
			result = r.WinnerName
		}
		fmt.Printf("%-8s %-15s %-15s %2d-%-4d %-10s %s\n",
			r.GameID, r.P1Name, r.P2Name, r.Score1, r.Score2, result,
			r.CreatedAt.Format("2006-01-02 15:04"))
	}
}

// openStore opens the match results database shared by serve and matches.
func openStore(path string) (*storage.Store, error) {
	return storage.Open(path)
}
