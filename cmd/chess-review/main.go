// Command chess-review classifies every move of a chess game, reports per-side accuracy
// and replays the game ply by ply. It can also run the evaluation service.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
