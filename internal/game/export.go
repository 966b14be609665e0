package game

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// exportLocked appends a human-readable summary of the finished game to the
// results file. Called with the room lock held once the speed round ends.
func (r *Room) exportLocked(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Persianary Game Results - Room %s\n", r.code))
	sb.WriteString(fmt.Sprintf("Finished: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(strings.Repeat("=", 50) + "\n")

	sb.WriteString("Players:\n")
	for _, p := range r.players {
		sb.WriteString(fmt.Sprintf("- %s (%s)\n", p.Name, p.Team))
	}
	sb.WriteString("\n")

	for _, rec := range r.history {
		winner := "no winner"
		if rec.Winner != TeamNone {
			winner = string(rec.Winner)
		}
		sb.WriteString(fmt.Sprintf("Round %d: \"%s\" - %s (%d-%d)\n",
			rec.Round, rec.Word, winner, rec.Scores.Team1, rec.Scores.Team2))
	}

	sb.WriteString(fmt.Sprintf("\nFinal scores: team1 %d - team2 %d\n", r.scores.Team1, r.scores.Team2))
	sb.WriteString(strings.Repeat("=", 50) + "\n\n")

	if _, err := file.WriteString(sb.String()); err != nil {
		return fmt.Errorf("failed to write to file: %w", err)
	}
	return nil
}
