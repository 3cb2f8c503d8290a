package db

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dtnitsch/cbsl-assistant/internal/common"
	"github.com/dtnitsch/cbsl-assistant/models"
	"github.com/urfave/cli/v2"
)

const previewRunes = 48

// LogsAction prints the most recent interactions, newest first, optionally
// keeping only one language.
func LogsAction(c *cli.Context) error {
	cfg, database, err := common.OpenStore(c)
	if err != nil {
		return err
	}
	defer database.Close()

	limit := cfg.Storage.RecentLimit
	if c.IsSet("limit") {
		limit = c.Int("limit")
	}

	var lang models.Language
	if raw := c.String("lang"); raw != "" {
		if lang, err = models.ParseLanguage(raw); err != nil {
			return err
		}
	}

	var entries []models.LogEntry
	if lang != "" {
		entries, err = database.RecentInteractionsByLanguage(c.Context, lang, limit)
	} else {
		entries, err = database.RecentInteractions(c.Context, limit)
	}
	if err != nil {
		return fmt.Errorf("failed to list interactions: %w", err)
	}

	w := c.App.Writer
	if len(entries) == 0 {
		fmt.Fprintln(w, "No interactions found")
		return nil
	}

	total, err := database.CountInteractions(c.Context, lang)
	if err != nil {
		return fmt.Errorf("failed to count interactions: %w", err)
	}

	// Print table header
	fmt.Fprintf(w, "%-6s %-20s %-4s %-50s %-50s\n",
		"ID", "Time", "Lang", "Question", "Answer")
	fmt.Fprintln(w, strings.Repeat("-", 134))

	for _, e := range entries {
		fmt.Fprintf(w, "%-6d %-20s %-4s %-50s %-50s\n",
			e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			e.Language,
			preview(e.Question),
			preview(e.Answer),
		)
	}

	fmt.Fprintf(w, "\nShowing %d of %d interactions (%s)\n", len(entries), total, database.Path())
	return nil
}

// preview flattens s to one line and shortens it for the table.
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:previewRunes-3]) + "..."
}
