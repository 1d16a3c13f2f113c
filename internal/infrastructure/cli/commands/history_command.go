package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/apex/internal/app"
	"github.com/doeshing/apex/internal/domain"
	"github.com/doeshing/apex/internal/infrastructure/cli/helpers"
	"github.com/doeshing/apex/internal/ports"
)

// NewHistoryCommand creates the history command with all subcommands.
func NewHistoryCommand(load Loader) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the persisted conversation history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(load),
		newHistoryExportCommand(load),
		newHistoryClearCommand(load),
		newHistoryStatsCommand(load),
	)

	return historyCmd
}

func newHistoryListCommand(load Loader) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent conversation turns",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := load(cmd.Context())
			if err != nil {
				return err
			}
			return listHistoryEntries(cmd.OutOrStdout(), container, limit, time.Now())
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

func newHistoryExportCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export conversation turns and context variables as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := load(cmd.Context())
			if err != nil {
				return err
			}
			store, err := conversations(container)
			if err != nil {
				return err
			}
			if err := store.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("failed to export history to %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "History exported to %s\n", args[0])
			return nil
		},
	}
}

func newHistoryClearCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all conversation turns and context variables",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := load(cmd.Context())
			if err != nil {
				return err
			}
			store, err := conversations(container)
			if err != nil {
				return err
			}
			if err := store.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msgHistoryCleared)
			return nil
		},
	}
}

func newHistoryStatsCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show answer sources and token usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			container, err := load(cmd.Context())
			if err != nil {
				return err
			}
			return showHistoryStats(cmd.OutOrStdout(), container)
		},
	}
}

func conversations(container *app.Container) (ports.ConversationRepository, error) {
	if container.Conversations == nil {
		return nil, errors.New("history store unavailable")
	}
	return container.Conversations, nil
}

func listHistoryEntries(out io.Writer, container *app.Container, limit int, now time.Time) error {
	store, err := conversations(container)
	if err != nil {
		return err
	}

	turns, err := store.Turns(limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve history: %w", err)
	}
	if len(turns) == 0 {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return nil
	}

	for _, turn := range turns {
		fmt.Fprintf(out, "%s | %s | %s\n",
			humanize.RelTime(turn.Timestamp, now, "ago", "from now"),
			turn.Source,
			shorten(turn.Question, questionWidth))
	}
	return nil
}

func showHistoryStats(out io.Writer, container *app.Container) error {
	store, err := conversations(container)
	if err != nil {
		return err
	}

	turns, err := store.Turns(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve history: %w", err)
	}
	if len(turns) == 0 {
		fmt.Fprintln(out, msgNoHistoryRecorded)
		return nil
	}

	sources := map[string]int{}
	tokens := 0
	for _, turn := range turns {
		sources[turn.Source]++
		tokens += turn.Tokens
	}

	fmt.Fprintf(out, "Turns: %s\n", humanize.Comma(int64(len(turns))))
	fmt.Fprintf(out, "Tokens: %s\n", humanize.Comma(int64(tokens)))
	fmt.Fprintf(out, "Since: %s\n", turns[0].Timestamp.Format(TimestampFormat))
	fmt.Fprintln(out, "Sources:")
	for _, c := range helpers.TopCounts(sources, 0) {
		fmt.Fprintf(out, "  %s: %d (%.1f%%)\n", c.Key, c.Count, helpers.Percent(c.Count, len(turns)))
	}
	return nil
}

func shorten(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= width {
		return text
	}
	return string(runes[:width-3]) + "..."
}
