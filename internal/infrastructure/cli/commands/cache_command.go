package commands

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/apex/internal/app"
)

// NewCacheCommand creates the cache command with all subcommands.
func NewCacheCommand(load Loader) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the knowledge answer cache",
	}

	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List cached answers, newest first",
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := load(cmd.Context())
				if err != nil {
					return err
				}
				return listCacheEntries(cmd.OutOrStdout(), container, time.Now())
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Remove every cached answer",
			RunE: func(cmd *cobra.Command, args []string) error {
				container, err := load(cmd.Context())
				if err != nil {
					return err
				}
				if container.Cache == nil {
					return errors.New("cache store unavailable")
				}
				if err := container.Cache.Clear(); err != nil {
					return fmt.Errorf("failed to clear cache: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), msgCacheCleared)
				return nil
			},
		},
	)

	return cacheCmd
}

func listCacheEntries(out io.Writer, container *app.Container, now time.Time) error {
	if container.Cache == nil {
		return errors.New("cache store unavailable")
	}

	entries, err := container.Cache.Entries()
	if err != nil {
		return fmt.Errorf("failed to retrieve cache entries: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, msgNoCachedResponses)
		return nil
	}

	for _, entry := range entries {
		fmt.Fprintf(out, "%s | %s | %s | %s\n",
			entry.Key[:min(12, len(entry.Key))],
			entry.Source,
			humanize.RelTime(entry.CreatedAt, now, "ago", "from now"),
			shorten(entry.Query, questionWidth))
	}
	return nil
}
