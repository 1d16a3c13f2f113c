package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/apex/internal/app"
)

// NewExplainCommand shows how an utterance is interpreted without executing it.
func NewExplainCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "explain <text>",
		Short: "Show normalization, matched rule and route for an utterance",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, load, func(c *app.Container) error {
				text := strings.Join(args, " ")
				rule, command := c.Classifier.Explain(text)
				decision := c.Orchestrator.Router.Route(text, command)

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "input:      %s\n", text)
				fmt.Fprintf(out, "normalized: %s\n", c.Classifier.Normalize(text))
				fmt.Fprintf(out, "rule:       %s\n", rule)
				fmt.Fprintf(out, "command:    %s\n", command)
				fmt.Fprintf(out, "route:      %s\n", decision.Target)
				fmt.Fprintf(out, "payload:    %s\n", decision.Payload)
				return nil
			})
		},
	}
}
