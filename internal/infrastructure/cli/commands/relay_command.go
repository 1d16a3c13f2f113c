package commands

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/apex/internal/app"
	"github.com/doeshing/apex/internal/infrastructure/relay"
)

// NewSendCommand creates the send command: one utterance to a running api server.
func NewSendCommand(load Loader) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "send <text>",
		Short: "Send one command to a running APEX api server",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, load, func(c *app.Container) error {
				client := relayClient(c, target)
				reply, sendErr := client.Send(cmd.Context(), strings.Join(args, " "))

				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetEscapeHTML(false)
				if err := enc.Encode(reply); err != nil {
					return err
				}
				return sendErr
			})
		},
	}

	cmd.Flags().StringVar(&target, "url", "", "Override bridge.target_url")
	return cmd
}

// NewBridgeCommand creates the bridge command: it forwards commands written
// to the bridge file by another program until interrupted.
func NewBridgeCommand(load Loader) *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Forward commands written to the bridge file to the api server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withContainer(cmd, load, func(c *app.Container) error {
				bridge := &relay.Bridge{
					CommandFile: c.Config.Bridge.CommandFile,
					Interval:    c.Config.GetBridgePollInterval(),
					Sender:      relayClient(c, target),
					Logger:      c.Logger,
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", bridge.CommandFile)
				return bridge.Run(cmd.Context())
			})
		},
	}

	cmd.Flags().StringVar(&target, "url", "", "Override bridge.target_url")
	return cmd
}

func relayClient(c *app.Container, target string) *relay.Client {
	if target == "" {
		target = c.Config.Bridge.TargetURL
	}
	return relay.NewClient(target, c.Config.Bridge.ResponseFile, c.Logger)
}
