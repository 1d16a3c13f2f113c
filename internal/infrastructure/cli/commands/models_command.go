package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/apex/internal/app"
	"github.com/doeshing/apex/internal/infrastructure/ai"
	"github.com/doeshing/apex/internal/infrastructure/cli/helpers"
	"github.com/doeshing/apex/internal/ports"
)

const modelTestPrompt = "Responda apenas: ok"

// NewModelsCommand creates the models command with all subcommands.
func NewModelsCommand(load Loader) *cobra.Command {
	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the chat models used for knowledge queries",
	}

	modelsCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List configured models and whether their API key is set",
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					listModels(cmd.OutOrStdout(), c)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "use <name>",
			Short: "Set the default model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					if !c.Config.HasModel(args[0]) {
						return fmt.Errorf("model %s not found", args[0])
					}
					cfg := c.Config
					cfg.Knowledge.DefaultModel = args[0]
					if err := helpers.SaveConfig(c, cfg); err != nil {
						return err
					}
					c.Config = cfg
					fmt.Fprintf(cmd.OutOrStdout(), "Default model set to %s\n", args[0])
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "test <name>",
			Short: "Send a short prompt to a model",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withContainer(cmd, load, func(c *app.Container) error {
					return testModel(cmd.Context(), cmd.OutOrStdout(), c, ai.NewFactory(c.HTTPClient), args[0])
				})
			},
		},
	)

	return modelsCmd
}

func listModels(out io.Writer, container *app.Container) {
	for _, model := range container.Config.Models {
		marker := " "
		if model.Name == container.Config.Knowledge.DefaultModel {
			marker = "*"
		}
		key := "no key needed"
		if model.RequiresKey() {
			key = model.AuthEnvVar + " missing"
			if os.Getenv(model.AuthEnvVar) != "" {
				key = model.AuthEnvVar + " set"
			}
		}
		fmt.Fprintf(out, "%s %s | %s | %s\n", marker, model.Name, model.ModelID, key)
	}
}

func testModel(ctx context.Context, out io.Writer, container *app.Container, factory ports.ProviderFactory, name string) error {
	model, ok := container.Config.FindModelByName(name)
	if !ok {
		return fmt.Errorf("model %s not found", name)
	}

	provider, err := factory.ForModel(model)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, container.Config.GetKnowledgeTimeout())
	defer cancel()

	start := time.Now()
	resp, err := provider.Generate(ctx, ports.ChatRequest{
		Prompt:        modelTestPrompt,
		AssistantName: container.Config.GetAssistantName(),
	})
	if err != nil {
		return fmt.Errorf("model %s failed: %w", name, err)
	}

	fmt.Fprintf(out, "%s answered in %s (%d tokens): %s\n",
		provider.Name(), time.Since(start).Round(time.Millisecond), resp.Tokens, shorten(resp.Text, questionWidth))
	return nil
}
