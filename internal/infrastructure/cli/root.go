// Package cli is the cobra front end: the root command with its cli, api and
// voice modes plus the maintenance subcommands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/apex/internal/app"
	"github.com/doeshing/apex/internal/infrastructure/cli/commands"
	"github.com/doeshing/apex/internal/infrastructure/server"
	"github.com/doeshing/apex/internal/pkg/logger"
)

// Run modes selected with --mode.
const (
	ModeCLI   = "cli"
	ModeAPI   = "api"
	ModeVoice = "voice"
)

// errEmptyCommand rejects --comando given with blank text.
var errEmptyCommand = errors.New("empty command: --comando needs text")

// EnvDebug turns on debug logging when set to 1 or true.
const EnvDebug = "APEX_DEBUG"

// Options holds the process streams. Nil streams default to os.Stdin,
// os.Stdout and os.Stderr.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// session builds the container lazily and owns its lifetime.
type session struct {
	opts      app.Options
	container *app.Container
}

func (s *session) load(ctx context.Context) (*app.Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	c, err := app.BuildContainer(ctx, s.opts)
	if err != nil {
		return nil, err
	}
	s.container = c
	return c, nil
}

func (s *session) close() error {
	if s.container == nil {
		return nil
	}
	return s.container.Close()
}

// Execute runs the root command with args and releases the container.
func Execute(ctx context.Context, args []string, opts Options) error {
	root, closeFn := NewRootCmd(opts)
	defer closeFn()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// NewRootCmd wires the cobra root command. The returned func releases
// whatever the command opened.
func NewRootCmd(opts Options) (*cobra.Command, func() error) {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	sess := &session{opts: app.Options{LogOutput: opts.Err}}
	var (
		mode    string
		check   bool
		comando string
	)

	root := &cobra.Command{
		Use:   "apex",
		Short: "APEX - voice and text assistant",
		Long: "APEX routes free-form utterances to local actions (open apps, folders, tell the time)\n" +
			"or to a knowledge service (AI chat or web search).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := sess.load(ctx)
			if err != nil {
				return err
			}
			renderer := NewRenderer(cmd.OutOrStdout())

			if check {
				return commands.RunDoctor(ctx, cmd.OutOrStdout(), c, renderer.HealthReport)
			}
			if cmd.Flags().Changed("comando") {
				if strings.TrimSpace(comando) == "" {
					return errEmptyCommand
				}
				rec := c.Orchestrator.Process(ctx, comando)
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				enc.SetEscapeHTML(false)
				return enc.Encode(rec)
			}

			switch strings.ToLower(mode) {
			case ModeCLI:
				renderer.Banner(c.Orchestrator.Name, c.Orchestrator.Version, ModeCLI)
				renderer.Notice("Digite um comando ou 'sair' para encerrar.")
				loop := &Loop{Processor: c.Orchestrator, Renderer: renderer, In: opts.In}
				if logger.IsTerminal(opts.Err) {
					loop.Spinner = NewSpinner(opts.Err, "processando...")
				}
				return loop.REPL(ctx)
			case ModeVoice:
				renderer.Banner(c.Orchestrator.Name, c.Orchestrator.Version, ModeVoice)
				renderer.Notice(fmt.Sprintf("Diga %q para ativar.", c.Config.GetWakeWord()))
				loop := &Loop{Processor: c.Orchestrator, Renderer: renderer, In: opts.In, WakeWord: c.Config.GetWakeWord()}
				return loop.Voice(ctx)
			case ModeAPI:
				srv := server.New(c.Config.GetServerAddr(), c.Orchestrator, c.Logger)
				srv.Name = c.Orchestrator.Name
				srv.Version = c.Orchestrator.Version
				renderer.Banner(c.Orchestrator.Name, c.Orchestrator.Version, ModeAPI)
				renderer.Notice("POST http://" + c.Config.GetServerAddr() + "/comando")
				return srv.Run(ctx)
			default:
				return fmt.Errorf("unknown mode %q (want %s, %s or %s)", mode, ModeCLI, ModeAPI, ModeVoice)
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(opts.In)
	root.SetOut(opts.Out)
	root.SetErr(opts.Err)

	flags := root.Flags()
	flags.StringVar(&mode, "mode", ModeCLI, "Run mode: cli, api or voice")
	flags.BoolVar(&check, "check", false, "Check dependencies and exit")
	flags.StringVar(&comando, "comando", "", "Process one command, print the outcome as JSON and exit")

	persistent := root.PersistentFlags()
	persistent.StringVar(&sess.opts.ConfigPath, "config", "", "Config file (default ~/.apex/config.yaml or $APEX_CONFIG)")
	persistent.StringVar(&sess.opts.EnvFile, "env-file", ".env", "Environment file with API keys")
	persistent.StringVar(&sess.opts.LogLevel, "log-level", defaultLogLevel(), "Log level: debug, info, warn or error")

	root.AddCommand(
		commands.NewDoctorCommand(sess.load),
		commands.NewHistoryCommand(sess.load),
		commands.NewCacheCommand(sess.load),
		commands.NewConfigCommand(sess.load),
		commands.NewModelsCommand(sess.load),
		commands.NewSendCommand(sess.load),
		commands.NewBridgeCommand(sess.load),
		commands.NewExplainCommand(sess.load),
		commands.NewTutorCommand(sess.load),
		commands.NewCodegenCommand(sess.load),
		commands.NewVersionCommand(),
	)

	return root, sess.close
}

func defaultLogLevel() string {
	switch strings.ToLower(os.Getenv(EnvDebug)) {
	case "1", "true":
		return "debug"
	default:
		return "warn"
	}
}
