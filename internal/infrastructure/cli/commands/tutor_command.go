package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/doeshing/apex/internal/app"
	"github.com/doeshing/apex/internal/application/tutor"
	"github.com/doeshing/apex/internal/infrastructure/ai"
	"github.com/doeshing/apex/internal/ports"
)

// lessonFlags are shared by every tutor and codegen leaf command.
type lessonFlags struct {
	params map[string]string
	model  string
	asJSON bool
	out    string
}

// NewTutorCommand creates "tutor <kind> <lesson>" for the programming,
// language and content tutors.
func NewTutorCommand(load Loader) *cobra.Command {
	tutorCmd := &cobra.Command{
		Use:   "tutor",
		Short: "Ask the programming, language or content tutor",
	}

	tutorCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List every lesson and its parameters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			listLessons(cmd.OutOrStdout(), tutor.Lessons())
			return nil
		},
	})

	for _, kind := range []tutor.Kind{tutor.KindProgramming, tutor.KindLanguage, tutor.KindContent} {
		kindCmd := &cobra.Command{
			Use:   string(kind),
			Short: fmt.Sprintf("Lessons of the %s tutor", kind),
		}
		for _, lesson := range tutor.LessonsOf(kind) {
			kindCmd.AddCommand(newLessonCommand(load, lesson, false))
		}
		tutorCmd.AddCommand(kindCmd)
	}

	return tutorCmd
}

// NewCodegenCommand creates "codegen <tool|app|script>".
func NewCodegenCommand(load Loader) *cobra.Command {
	codegenCmd := &cobra.Command{
		Use:   "codegen",
		Short: "Generate tools, educational apps and automation scripts",
	}
	for _, lesson := range tutor.LessonsOf(tutor.KindCode) {
		codegenCmd.AddCommand(newLessonCommand(load, lesson, true))
	}
	return codegenCmd
}

func newLessonCommand(load Loader, lesson tutor.Lesson, code bool) *cobra.Command {
	flags := &lessonFlags{}
	cmd := &cobra.Command{
		Use:   lesson.Name + " <" + lesson.Body + ">",
		Short: lesson.Summary,
		Long: fmt.Sprintf("%s.\n\nRequired: %s\nSet parameters with --set key=value.",
			lesson.Summary, strings.Join(lesson.Required, ", ")),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := lessonParams(lesson, flags.params, args)
			if _, err := lesson.Render(params); err != nil {
				return err
			}
			return withContainer(cmd, load, func(c *app.Container) error {
				provider, err := chatProvider(c, ai.NewFactory(c.HTTPClient), flags.model)
				if err != nil {
					return err
				}
				svc := &tutor.Service{
					Provider:      provider,
					Logger:        c.Logger,
					AssistantName: c.Config.GetAssistantName(),
					Timeout:       c.Config.GetKnowledgeTimeout(),
				}
				return runLesson(cmd.Context(), cmd.OutOrStdout(), svc, lesson, params, code, flags)
			})
		},
	}

	f := cmd.Flags()
	f.StringToStringVarP(&flags.params, "set", "s", nil, "Lesson parameter, e.g. --set language=go (repeatable)")
	f.StringVar(&flags.model, "model", "", "Model name (default: the knowledge default model)")
	f.BoolVar(&flags.asJSON, "json", false, "Print the reply as JSON")
	if code {
		f.StringVarP(&flags.out, "out", "o", "", "Also write the generated code to this file")
	}
	return cmd
}

// lessonParams fills the lesson body from positional args unless --set did.
func lessonParams(lesson tutor.Lesson, set map[string]string, args []string) map[string]string {
	params := make(map[string]string, len(set)+1)
	for k, v := range set {
		params[strings.ToLower(k)] = v
	}
	if text := strings.TrimSpace(strings.Join(args, " ")); text != "" && params[lesson.Body] == "" {
		params[lesson.Body] = text
	}
	return params
}

func runLesson(ctx context.Context, out io.Writer, svc *tutor.Service, lesson tutor.Lesson, params map[string]string, code bool, flags *lessonFlags) error {
	var (
		reply tutor.Reply
		err   error
	)
	if code {
		reply, err = svc.Generate(ctx, lesson.Name, params)
	} else {
		reply, err = svc.Ask(ctx, lesson.Kind, lesson.Name, params)
	}
	if err != nil {
		return err
	}

	if flags.out != "" {
		if err := tutor.SaveCode(flags.out, reply.Text); err != nil {
			return err
		}
		fmt.Fprintf(out, "Code saved to %s\n", flags.out)
	}

	if flags.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(reply)
	}
	if len(reply.Items) > 0 {
		for i, item := range reply.Items {
			fmt.Fprintf(out, "%d) %s\n", i+1, item)
		}
		return nil
	}
	fmt.Fprintln(out, reply.Text)
	return nil
}

// chatProvider prefers the knowledge service's provider and otherwise builds
// one, so lessons work even when knowledge.strategy is search.
func chatProvider(c *app.Container, factory ports.ProviderFactory, name string) (ports.ChatProvider, error) {
	if name != "" {
		model, ok := c.Config.FindModelByName(name)
		if !ok {
			return nil, fmt.Errorf("model %s not found", name)
		}
		return factory.ForModel(model)
	}
	if c.Knowledge != nil && c.Knowledge.Provider != nil {
		return c.Knowledge.Provider, nil
	}
	model, err := c.Config.GetDefaultModel()
	if err != nil {
		return nil, err
	}
	return factory.ForModel(model)
}

func listLessons(out io.Writer, lessons []tutor.Lesson) {
	for _, l := range lessons {
		fmt.Fprintf(out, "%-12s %-10s %s (%s)\n", l.Kind, l.Name, l.Summary, strings.Join(l.Required, ", "))
	}
}
