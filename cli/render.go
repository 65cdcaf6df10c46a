package cli

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/arkantrust/abassist/store"
	"github.com/arkantrust/abassist/xmlgen"
)

// RenderOptions holds flags for the render command.
type RenderOptions struct {
	*RootOptions
	Set         []string
	Interactive bool
	NoLog       bool
}

// NewRenderCommand creates the render command.
func NewRenderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RenderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "render <template>",
		Short: "Render a template to stdout",
		Long: `Render a template to stdout and record it in the generation log.

Every variable needs a value. Unknown variables are rejected.

Example:
  abassist render payment_request.xml --set amount=100 --set currency=KES
  abassist render payment_request.xml --interactive`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "variable assignment key=value (repeatable)")
	cmd.Flags().BoolVarP(&opts.Interactive, "interactive", "i", false, "prompt for missing values")
	cmd.Flags().BoolVar(&opts.NoLog, "no-log", false, "do not record the generation")

	return cmd
}

func runRender(cmd *cobra.Command, opts *RenderOptions, name string) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg)

	// genLog stays a nil interface when logging is off or unusable; the
	// generation itself never depends on it.
	var genLog xmlgen.GenerationLog
	if !opts.NoLog {
		l, err := store.NewScopedLog(cfg.LogBackend, cfg.DBPath)
		if err != nil {
			logger.Error("log write failure", "error", err)
		} else {
			genLog = l
		}
	}
	svc := xmlgen.NewService(templateStore(cfg), genLog, logger)

	form, err := svc.Form(name)
	if err != nil {
		return err
	}

	values, err := xmlgen.ParseAssignments(opts.Set)
	if err != nil {
		return err
	}
	if opts.Interactive {
		for _, v := range form.Variables {
			if _, ok := values[v]; ok {
				continue
			}
			answer, err := opts.prompt(v)
			if err != nil {
				return fmt.Errorf("prompt %s: %w", v, err)
			}
			values.Set(v, answer)
		}
	}

	sub, err := xmlgen.NewSubmission(form.Variables, values, true)
	if err != nil {
		return err
	}
	res, err := svc.Generate(cmd.Context(), name, sub)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Output)
	if !opts.NoLog && !res.Logged {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: generation was not recorded in the log")
	}
	if res.Warning != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: output is not well-formed XML: %s\n", res.Warning)
	}
	return nil
}

func askSurvey(variable string) (string, error) {
	var out string
	prompt := &survey.Input{Message: variable + ":"}
	if err := survey.AskOne(prompt, &out); err != nil {
		return "", err
	}
	return out, nil
}
