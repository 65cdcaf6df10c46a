// Package cli implements the abassist command line: the portal server and
// the template generator without a browser.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/arkantrust/abassist/config"
	"github.com/arkantrust/abassist/xmlgen"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string

	load   func(path string) (*config.Config, error)
	prompt func(variable string) (string, error)
}

// NewRootCommand creates the root command. Run without a subcommand it
// starts the server.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{load: config.Load, prompt: askSurvey})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	serve := NewServeCommand(opts)
	cmd := &cobra.Command{
		Use:           "abassist",
		Short:         "ABAssist operations portal",
		Long:          "XML message generation from templates and transaction reversal for payment operators.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serve.RunE,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "YAML config file (default $ABASSIST_CONFIG)")

	cmd.AddCommand(serve)
	cmd.AddCommand(NewTemplatesCommand(opts))
	cmd.AddCommand(NewVarsCommand(opts))
	cmd.AddCommand(NewRenderCommand(opts))

	return cmd
}

// loadConfig loads the configuration named by the global flags.
func (o *RootOptions) loadConfig() (*config.Config, error) {
	cfg, err := o.load(o.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// newLogger returns the JSON logger every command logs through.
func newLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func templateStore(cfg *config.Config) *xmlgen.Store {
	return xmlgen.NewStore(cfg.TemplatesDir, cfg.TemplateExt)
}
