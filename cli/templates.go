package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arkantrust/abassist/xmlgen"
)

// NewTemplatesCommand creates the templates command.
func NewTemplatesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "templates",
		Short:         "List the available XML templates",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			names, err := templateStore(cfg).Scan()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

// NewVarsCommand creates the vars command.
func NewVarsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "vars <template>",
		Short:         "List the variables a template needs",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.loadConfig()
			if err != nil {
				return err
			}

			tpl, err := templateStore(cfg).Read(args[0])
			if err != nil {
				return err
			}
			for _, v := range xmlgen.Extract(tpl.Content) {
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}
