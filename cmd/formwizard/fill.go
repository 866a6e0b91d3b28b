package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/internal/logging"
	"github.com/goliatone/go-formwizard/pkg/preview"
	"github.com/goliatone/go-formwizard/pkg/renderers/tui"
	"github.com/goliatone/go-formwizard/pkg/wizard"
)

func newFillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fill [schema]",
		Short: "Fill in a form interactively in the terminal",
		Long:  `Prompts for every field of every step, shows a review of the answers and prints the submission in the chosen output format.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runFill,
	}
	cmd.Flags().StringP("output", "o", "", "submission format (json, yaml, text, markdown)")
	cmd.Flags().String("out", "", "write the submission to a file instead of stdout")
	return cmd
}

func runFill(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	overrideString(cmd, "output", &cfg.Output)

	format, err := preview.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	s, _, err := loadSchema(cfg, args)
	if err != nil {
		return err
	}

	c, err := wizard.NewController(s, wizard.WithHooks(logging.Hooks(logger)))
	if err != nil {
		return err
	}
	renderer, err := tui.New(
		tui.WithOutputFormat(format),
		tui.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		return err
	}

	result, err := renderer.Fill(cmd.Context(), c)
	if err != nil {
		return err
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		if err := os.WriteFile(out, result.Payload, 0o644); err != nil {
			return fmt.Errorf("write submission: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Submission written to %s\n", out)
		return nil
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(result.Payload))
	return err
}
