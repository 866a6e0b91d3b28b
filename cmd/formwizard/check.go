package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/contract"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [schema]",
		Short: "Check a form schema for problems",
		Long:  `Parses the schema, builds its submission contract and reports fields no renderer can display.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().Bool("strict", false, "treat warnings as errors")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, path, err := loadSchema(cfg, args)
	if err != nil {
		return err
	}
	if _, err := contract.Build(cmd.Context(), s); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	warnings := lintSchema(s)
	for _, warning := range warnings {
		fmt.Fprintf(out, "warning: %s\n", warning)
	}
	if strict, _ := cmd.Flags().GetBool("strict"); strict && len(warnings) > 0 {
		return fmt.Errorf("%s: %d warning(s)", path, len(warnings))
	}
	fmt.Fprintf(out, "%s is valid: %d step(s), %d field(s)\n", path, s.StepCount(), len(s.Fields()))
	return nil
}

// lintSchema reports fields that parse but cannot be filled in.
func lintSchema(s *schema.Schema) []string {
	var warnings []string
	for i, step := range s.Steps() {
		for _, field := range step.Fields {
			warnings = append(warnings, lintField(i, field, "")...)
		}
	}
	return warnings
}

func lintField(step int, field schema.Field, parent string) []string {
	name := field.Name()
	if parent != "" {
		name = parent + "." + name
	}
	where := fmt.Sprintf("step %d field %q", step+1, name)

	switch f := field.(type) {
	case schema.Unknown:
		if f.IsRequired() {
			return []string{fmt.Sprintf("%s has unknown type %q and is required, the step can never pass", where, f.Tag)}
		}
		return []string{fmt.Sprintf("%s has unknown type %q and will not be rendered", where, f.Tag)}
	case schema.Choice:
		if len(f.Options) == 0 {
			return []string{fmt.Sprintf("%s is a %s with no options", where, f.Kind)}
		}
	case schema.Repeatable:
		var warnings []string
		if len(f.Fields) == 0 {
			warnings = append(warnings, fmt.Sprintf("%s is a repeatable group with no fields", where))
		}
		for _, sub := range f.Fields {
			warnings = append(warnings, lintField(step, sub, name)...)
		}
		return warnings
	}
	return nil
}
