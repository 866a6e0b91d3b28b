package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/pkg/contract"
)

func newContractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract [schema]",
		Short: "Print the OpenAPI contract for a form's submission payload",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runContract,
	}
	cmd.Flags().String("title", "", "override the document title")
	cmd.Flags().String("api-version", "", "document version")
	cmd.Flags().String("out", "", "write the document to a file instead of stdout")
	return cmd
}

func runContract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, _, err := loadSchema(cfg, args)
	if err != nil {
		return err
	}

	var opts []contract.Option
	if title, _ := cmd.Flags().GetString("title"); title != "" {
		opts = append(opts, contract.WithTitle(title))
	}
	if version, _ := cmd.Flags().GetString("api-version"); version != "" {
		opts = append(opts, contract.WithVersion(version))
	}
	doc, err := contract.Build(cmd.Context(), s, opts...)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode contract: %w", err)
	}

	if out, _ := cmd.Flags().GetString("out"); out != "" {
		return os.WriteFile(out, append(data, '\n'), 0o644)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
