package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formwizard/internal/config"
	"github.com/goliatone/go-formwizard/internal/logging"
	"github.com/goliatone/go-formwizard/pkg/schema"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "formwizard",
		Short:         "Formwizard runs multi-step forms described by a schema file",
		Long:          `Formwizard walks a user through the steps of a JSON or YAML form schema, in the browser or in the terminal, and emits the collected answers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().StringP("config", "c", "", "YAML configuration file")
	root.PersistentFlags().StringP("schema", "s", "", "form schema file (JSON or YAML)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "", "log format (console, json)")

	root.AddCommand(
		newServeCmd(),
		newFillCmd(),
		newContractCmd(),
		newCheckCmd(),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads --config and applies the persistent flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	overrideString(cmd, "schema", &cfg.Schema)
	overrideString(cmd, "log-level", &cfg.Log.Level)
	overrideString(cmd, "log-format", &cfg.Log.Format)
	return cfg, nil
}

// overrideString copies a flag into dst when the user set it explicitly.
func overrideString(cmd *cobra.Command, name string, dst *string) {
	flag := cmd.Flags().Lookup(name)
	if flag == nil || !flag.Changed {
		return
	}
	*dst = flag.Value.String()
}

// schemaPath prefers a positional argument over --schema and the config.
func schemaPath(cfg config.Config, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if strings.TrimSpace(cfg.Schema) == "" {
		return "", fmt.Errorf("no schema given: pass a path, --schema or set schema in the config file")
	}
	return cfg.Schema, nil
}

func loadSchema(cfg config.Config, args []string) (*schema.Schema, string, error) {
	path, err := schemaPath(cfg, args)
	if err != nil {
		return nil, "", err
	}
	s, err := schema.Load(path)
	if err != nil {
		return nil, path, err
	}
	return s, path, nil
}

func newLogger(cfg config.Config, w io.Writer) (zerolog.Logger, error) {
	return logging.New(cfg.Log.Level, cfg.Log.Format, w)
}
