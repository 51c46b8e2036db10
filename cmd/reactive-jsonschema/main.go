// Package main provides the CLI entry point for reactive-jsonschema: an
// interactive driver for a Runtime, grounded on MacroPower-x's cmd/ +
// cobra layout.
package main

import (
	"fmt"
	"os"

	"github.com/go-json-experiment/json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"charm.land/log/v2"

	reactive "github.com/kaptinlin/reactive-jsonschema"
	"github.com/kaptinlin/reactive-jsonschema/adapters/kaptinlin"
)

func main() {
	cfg := newConfig()

	rootCmd := &cobra.Command{
		Use:   "reactive-jsonschema <schema.json> <instance.json>",
		Short: "Drive a reactive JSON Schema runtime from a terminal",
		Long: `reactive-jsonschema loads a JSON Schema and an instance document, then
applies a sequence of set/add/remove commands read from stdin (one per
line), printing every value/schema/error event as it streams from the
runtime's global subscription.`,
		Args:          cobra.ExactArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(_ *cobra.Command, args []string) error {
			return run(cfg, args[0], args[1])
		},
	}

	cfg.registerFlags(rootCmd.Flags())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type config struct {
	logLevel              string
	removeEmptyContainers string
	fillDefaults          string
}

func newConfig() *config {
	return &config{
		logLevel:              "info",
		removeEmptyContainers: "auto",
		fillDefaults:          "explicit",
	}
}

func (c *config) registerFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.logLevel, "log-level", c.logLevel, "log level: debug, info, warn, error")
	flags.StringVar(&c.removeEmptyContainers, "remove-empty-containers", c.removeEmptyContainers, "auto, always, or never")
	flags.StringVar(&c.fillDefaults, "fill-defaults", c.fillDefaults, "explicit, always, or never")
}

func (c *config) newLogger() *log.Logger {
	logger := log.New(os.Stderr)
	if lvl, err := log.ParseLevel(c.logLevel); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func run(cfg *config, schemaPath, instancePath string) error {
	logger := cfg.newLogger()

	schemaBytes, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	schema, err := reactive.CompileSchema(schemaBytes)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	instanceBytes, err := os.ReadFile(instancePath)
	if err != nil {
		return fmt.Errorf("read instance: %w", err)
	}
	var instance any
	if len(instanceBytes) > 0 {
		if err := json.Unmarshal(instanceBytes, &instance); err != nil {
			return fmt.Errorf("parse instance: %w", err)
		}
	}

	rt, err := reactive.NewRuntime(kaptinlin.New(), schema, instance, &reactive.RuntimeOptions{
		RemoveEmptyContainers: reactive.RemoveEmptyContainers(cfg.removeEmptyContainers),
		FillDefaults:          reactive.DefaultStrategy(cfg.fillDefaults),
		Logger:                logger,
	})
	if err != nil {
		return fmt.Errorf("start runtime: %w", err)
	}

	unsubscribe := rt.SubscribeAll(func(e reactive.Event) {
		logger.Info("event", "kind", e.Kind, "path", e.Path, "version", rt.GetVersion())
	})
	defer unsubscribe()

	return runCommandLoop(rt, logger)
}
