package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cursive-lang/cursive0/internal/config"
	"github.com/cursive-lang/cursive0/internal/pipeline"
)

func newCheckCmd() *cobra.Command {
	var configPath string
	var showTimings bool
	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Run the full front end (parse, resolve, type-check) over a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			code, err := readSource(args[0])
			if err != nil {
				return err
			}
			res := pipeline.Run(cfg, pipeline.Source{Code: code, Filename: args[0]})
			printDiagnostics(cmd, res.Sink)
			if showTimings {
				printTimings(cmd, res.PhaseTimings)
			}
			if res.Sink.HasErrors() {
				return fmt.Errorf("check failed")
			}
			fmt.Fprintln(cmd.OutOrStdout(), bold("ok"))
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a cursive0.yaml config file")
	cmd.Flags().BoolVar(&showTimings, "timings", false, "print per-phase wall-clock timings")
	return cmd
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func readSource(path string) (string, error) {
	f, err := loadFile(path)
	if err != nil {
		return "", err
	}
	return string(f.Bytes), nil
}

func printTimings(cmd *cobra.Command, timings map[string]int64) {
	out := cmd.OutOrStdout()
	for _, phase := range []string{"lex+parse", "resolve", "check", "region", "modal", "lower"} {
		if ms, ok := timings[phase]; ok {
			fmt.Fprintf(out, "%-10s %dms\n", phase, ms)
		}
	}
}
