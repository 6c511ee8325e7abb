package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/cursive-lang/cursive0/internal/ir"
	"github.com/cursive-lang/cursive0/internal/pipeline"
)

func newLowerCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "lower <file>",
		Short: "Run the front end and print every procedure's lowered IR",
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
			if res.Sink.HasErrors() {
				return fmt.Errorf("lowering skipped: front end reported errors")
			}

			names := make([]string, 0, len(res.Artifacts.Lowered))
			for name := range res.Artifacts.Lowered {
				names = append(names, name)
			}
			sort.Strings(names)

			out := cmd.OutOrStdout()
			for _, name := range names {
				proc := res.Artifacts.Lowered[name]
				fmt.Fprintf(out, "; %s -> %s\n", name, proc.Symbol)
				fmt.Fprint(out, ir.Sprint(proc.Body))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a cursive0.yaml config file")
	return cmd
}
