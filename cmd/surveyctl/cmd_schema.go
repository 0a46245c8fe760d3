package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/juventudesmira/intake/internal/survey"
)

var schemaFormat string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the questionnaire",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

var headersCmd = &cobra.Command{
	Use:   "headers",
	Short: "Print the stored column layout",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		out := cmd.OutOrStdout()
		for i, c := range schema().Columns() {
			fmt.Fprintf(out, "%2d  %-16s %s\n", i+1, c.Key, c.Header)
		}
		return nil
	},
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaFormat, "format", "f", "text", "output format: text, yaml or json")
}

func runSchema(cmd *cobra.Command, _ []string) error {
	s := schema()
	out := cmd.OutOrStdout()

	switch schemaFormat {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(s.Questions())
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Questions())
	case "text":
	default:
		return fmt.Errorf("unknown format %q", schemaFormat)
	}

	for _, q := range s.Questions() {
		req := ""
		if q.Required {
			req = " *"
		}
		fmt.Fprintf(out, "%-8s [%s]%s %s\n", q.Key(), q.Kind, req, q.Label)
		for _, f := range q.Fields {
			fmt.Fprintf(out, "           .%s [%s] %s\n", f.Name, f.Kind, f.Label)
		}
		if q.Kind == survey.KindDependentSelect {
			fmt.Fprintf(out, "           options depend on q_%s\n", q.DependsOn)
		}
	}
	return nil
}
