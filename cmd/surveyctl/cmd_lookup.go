package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/juventudesmira/intake/internal/survey"
	"github.com/juventudesmira/intake/internal/tablestore"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <document>",
	Short: "Show the stored registration for a document number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !survey.ValidDocumentNumber(args[0]) {
			return fmt.Errorf("%q: document number must be 7 to 12 digits", args[0])
		}
		rec, err := newClient().Lookup(cmd.Context(), args[0])
		if errors.Is(err, tablestore.ErrKeyNotFound) {
			fmt.Fprintln(cmd.OutOrStdout(), "No hay registro para este documento.")
			return nil
		}
		if err != nil {
			return err
		}

		// Print in column order rather than map order.
		doc := &yaml.Node{Kind: yaml.MappingNode}
		for _, h := range schema().Headers() {
			v, ok := rec[h]
			if !ok {
				continue
			}
			doc.Content = append(doc.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: h},
				&yaml.Node{Kind: yaml.ScalarNode, Value: v, Style: yaml.DoubleQuotedStyle},
			)
		}
		enc := yaml.NewEncoder(cmd.OutOrStdout())
		defer enc.Close()
		return enc.Encode(doc)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the service can reach its spreadsheet",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		title, err := newClient().CheckConnection(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Conexión exitosa: %s\n", title)
		return nil
	},
}
