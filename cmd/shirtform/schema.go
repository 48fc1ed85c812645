package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/shirtform/internal/errors"
	"github.com/vango-dev/shirtform/pkg/catalog"
	"github.com/vango-dev/shirtform/pkg/form"
)

func schemaCmd(dir *string) *cobra.Command {
	var (
		output      string
		withCatalog bool
	)

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the validation schema",
		Long: `Print the schema in effect, either the built-in one or the file
named by shirtform.json. The YAML output can be edited and loaded back.

Examples:
  shirtform schema > schema.yaml
  shirtform schema --catalog --output=json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			var cat *catalog.Catalog
			if withCatalog {
				cat = a.catalog
			}
			return printSchema(cmd.OutOrStdout(), a.schema, cat, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVar(&withCatalog, "catalog", false, "Also print the animal and size catalog")

	return cmd
}

// printSchema writes the schema, and the catalog when cat is not nil.
func printSchema(w io.Writer, schema *form.Schema, cat *catalog.Catalog, output string) error {
	switch output {
	case "yaml", "":
		data, err := schema.Describe()
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}
		if cat != nil {
			fmt.Fprintln(w, "---")
			return encodeYAML(w, map[string]any{
				"animals": cat.Animals(),
				"sizes":   cat.Sizes(),
			})
		}
		return nil
	case "json":
		doc := map[string]any{"fields": schema.Groups()}
		if cat != nil {
			doc["animals"] = cat.Animals()
			doc["sizes"] = cat.Sizes()
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return errors.New("E305").Wrap(fmt.Errorf("unknown output %q", output))
	}
}
