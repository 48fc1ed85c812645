package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vango-dev/shirtform/internal/errors"
	"github.com/vango-dev/shirtform/pkg/form"
)

// checkResult is the machine-readable output of check.
type checkResult struct {
	Valid  bool        `json:"valid" yaml:"valid"`
	Values form.Values `json:"values" yaml:"values"`
	Errors form.Errors `json:"errors" yaml:"errors"`
}

func checkCmd(dir *string) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a values file",
		Long: `Validate a YAML or JSON file holding fullName, shirtSize and animals.

Every field is checked and its message printed. The command exits
with status 1 when any field is invalid.

Examples:
  shirtform check order.yaml
  shirtform check order.json --output=json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return runCheck(cmd.OutOrStdout(), a.schema, args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format: text, yaml or json")

	return cmd
}

// runCheck validates the values in path and reports to w.
func runCheck(w io.Writer, schema *form.Schema, path, output string) error {
	values, err := readValues(path)
	if err != nil {
		return err
	}

	errs := schema.ValidateAll(values)
	result := checkResult{Valid: errs.Valid(), Values: values, Errors: errs}

	switch output {
	case "text", "":
		for _, f := range form.Fields {
			if msg := errs.Get(f); msg != "" {
				failure(w, "%s: %s", f, msg)
			} else {
				success(w, "%s", f)
			}
		}
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	case "yaml":
		if err := encodeYAML(w, result); err != nil {
			return err
		}
	default:
		return errors.New("E305").Wrap(fmt.Errorf("unknown output %q", output))
	}

	if !result.Valid {
		return errors.New("E302").WithFile(path)
	}
	return nil
}

// readValues decodes a values file. JSON is read as YAML, which it is a
// subset of. An empty file yields empty values.
func readValues(path string) (form.Values, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return form.Values{}, errors.New("E300").WithFile(path).Wrap(err)
	}

	var values form.Values
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&values); err != nil && !stderrors.Is(err, io.EOF) {
		return form.Values{}, fileError("E301", path, err).
			WithSuggestion("Use the keys fullName, shirtSize and animals")
	}
	if values.Animals == nil {
		values.Animals = []string{}
	}
	return values, nil
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
