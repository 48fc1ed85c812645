package main

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/shirtform/internal/errors"
	"github.com/vango-dev/shirtform/pkg/form"
	"github.com/vango-dev/shirtform/pkg/reactive"
	"github.com/vango-dev/shirtform/pkg/tui"
)

func fillCmd(dir *string) *cobra.Command {
	var (
		output   string
		yes      bool
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill the form in the terminal",
		Long: `Fill the form interactively.

Each field is asked in turn and asked again while it is invalid.
The submitted values are printed when the form is complete.

Examples:
  shirtform fill
  shirtform fill --yes --output=json > order.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*dir, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			defer reactive.ReleaseGoroutine()
			ctl := form.NewController(a.schema,
				form.WithCatalog(a.catalog),
				form.WithLogger(a.logger),
			)
			if err := ctl.Mount(); err != nil {
				return err
			}
			defer ctl.Dispose()

			filler := tui.New(tui.WithConfirm(!yes), tui.WithMaxAttempts(attempts))
			values, err := filler.Fill(cmd.Context(), ctl)
			switch {
			case stderrors.Is(err, tui.ErrAborted):
				return errors.New("E303")
			case stderrors.Is(err, tui.ErrTooManyAttempts):
				return errors.New("E302").Wrap(err)
			case err != nil:
				return err
			}
			return writeValues(cmd.OutOrStdout(), values, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml or json")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Submit without confirmation")
	cmd.Flags().IntVar(&attempts, "attempts", 3, "Prompts per field before giving up (0 for no limit)")

	return cmd
}

// writeValues prints submitted values.
func writeValues(w io.Writer, values form.Values, output string) error {
	switch output {
	case "yaml", "":
		return encodeYAML(w, values)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(values)
	default:
		return errors.New("E305").Wrap(fmt.Errorf("unknown output %q", output))
	}
}
