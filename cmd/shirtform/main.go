package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/shirtform/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	var dir string

	rootCmd := &cobra.Command{
		Use:   "shirtform",
		Short: "A validated shirt order form",
		Long: `shirtform serves and checks a shirt order form.

The form asks for a full name, a shirt size and favorite animals.
Every field is validated by a declarative schema and the form
cannot be submitted until all of them are valid.

  • Server-rendered page with live validation over WebSocket
  • Stateless JSON validation API
  • Interactive terminal filling
  • Schema and catalog loaded from YAML`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&dir, "dir", "C", ".", "Directory holding shirtform.json and .env")

	rootCmd.AddCommand(
		serveCmd(&dir),
		checkCmd(&dir),
		fillCmd(&dir),
		schemaCmd(&dir),
		initCmd(&dir),
		versionCmd(),
	)
	return rootCmd
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// failure prints a failed item.
func failure(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
