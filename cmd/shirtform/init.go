package main

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vango-dev/shirtform/internal/config"
	"github.com/vango-dev/shirtform/internal/errors"
)

func initCmd(dir *string) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default shirtform.json",
		Long: `Write shirtform.json with every setting at its default.

Examples:
  shirtform init
  shirtform init -C ./deploy --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Join(*dir, config.ConfigFileName)
			if config.Exists(*dir) && !force {
				return errors.Newf(errors.CategoryCLI, "%s already exists", path).
					WithSuggestion("Pass --force to overwrite it")
			}
			if err := config.New().SaveTo(path); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "Wrote %s", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")

	return cmd
}
