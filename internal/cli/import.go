package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newImportCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Save an external image so it is listed as a candidate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve %s: %w", args[0], err)
			}

			ref, err := env.services.Images.Import(cmd.Context(), path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s\n", ref.String())
			return nil
		},
	}
}
