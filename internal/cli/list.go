package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newListCmd(env *environment) *cobra.Command {
	var existingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List candidate images in selector order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc := env.services
			candidates := svc.Operator.ListCandidates()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "#\tREF\tSOURCE\tSTATUS")
			for i, ref := range candidates {
				status := "ok"
				if !svc.Images.Exists(ref) {
					if existingOnly {
						continue
					}
					status = "missing"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, ref.String(), svc.Images.Resolve(ref), status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			stats := svc.Repo.GetImageStats()
			fmt.Fprintf(cmd.ErrOrStderr(), "%d candidates, %d saved (%d external)\n",
				len(candidates), stats.SavedCount, stats.AbsoluteCount)
			return nil
		},
	}

	cmd.Flags().BoolVar(&existingOnly, "existing-only", false, "hide candidates whose file does not exist")
	return cmd
}

