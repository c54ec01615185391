package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"image-selector/internal/models"
)

type batchKind struct {
	action models.ActionKind
	use    string
	short  string
}

var (
	batchCopy = batchKind{
		action: models.ActionCopy,
		use:    "copy [ref...]",
		short:  "Copy images to copied_<name>.jpeg in the assets directory",
	}
	batchDelete = batchKind{
		action: models.ActionDelete,
		use:    "delete [ref...]",
		short:  "Permanently delete images",
	}
)

// newBatchCmd builds copy and delete. Each ref is a bundled asset name or an
// absolute path.
func newBatchCmd(env *environment, kind batchKind) *cobra.Command {
	var (
		all bool
		yes bool
	)

	cmd := &cobra.Command{
		Use:   kind.use,
		Short: kind.short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all && len(args) > 0 {
				return fmt.Errorf("--all cannot be combined with explicit references")
			}

			op := env.services.Operator
			sel := op.NewSelection()
			if all {
				sel.SetAll(true)
			}
			for _, arg := range args {
				ref, err := models.ParseReference(arg)
				if err != nil {
					return err
				}
				sel.Toggle(ref, true)
			}

			var (
				action models.PendingAction
				err    error
			)
			if kind.action == models.ActionDelete {
				action, err = op.RequestDelete(sel)
			} else {
				action, err = op.RequestCopy(sel)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, ref := range action.Refs {
				fmt.Fprintf(out, "  %s\n", ref.String())
			}

			if !yes && !confirm(out, cmd.InOrStdin(), action.ConfirmMessage()) {
				if err := op.Cancel(action); err != nil {
					return err
				}
				fmt.Fprintln(out, "Cancelled")
				return nil
			}

			result, err := op.Confirm(cmd.Context(), action)
			if err != nil {
				return err
			}

			fmt.Fprintln(out, result.Summary())
			for _, f := range result.Failures {
				fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %v\n", f.Ref.String(), f.Err)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%w: %d of %d", ErrBatchFailed, result.Failed, result.Total())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include every candidate")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm defaults to no on empty input or EOF
func confirm(w io.Writer, r io.Reader, question string) bool {
	fmt.Fprintf(w, "%s Proceed? [y/N] ", question)

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		fmt.Fprintln(w)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
