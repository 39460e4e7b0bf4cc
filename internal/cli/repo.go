package cli

import (
	"github.com/spf13/cobra"
)

func newRepoCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Inspect repositories",
	}

	show := &cobra.Command{
		Use:   "show <repo>",
		Short: "Print the full name and visibility of a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ctx, cancel, err := a.begin(cmd, sessionOptions{
				command: "repo show",
				repo:    args[0],
			})
			if err != nil {
				return err
			}
			defer cancel()

			_, err = s.resolveRepository(ctx)
			return s.finish(err)
		},
	}
	cmd.AddCommand(show)
	return cmd
}

