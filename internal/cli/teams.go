package cli

import (
	"edmrepos/internal/admin"
	"edmrepos/internal/config"
	"edmrepos/internal/flags"

	"github.com/spf13/cobra"
)

func newAddTeamsToRepoCmd(a *app) *cobra.Command {
	var (
		teams      []string
		permission string
	)

	cmd := &cobra.Command{
		Use:   "add-teams-to-repo <repo>",
		Short: "Grant organization teams a permission on a repository",
		Long: `Grant each named team the given permission on the repository.

Teams are matched by exact display name against the owner's first page of
teams. If any name does not match, no grants are made. Grants run
concurrently (see --concurrency) and one failed grant does not stop the
others.

Examples:
	edm-repos add-teams-to-repo my-repo --team "Team A"
	edm-repos add-teams-to-repo my-repo --team "Team A" --team "Team B" --permission push`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			perm, err := admin.ParsePermission(permission)
			if err != nil {
				return err
			}

			s, ctx, cancel, err := a.begin(cmd, sessionOptions{
				command:      cmd.Name(),
				repo:         args[0],
				requireToken: true,
			})
			if err != nil {
				return err
			}
			defer cancel()

			ref, err := s.resolveRepository(ctx)
			if err != nil {
				return s.finish(err)
			}

			outcomes, err := s.svc.AddTeamsToRepo(ctx, ref, admin.TeamGrantRequest{
				Teams:      teams,
				Permission: perm,
			})
			if err != nil {
				return s.finish(err)
			}
			return s.finish(s.run.Record(outcomes...))
		},
	}

	cmd.Flags().StringArrayVar(&teams, flags.FlagTeam, nil, "Team display name (repeatable)")
	cmd.Flags().StringVar(&permission, flags.FlagPermission, string(admin.PermissionPull), "Permission to grant: pull|push|admin")
	cmd.Flags().IntVar(&a.flags.concurrency, flags.FlagConcurrency, config.New().Runtime.Concurrency, "Concurrent team grants")
	_ = cmd.MarkFlagRequired(flags.FlagTeam)
	addAllowMissingRepoFlag(cmd, a)
	return cmd
}
