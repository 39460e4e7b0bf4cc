package cli

import (
	"errors"
	"fmt"

	"edmrepos/internal/admin"
	"edmrepos/internal/flags"

	"github.com/spf13/cobra"
)

func newAddBranchProtectionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-branch-protection <repo>",
		Short: "Replace branch protection on develop and master",
		Long: `Replace the classic branch protection rule on each branch (develop, then
master by default). Each rule enforces admins, dismisses stale reviews,
requires approving reviews and strict CI status checks, and clears push
restrictions.

A failure on one branch is reported and the next branch is still attempted.

Examples:
	edm-repos add-branch-protection my-repo
	edm-repos add-branch-protection acme/widgets --branch main --no-status-checks
	edm-repos add-branch-protection my-repo --ci-name "GitHub Actions"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			p := s.cfg.Protection
			contexts := p.Contexts
			if len(contexts) == 0 {
				contexts = admin.DefaultStatusContexts(p.CIName)
			}
			outcomes := s.svc.ApplyProtection(ctx, ref, admin.ProtectionOptions{
				Branches:                 p.Branches,
				RequireStatusChecks:      p.RequireStatusChecks,
				Contexts:                 contexts,
				RequiredApprovingReviews: p.RequiredApprovingReviews,
			})
			return s.finish(s.run.Record(outcomes...))
		},
	}

	cmd.Flags().StringSliceVar(&a.flags.branches, flags.FlagBranch, admin.DefaultBranches, "Branches to protect, in order (repeatable; comma-separated accepted)")
	cmd.Flags().BoolVar(&a.flags.noStatusChecks, flags.FlagNoStatusChecks, false, "Do not require CI status checks")
	cmd.Flags().StringVar(&a.flags.ciName, flags.FlagCIName, admin.DefaultCIName, `CI name used for the "<CI> - Branch" and "<CI> - Pull Request" contexts`)
	cmd.Flags().StringSliceVar(&a.flags.contexts, flags.FlagContext, nil, "Required status check contexts (replaces the CI defaults)")
	cmd.Flags().IntVar(&a.flags.requiredReviews, flags.FlagRequiredReviews, admin.DefaultRequiredApprovingReviews, "Required approving reviews (1-6)")
	addAllowMissingRepoFlag(cmd, a)
	return cmd
}

func newEnforceAdminProtectionCmd(a *app) *cobra.Command {
	var enable, disable bool

	cmd := &cobra.Command{
		Use:   "enforce-admin-protection <repo>",
		Short: "Turn admin enforcement on or off for develop and master",
		Long: `Toggle "include administrators" on the existing protection of each branch.

Branches are processed in order and the first failure stops the command;
later branches are left untouched.

Examples:
	edm-repos enforce-admin-protection my-repo -e
	edm-repos enforce-admin-protection my-repo --disableProtection`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if enable == disable {
				return errors.New("exactly one of --enableProtection or --disableProtection must be true")
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

			outcomes, err := s.svc.SetAdminEnforcement(ctx, ref, s.cfg.Protection.Branches, enable)
			if rerr := s.run.Record(outcomes...); rerr != nil && err == nil {
				err = rerr
			}
			if err != nil {
				return s.finish(fmt.Errorf("admin enforcement stopped: %w", err))
			}
			return s.finish(nil)
		},
	}

	cmd.Flags().BoolVarP(&enable, flags.FlagEnableProtection, "e", false, "Enforce protection for administrators")
	cmd.Flags().BoolVarP(&disable, flags.FlagDisableProtection, "d", false, "Stop enforcing protection for administrators")
	cmd.MarkFlagsMutuallyExclusive(flags.FlagEnableProtection, flags.FlagDisableProtection)
	cmd.MarkFlagsOneRequired(flags.FlagEnableProtection, flags.FlagDisableProtection)
	cmd.Flags().StringSliceVar(&a.flags.branches, flags.FlagBranch, admin.DefaultBranches, "Branches to update, in order (repeatable; comma-separated accepted)")
	addAllowMissingRepoFlag(cmd, a)
	return cmd
}

func newProtectionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "protection",
		Short: "Inspect branch protection",
	}

	show := &cobra.Command{
		Use:   "show <repo>",
		Short: "List classic branch protection rules and admin enforcement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ctx, cancel, err := a.begin(cmd, sessionOptions{
				command: "protection show",
				repo:    args[0],
			})
			if err != nil {
				return err
			}
			defer cancel()

			rules, _, err := s.svc.ListProtectionRules(ctx, s.ref)
			if err != nil {
				return s.finish(err)
			}
			if len(rules) == 0 {
				s.log.Infof("no branch protection rules on %s", s.ref)
			}
			outcomes := make([]admin.Outcome, 0, len(rules))
			for _, r := range rules {
				outcomes = append(outcomes, admin.Outcome{
					Action: admin.ActionInspectProtection,
					Repo:   s.ref.String(),
					Target: r.Pattern,
					Detail: r.Summary(),
				})
			}
			return s.finish(s.run.Record(outcomes...))
		},
	}
	cmd.AddCommand(show)
	return cmd
}
