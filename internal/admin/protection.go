package admin

import (
	"context"
	"encoding/json"
	"strings"

	gh "edmrepos/internal/github"

	"github.com/google/go-github/v81/github"
	"github.com/sirupsen/logrus"
)

const (
	DefaultCIName                   = "Travis CI"
	DefaultRequiredApprovingReviews = 1
)

// DefaultBranches is the historical develop/master pair, in the order they
// are processed.
var DefaultBranches = []string{"develop", "master"}

// DefaultStatusContexts returns the branch and pull-request status contexts a
// CI integration named ciName reports.
func DefaultStatusContexts(ciName string) []string {
	ciName = strings.TrimSpace(ciName)
	if ciName == "" {
		ciName = DefaultCIName
	}
	return []string{ciName + " - Branch", ciName + " - Pull Request"}
}

// ProtectionRule is the complete desired protection for one branch. It is
// submitted as a full replace: anything not set here is cleared on GitHub.
type ProtectionRule struct {
	Branch                   string
	EnforceAdmins            bool
	DismissStaleReviews      bool
	RequireCodeOwnerReviews  bool
	RequiredApprovingReviews int
	RequiredChecksStrict     bool
	RequiredCheckContexts    []string
	RestrictedTeams          []string
	RestrictedUsers          []string
}

type ProtectionOptions struct {
	// Branches in processing order; empty means DefaultBranches.
	Branches []string
	// RequireStatusChecks false submits an empty context list.
	RequireStatusChecks bool
	// Contexts overrides DefaultStatusContexts(DefaultCIName).
	Contexts []string
	// RequiredApprovingReviews <= 0 means DefaultRequiredApprovingReviews.
	RequiredApprovingReviews int
}

func (o ProtectionOptions) branches() []string {
	if len(o.Branches) == 0 {
		return DefaultBranches
	}
	return o.Branches
}

// NewProtectionRule builds the rule for branch. Each call returns an
// independent value; no slices are shared between rules.
func NewProtectionRule(branch string, opts ProtectionOptions) ProtectionRule {
	contexts := []string{}
	if opts.RequireStatusChecks {
		src := opts.Contexts
		if len(src) == 0 {
			src = DefaultStatusContexts(DefaultCIName)
		}
		contexts = append(contexts, src...)
	}

	reviews := opts.RequiredApprovingReviews
	if reviews <= 0 {
		reviews = DefaultRequiredApprovingReviews
	}

	return ProtectionRule{
		Branch:                   branch,
		EnforceAdmins:            true,
		DismissStaleReviews:      true,
		RequireCodeOwnerReviews:  false,
		RequiredApprovingReviews: reviews,
		RequiredChecksStrict:     true,
		RequiredCheckContexts:    contexts,
		RestrictedTeams:          []string{},
		RestrictedUsers:          []string{},
	}
}

// Request renders the rule as the GitHub update payload. Restriction lists
// are always non-nil so they serialize as [] and clear existing entries.
func (r ProtectionRule) Request() *github.ProtectionRequest {
	contexts := append([]string{}, r.RequiredCheckContexts...)
	teams := append([]string{}, r.RestrictedTeams...)
	users := append([]string{}, r.RestrictedUsers...)

	return &github.ProtectionRequest{
		RequiredStatusChecks: &github.RequiredStatusChecks{
			Strict:   r.RequiredChecksStrict,
			Contexts: &contexts,
		},
		RequiredPullRequestReviews: &github.PullRequestReviewsEnforcementRequest{
			DismissStaleReviews:          r.DismissStaleReviews,
			RequireCodeOwnerReviews:      r.RequireCodeOwnerReviews,
			RequiredApprovingReviewCount: r.RequiredApprovingReviews,
		},
		EnforceAdmins: r.EnforceAdmins,
		Restrictions: &github.BranchRestrictionsRequest{
			Users: users,
			Teams: teams,
			Apps:  []string{},
		},
	}
}

// ApplyProtection replaces the protection rule on each branch, in order.
// Branches are independent: a failure is recorded and logged, and the next
// branch is still attempted.
func (s *Service) ApplyProtection(ctx context.Context, ref RepositoryRef, opts ProtectionOptions) []Outcome {
	branches := opts.branches()
	outcomes := make([]Outcome, 0, len(branches))
	for _, branch := range branches {
		rule := NewProtectionRule(branch, opts)
		outcomes = append(outcomes, s.updateProtection(ctx, ref, rule))
	}
	return outcomes
}

func (s *Service) updateProtection(ctx context.Context, ref RepositoryRef, rule ProtectionRule) Outcome {
	log := s.log.WithFields(logrus.Fields{"repo": ref.String(), "branch": rule.Branch})

	protection, resp, err := s.client.Client.Repositories.UpdateBranchProtection(ctx, ref.Owner, ref.Name, rule.Branch, rule.Request())
	o := Outcome{
		Action:     ActionProtectBranch,
		Repo:       ref.String(),
		Target:     rule.Branch,
		StatusCode: gh.StatusCode(resp),
		Detail:     strings.Join(rule.RequiredCheckContexts, ", "),
	}
	if !gh.Succeeded(resp, err) {
		o.fail(err)
		log.WithFields(logrus.Fields{"status": o.StatusCode, "body": o.Body}).Errorf("couldn't add %s branch protection", rule.Branch)
		return o
	}

	log.Infof("Added %s branch protection. Response status %d", rule.Branch, o.StatusCode)
	if b, mErr := json.MarshalIndent(protection, "", "    "); mErr == nil {
		log.Debug(string(b))
	}
	return o
}

// SetAdminEnforcement turns "include administrators" on or off for each
// branch, in order. Unlike ApplyProtection, the first failure stops the
// loop: the returned error is a *MutationError for that branch and later
// branches are not attempted. Outcomes for the branches that were attempted
// are returned either way.
func (s *Service) SetAdminEnforcement(ctx context.Context, ref RepositoryRef, branches []string, enable bool) ([]Outcome, error) {
	if len(branches) == 0 {
		branches = DefaultBranches
	}

	outcomes := make([]Outcome, 0, len(branches))
	for _, branch := range branches {
		o := s.toggleAdminEnforcement(ctx, ref, branch, enable)
		outcomes = append(outcomes, o)
		if !o.OK() {
			return outcomes, o.Err
		}
	}
	return outcomes, nil
}

func (s *Service) toggleAdminEnforcement(ctx context.Context, ref RepositoryRef, branch string, enable bool) Outcome {
	log := s.log.WithFields(logrus.Fields{"repo": ref.String(), "branch": branch})

	var (
		resp *github.Response
		err  error
	)
	o := Outcome{Repo: ref.String(), Target: branch}
	if enable {
		o.Action = ActionEnableAdminEnforcement
		_, resp, err = s.client.Client.Repositories.AddAdminEnforcement(ctx, ref.Owner, ref.Name, branch)
	} else {
		o.Action = ActionDisableAdminEnforcement
		resp, err = s.client.Client.Repositories.RemoveAdminEnforcement(ctx, ref.Owner, ref.Name, branch)
	}
	o.StatusCode = gh.StatusCode(resp)

	if !gh.Succeeded(resp, err) {
		o.fail(err)
		log.WithField("status", o.StatusCode).Error(o.Err.Error())
		return o
	}

	if enable {
		log.Infof("enabled admin protection for %s", branch)
	} else {
		log.Infof("disabled admin protection for %s", branch)
	}
	return o
}
