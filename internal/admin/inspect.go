package admin

import (
	"context"
	"fmt"
	"strings"

	gh "edmrepos/internal/github"

	"github.com/sirupsen/logrus"
)

// RuleStatus is the live state of one classic branch protection rule.
type RuleStatus struct {
	Pattern                      string
	IsAdminEnforced              bool
	RequiresApprovingReviews     bool
	RequiredApprovingReviewCount int
	RequiresStatusChecks         bool
	RequiredStatusCheckContexts  []string
}

type protectionRulesData struct {
	Repository *struct {
		BranchProtectionRules struct {
			Nodes []struct {
				Pattern                      string   `json:"pattern"`
				IsAdminEnforced              bool     `json:"isAdminEnforced"`
				RequiresApprovingReviews     bool     `json:"requiresApprovingReviews"`
				RequiredApprovingReviewCount int      `json:"requiredApprovingReviewCount"`
				RequiresStatusChecks         bool     `json:"requiresStatusChecks"`
				RequiredStatusCheckContexts  []string `json:"requiredStatusCheckContexts"`
			} `json:"nodes"`
			PageInfo struct {
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pageInfo"`
		} `json:"branchProtectionRules"`
	} `json:"repository"`
}

const protectionRulesQuery = `query($owner:String!, $name:String!) {
  repository(owner:$owner, name:$name) {
    branchProtectionRules(first:100) {
      nodes {
        pattern
        isAdminEnforced
        requiresApprovingReviews
        requiredApprovingReviewCount
        requiresStatusChecks
        requiredStatusCheckContexts
      }
      pageInfo { hasNextPage }
    }
  }
}`

// ListProtectionRules reads the repository's classic protection rules in a
// single GraphQL page. truncated reports that more than one page exists.
func (s *Service) ListProtectionRules(ctx context.Context, ref RepositoryRef) (rules []RuleStatus, truncated bool, err error) {
	if err := ref.Validate(); err != nil {
		return nil, false, err
	}
	log := s.log.WithField("repo", ref.String())
	log.Infof("getting branch protection rules for %s", ref)

	data, status, err := gh.GraphQL[protectionRulesData](ctx, s.client, gh.GraphQLRequest{
		Query: protectionRulesQuery,
		Variables: map[string]any{
			"owner": ref.Owner,
			"name":  ref.Name,
		},
	})
	if err == nil && data.Repository == nil {
		err = fmt.Errorf("repository %s not visible", ref)
	}
	if err != nil {
		lerr := &LookupError{
			Resource:   "branch protection rules for",
			Target:     ref.String(),
			StatusCode: status,
			Body:       err.Error(),
			Err:        err,
		}
		log.WithFields(logrus.Fields{"status": status}).Errorf("couldn't read branch protection rules for %s", ref)
		return nil, false, lerr
	}

	conn := data.Repository.BranchProtectionRules
	rules = make([]RuleStatus, 0, len(conn.Nodes))
	for _, n := range conn.Nodes {
		pattern := strings.TrimSpace(n.Pattern)
		if pattern == "" {
			continue
		}
		rules = append(rules, RuleStatus{
			Pattern:                      pattern,
			IsAdminEnforced:              n.IsAdminEnforced,
			RequiresApprovingReviews:     n.RequiresApprovingReviews,
			RequiredApprovingReviewCount: n.RequiredApprovingReviewCount,
			RequiresStatusChecks:         n.RequiresStatusChecks,
			RequiredStatusCheckContexts:  n.RequiredStatusCheckContexts,
		})
	}
	if conn.PageInfo.HasNextPage {
		log.Warnf("%s has more than %d protection rules; showing the first page", ref, len(conn.Nodes))
	}
	return rules, conn.PageInfo.HasNextPage, nil
}

// Summary renders the rule on one line for console output.
func (r RuleStatus) Summary() string {
	parts := []string{fmt.Sprintf("enforce_admins=%t", r.IsAdminEnforced)}
	if r.RequiresApprovingReviews {
		parts = append(parts, fmt.Sprintf("reviews=%d", r.RequiredApprovingReviewCount))
	}
	if r.RequiresStatusChecks {
		parts = append(parts, "checks="+strings.Join(r.RequiredStatusCheckContexts, ","))
	}
	return strings.Join(parts, " ")
}
