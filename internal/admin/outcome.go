package admin

import (
	"strconv"

	gh "edmrepos/internal/github"
)

type Action string

const (
	ActionResolveRepository       Action = "repo.resolve"
	ActionProtectBranch           Action = "branch.protect"
	ActionEnableAdminEnforcement  Action = "branch.enforce_admins.enable"
	ActionDisableAdminEnforcement Action = "branch.enforce_admins.disable"
	ActionGrantTeam               Action = "team.grant"
	ActionInspectProtection       Action = "branch.protection.inspect"
)

// Outcome records one unit of work against GitHub: a branch for protection
// calls, a team for grants.
type Outcome struct {
	Action     Action
	Repo       string
	Target     string
	StatusCode int
	// Detail carries action-specific context such as the granted permission.
	Detail string
	// Body is the provider's error payload; diagnostic only.
	Body string
	Err  error
}

func (o Outcome) OK() bool {
	return o.Err == nil
}

// Status renders the HTTP status for display; "-" means no response arrived.
func (o Outcome) Status() string {
	if o.StatusCode == 0 {
		return "-"
	}
	return strconv.Itoa(o.StatusCode)
}

// Failed filters outcomes down to the ones that did not succeed, keeping
// their order.
func Failed(outcomes []Outcome) []Outcome {
	var out []Outcome
	for _, o := range outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

// fail marks o as failed by err, capturing the provider body for
// diagnostics.
func (o *Outcome) fail(err error) {
	o.Body = gh.ResponseBody(err)
	o.Err = &MutationError{
		Action:     o.Action,
		Target:     o.Target,
		StatusCode: o.StatusCode,
		Body:       o.Body,
		Err:        err,
	}
}
