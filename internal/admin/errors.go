package admin

import (
	"fmt"
	"strings"
)

// LookupError is a failed read: repository get or team listing. A
// StatusCode of 0 means the request never got a response.
type LookupError struct {
	Resource   string
	Target     string
	StatusCode int
	Body       string
	Err        error
}

func (e *LookupError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("couldn't get %s %s: %v", e.Resource, e.Target, e.Err)
	}
	return fmt.Sprintf("couldn't get %s %s: %d -- %s", e.Resource, e.Target, e.StatusCode, e.Body)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// ValidationError means the requested team names did not all resolve. It is
// raised before any grant call.
type ValidationError struct {
	Requested []string
	Matched   []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("couldn't find all teams: requested [%s], found [%s] (missing [%s])",
		strings.Join(e.Requested, ", "), strings.Join(e.Matched, ", "), strings.Join(e.Missing(), ", "))
}

// Missing lists requested names that had no match, in request order.
func (e *ValidationError) Missing() []string {
	matched := make(map[string]struct{}, len(e.Matched))
	for _, m := range e.Matched {
		matched[m] = struct{}{}
	}
	var out []string
	for _, r := range e.Requested {
		if _, ok := matched[r]; !ok {
			out = append(out, r)
		}
	}
	return out
}

// MutationError is a failed write that aborts the operation it belongs to.
type MutationError struct {
	Action     Action
	Target     string
	StatusCode int
	Body       string
	Err        error
}

func (e *MutationError) Error() string {
	verb := string(e.Action)
	switch e.Action {
	case ActionEnableAdminEnforcement:
		verb = "enable admin protection"
	case ActionDisableAdminEnforcement:
		verb = "disable admin protection"
	case ActionProtectBranch:
		verb = "add branch protection"
	case ActionGrantTeam:
		verb = "add team"
	}
	if e.StatusCode == 0 {
		return fmt.Sprintf("couldn't %s for %s: %v", verb, e.Target, e.Err)
	}
	return fmt.Sprintf("couldn't %s for %s: %d -- %s", verb, e.Target, e.StatusCode, e.Body)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
