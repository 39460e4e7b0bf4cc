package admin

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	gh "edmrepos/internal/github"

	"github.com/google/go-github/v81/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// teamListPageSize is the single page requested from the team directory.
// The listing is not paginated.
const teamListPageSize = 100

type Permission string

const (
	PermissionPull  Permission = "pull"
	PermissionPush  Permission = "push"
	PermissionAdmin Permission = "admin"
)

// ParsePermission validates membership in {pull, push, admin}. Case and
// surrounding whitespace are ignored.
func ParsePermission(raw string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(raw)))
	switch p {
	case PermissionPull, PermissionPush, PermissionAdmin:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported permission %q (must be one of: pull, push, admin)", raw)
	}
}

// TeamGrantRequest asks for every named team in Org to get Permission.
type TeamGrantRequest struct {
	Org        string
	Teams      []string
	Permission Permission
}

// Team is one row of an organization's team directory.
type Team struct {
	Org  string
	Name string
	ID   int64
	Slug string
}

// ResolvedTeams maps each requested team name to its directory entry.
type ResolvedTeams map[string]Team

// Names returns the resolved names, sorted.
func (r ResolvedTeams) Names() []string {
	names := make([]string, 0, len(r))
	for n := range r {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// ResolveTeams looks up every requested name in org's team directory. It
// succeeds only when every name matches; otherwise it returns a
// *ValidationError and nothing should be granted. A failed directory read
// is a *LookupError.
func (s *Service) ResolveTeams(ctx context.Context, org string, names []string) (ResolvedTeams, error) {
	org = strings.TrimSpace(org)
	if org == "" {
		return nil, fmt.Errorf("organization is required")
	}
	requested := uniqueNames(names)
	if len(requested) == 0 {
		return nil, fmt.Errorf("at least one team is required")
	}

	log := s.log.WithField("org", org)
	teams, resp, err := s.client.Client.Teams.ListTeams(ctx, org, &github.ListOptions{PerPage: teamListPageSize})
	if !gh.Succeeded(resp, err) {
		lerr := &LookupError{
			Resource:   "teams for",
			Target:     org,
			StatusCode: gh.StatusCode(resp),
			Body:       gh.ResponseBody(err),
			Err:        err,
		}
		log.WithFields(logrus.Fields{"status": lerr.StatusCode, "body": lerr.Body}).Error("couldn't list teams")
		return nil, lerr
	}

	wanted := make(map[string]struct{}, len(requested))
	for _, n := range requested {
		wanted[n] = struct{}{}
	}

	resolved := make(ResolvedTeams, len(requested))
	for _, t := range teams {
		name := t.GetName()
		if _, ok := wanted[name]; !ok {
			continue
		}
		resolved[name] = Team{Org: org, Name: name, ID: t.GetID(), Slug: t.GetSlug()}
	}

	if len(resolved) != len(requested) {
		verr := &ValidationError{Requested: requested, Matched: resolved.Names()}
		log.Error(verr.Error())
		return nil, verr
	}
	return resolved, nil
}

// GrantTeams gives every resolved team perm on ref. Grants run concurrently
// and independently; all results are collected before returning, sorted by
// team name.
func (s *Service) GrantTeams(ctx context.Context, ref RepositoryRef, resolved ResolvedTeams, perm Permission) []Outcome {
	names := resolved.Names()
	outcomes := make([]Outcome, len(names))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, name := range names {
		team := resolved[name]
		g.Go(func() error {
			outcomes[i] = s.grantTeam(ctx, ref, team, perm)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (s *Service) grantTeam(ctx context.Context, ref RepositoryRef, team Team, perm Permission) Outcome {
	log := s.log.WithFields(logrus.Fields{"repo": ref.String(), "team": team.Name})
	log.Infof("adding %s -- %d with permission %q to %s", team.Name, team.ID, perm, ref)

	org := team.Org
	if org == "" {
		org = ref.Owner
	}
	resp, err := s.client.Client.Teams.AddTeamRepoBySlug(ctx, org, team.Slug, ref.Owner, ref.Name, &github.TeamAddTeamRepoOptions{
		Permission: string(perm),
	})

	o := Outcome{
		Action:     ActionGrantTeam,
		Repo:       ref.String(),
		Target:     team.Name,
		StatusCode: gh.StatusCode(resp),
		Detail:     string(perm) + " (id " + strconv.FormatInt(team.ID, 10) + ")",
	}
	if !gh.Succeeded(resp, err) {
		o.fail(err)
		log.WithFields(logrus.Fields{"status": o.StatusCode, "body": o.Body}).Errorf("couldn't add team %s", team.Name)
		return o
	}
	log.Infof("added %s to %s. Response status %d", team.Name, ref, o.StatusCode)
	return o
}

// AddTeamsToRepo resolves req.Teams and, only if all of them resolve,
// grants req.Permission on ref to each.
func (s *Service) AddTeamsToRepo(ctx context.Context, ref RepositoryRef, req TeamGrantRequest) ([]Outcome, error) {
	if _, err := ParsePermission(string(req.Permission)); err != nil {
		return nil, err
	}
	org := req.Org
	if strings.TrimSpace(org) == "" {
		org = ref.Owner
	}

	s.log.WithField("repo", ref.String()).Infof("trying to add teams [%s] to repo %s", strings.Join(uniqueNames(req.Teams), ", "), ref)
	resolved, err := s.ResolveTeams(ctx, org, req.Teams)
	if err != nil {
		return nil, err
	}
	return s.GrantTeams(ctx, ref, resolved, req.Permission), nil
}
