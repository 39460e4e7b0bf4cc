package admin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	gh "edmrepos/internal/github"

	"github.com/sirupsen/logrus"
)

// RepositoryRef identifies the target repository.
type RepositoryRef struct {
	Owner string
	Name  string
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

func (r RepositoryRef) Validate() error {
	if strings.TrimSpace(r.Owner) == "" {
		return errors.New("repository owner is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("repository name is required")
	}
	if strings.Contains(r.Owner, "/") || strings.Contains(r.Name, "/") {
		return fmt.Errorf("invalid repository %q", r.String())
	}
	return nil
}

// ParseRepositoryRef accepts either NAME (owned by defaultOwner) or
// OWNER/NAME.
func ParseRepositoryRef(defaultOwner, raw string) (RepositoryRef, error) {
	raw = strings.Trim(strings.TrimSpace(raw), "/")
	ref := RepositoryRef{Owner: strings.TrimSpace(defaultOwner), Name: raw}
	if owner, name, ok := strings.Cut(raw, "/"); ok {
		ref = RepositoryRef{Owner: strings.TrimSpace(owner), Name: strings.TrimSpace(name)}
	}
	if err := ref.Validate(); err != nil {
		return RepositoryRef{}, err
	}
	return ref, nil
}

type RepositoryInfo struct {
	FullName   string
	Name       string
	Private    bool
	StatusCode int
}

func (i RepositoryInfo) Visibility() string {
	if i.Private {
		return "private"
	}
	return "public"
}

// ResolveRepository fetches repository metadata once. Any failure comes back
// as a *LookupError; whether that ends the invocation is the caller's call.
func (s *Service) ResolveRepository(ctx context.Context, ref RepositoryRef) (*RepositoryInfo, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	log := s.log.WithField("repo", ref.String())
	log.Infof("getting repo %s", ref)

	repo, resp, err := s.client.Client.Repositories.Get(ctx, ref.Owner, ref.Name)
	if !gh.Succeeded(resp, err) {
		lerr := &LookupError{
			Resource:   "repo",
			Target:     ref.String(),
			StatusCode: gh.StatusCode(resp),
			Body:       gh.ResponseBody(err),
			Err:        err,
		}
		log.WithFields(logrus.Fields{"status": lerr.StatusCode, "body": lerr.Body}).Errorf("no repo for %s", ref)
		return nil, lerr
	}

	if b, mErr := json.MarshalIndent(repo, "", "    "); mErr == nil {
		log.Debugf("found repo %s", b)
	}

	info := &RepositoryInfo{
		FullName:   repo.GetFullName(),
		Name:       repo.GetName(),
		Private:    repo.GetPrivate(),
		StatusCode: gh.StatusCode(resp),
	}
	if info.FullName == "" {
		info.FullName = ref.String()
	}
	if info.Name == "" {
		info.Name = ref.Name
	}
	log.Infof("found repo %s -- %s", info.FullName, info.Visibility())
	return info, nil
}
