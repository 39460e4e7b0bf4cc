// Package admin applies branch-protection policies and team permission grants
// to a single GitHub repository.
//
// Every operation re-reads what it needs from GitHub; nothing is cached
// between calls. Per-item results are reported as Outcome values so partial
// success (one branch protected, the other not) stays visible to callers.
package admin

import (
	"errors"
	"io"

	gh "edmrepos/internal/github"

	"github.com/sirupsen/logrus"
)

const defaultConcurrency = 4

type Service struct {
	client      *gh.Client
	log         logrus.FieldLogger
	concurrency int
}

type Option func(*Service)

func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithConcurrency bounds how many team grants are in flight at once.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func NewService(client *gh.Client, opts ...Option) (*Service, error) {
	if client == nil || client.Client == nil {
		return nil, errors.New("admin: github client is nil")
	}

	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &Service{
		client:      client,
		log:         discard,
		concurrency: defaultConcurrency,
	}
	for _, apply := range opts {
		if apply != nil {
			apply(s)
		}
	}
	return s, nil
}

func (s *Service) Client() *gh.Client {
	return s.client
}
